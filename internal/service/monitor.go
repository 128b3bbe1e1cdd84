package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和吞吐指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	DBErrors       int64
	MQErrors       int64
	MailErrors     int64
	CheckoutErrors int64

	// 吞吐统计
	CheckoutRequests int64
	CheckoutSuccess  int64
	MailSent         int64

	// 时间统计
	LastDBError      time.Time
	LastMQError      time.Time
	LastMailError    time.Time
	LastCheckoutTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordMailError 记录发信错误
func (m *Monitor) RecordMailError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MailErrors++
	m.LastMailError = time.Now()
}

// RecordMailSent 记录发信成功
func (m *Monitor) RecordMailSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MailSent++
}

// RecordCheckoutRequest 记录下单请求
func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	m.LastCheckoutTime = time.Now()
}

// RecordCheckoutSuccess 记录下单成功
func (m *Monitor) RecordCheckoutSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutSuccess++
}

// RecordCheckoutError 记录下单失败
func (m *Monitor) RecordCheckoutError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutErrors++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.CheckoutRequests > 0 {
		successRate = float64(m.CheckoutSuccess) / float64(m.CheckoutRequests) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"db":       m.DBErrors,
			"mq":       m.MQErrors,
			"mail":     m.MailErrors,
			"checkout": m.CheckoutErrors,
		},
		"performance": map[string]interface{}{
			"checkout_requests":     m.CheckoutRequests,
			"checkout_success":      m.CheckoutSuccess,
			"checkout_success_rate": successRate,
			"mail_sent":             m.MailSent,
		},
		"last_events": map[string]interface{}{
			"db_error":      m.LastDBError,
			"mq_error":      m.LastMQError,
			"mail_error":    m.LastMailError,
			"last_checkout": m.LastCheckoutTime,
		},
	}
}

// Reset 重置统计（用于测试）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors = 0
	m.MQErrors = 0
	m.MailErrors = 0
	m.CheckoutErrors = 0
	m.CheckoutRequests = 0
	m.CheckoutSuccess = 0
	m.MailSent = 0
}

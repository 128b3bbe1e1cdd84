package mq

import (
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
)

var (
	conn *amqp.Connection
	once sync.Once
)

// Init 初始化 RabbitMQ 连接
func Init(cfg *config.RabbitMQConfig) *amqp.Connection {
	once.Do(func() {
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			// MQ 只承担订单事件通知，连不上时下单流程照常走
			log.Printf("rabbitmq unavailable, order events disabled: %v", err)
			return
		}
		conn = c
	})
	return conn
}

// Conn 获取 MQ 连接，可能为 nil
func Conn() *amqp.Connection {
	return conn
}

// MustConn 获取 MQ 连接，worker 等强依赖场景使用
func MustConn(cfg *config.RabbitMQConfig) *amqp.Connection {
	c := Init(cfg)
	if c == nil {
		log.Fatalf("failed to connect rabbitmq at %s", cfg.URL)
	}
	return c
}

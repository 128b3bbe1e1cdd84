package order

import (
	"context"
	"time"
)

// 订单状态
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// 支付状态
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Customer 下单时的客户快照，不引用 User 记录
type Customer struct {
	Name    string `gorm:"size:128" json:"name"`
	Email   string `gorm:"size:128;index" json:"email"`
	Phone   string `gorm:"size:32" json:"phone"`
	Address string `gorm:"size:256" json:"address"`
}

// Item 订单行，名称/价格/图片均为下单时刻的商品快照
type Item struct {
	ID        int64  `gorm:"primaryKey" json:"-"`
	OrderID   int64  `gorm:"index;not null" json:"-"`
	ProductID int64  `gorm:"index;not null" json:"productId"`
	Name      string `gorm:"size:128" json:"name"`
	Price     int64  `gorm:"not null" json:"price"` // 分
	Image     string `gorm:"size:256" json:"image"`
	Quantity  int64  `gorm:"not null" json:"quantity"`
}

// TableName 订单行表名
func (Item) TableName() string { return "order_items" }

// Order 订单模型
type Order struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Code           string    `gorm:"uniqueIndex;size:32;not null" json:"orderId"`
	Customer       Customer  `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	Items          []Item    `gorm:"foreignKey:OrderID" json:"items"`
	Subtotal       int64     `gorm:"not null" json:"subtotal"`    // 分
	DeliveryFee    int64     `gorm:"not null" json:"deliveryFee"` // 分
	Total          int64     `gorm:"not null" json:"total"`       // 分
	Status         string    `gorm:"size:16;index;default:pending" json:"status"`
	PaymentMethod  string    `gorm:"size:32" json:"paymentMethod"`
	PaymentStatus  string    `gorm:"size:16;default:pending" json:"paymentStatus"`
	DeliveryOption string    `gorm:"size:16" json:"deliveryOption"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// statusRank 正向流转的次序，cancelled 不在其中单独处理
var statusRank = map[string]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusCompleted:  3,
}

// ValidStatus 是否为合法状态值
func ValidStatus(s string) bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// CanTransition 状态只允许单调向前推进，cancelled 可从任意非终态进入
func CanTransition(from, to string) bool {
	if from == StatusCompleted || from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	fromRank, ok1 := statusRank[from]
	toRank, ok2 := statusRank[to]
	if !ok1 || !ok2 {
		return false
	}
	return toRank == fromRank+1
}

// Repository 订单仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByStatus(ctx context.Context, status string) ([]*Order, error)
	ListByCustomerEmail(ctx context.Context, email string) ([]*Order, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
	// UpdateStatusFrom 仅当当前状态仍为 from 时更新，返回是否生效
	UpdateStatusFrom(ctx context.Context, id int64, from, to string) (bool, error)
	Count(ctx context.Context) (int64, error)
	SumTotalByStatus(ctx context.Context, status string) (int64, error)
}

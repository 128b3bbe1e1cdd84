package product

import (
	"context"
	"time"
)

// 商品状态
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Product 商品模型
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description"`
	Price       int64     `gorm:"not null" json:"price"` // 分
	Category    string    `gorm:"size:64;index" json:"category"`
	Stock       int64     `gorm:"not null" json:"stock"`
	Image       string    `gorm:"size:256" json:"image"`
	Status      string    `gorm:"size:16;index;default:active" json:"status"`
	Featured    bool      `gorm:"index" json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter 商品列表过滤条件
type Filter struct {
	Category string // 精确匹配，空或 "All" 表示全部
	Search   string // 名称模糊匹配，忽略大小写
	Status   string
	Featured *bool
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, f Filter) ([]*Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

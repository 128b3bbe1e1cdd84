package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/order"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/product"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/repository/mysql"
)

// setupTestDB 基于 sqlite 的测试库。用文件而非 :memory:，
// 并发事务测试需要多个连接看到同一份数据。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "shop_test.db") + "?_busy_timeout=10000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, mysql.AutoMigrate(db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, category string, price, stock int64) *product.Product {
	t.Helper()

	p := &product.Product{
		Name:     name,
		Category: category,
		Price:    price,
		Stock:    stock,
		Status:   product.StatusActive,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func newOrderService(db *gorm.DB) *OrderService {
	return NewOrderService(db, mysql.NewOrderRepository(db), nil, config.DeliveryConfig{
		StandardFee: 2000,
		ExpressFee:  5000,
	})
}

func validCustomer() order.Customer {
	return order.Customer{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Phone:   "123456789",
		Address: "1 Main Street",
	}
}

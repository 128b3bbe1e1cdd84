package mysql

import (
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/order"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/product"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并自动迁移表结构
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
			// 把驱动层的唯一索引冲突等错误翻译成 gorm 哨兵错误
			TranslateError: true,
		})
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}

		if err = AutoMigrate(db); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
	})
	return db
}

// AutoMigrate 迁移全部业务表，测试里也会用（sqlite）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.User{}, &product.Product{}, &order.Order{}, &order.Item{})
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}

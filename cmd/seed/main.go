package main

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/product"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/user"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/errs"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/repository/mysql"
)

// 演示商品数据
var demoProducts = []product.Product{
	{Name: "Nike Air Force 1", Price: 43000, Category: "Nike", Stock: 15, Status: product.StatusActive, Featured: true},
	{Name: "Off-White Sneakers", Price: 36000, Category: "Off-White", Stock: 8, Status: product.StatusActive},
	{Name: "Adidas Classic", Price: 36000, Category: "Adidas", Stock: 12, Status: product.StatusActive},
	{Name: "New Balance 740", Price: 38000, Category: "New Balance", Stock: 10, Status: product.StatusActive},
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db := mysql.Init(&cfg.MySQL)
	productRepo := mysql.NewProductRepository(db)
	userRepo := mysql.NewUserRepository(db)

	for i := range demoProducts {
		p := demoProducts[i]
		if err := productRepo.Create(ctx, &p); err != nil {
			log.Fatalf("seed product %q failed: %v", p.Name, err)
		}
		log.Printf("seeded product %q (id=%d, stock=%d)", p.Name, p.ID, p.Stock)
	}

	// 管理员账号只建一次
	if _, err := userRepo.GetByEmail(ctx, "admin@example.com"); err == nil {
		log.Println("admin account already exists, skipping")
		return
	} else if !errors.Is(err, errs.ErrNotFound) {
		log.Fatalf("check admin account failed: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash admin password failed: %v", err)
	}
	admin := &user.User{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: string(hash),
		Role:     user.RoleAdmin,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatalf("seed admin account failed: %v", err)
	}
	log.Printf("seeded admin account admin@example.com (id=%d)", admin.ID)
}

package service

import (
	"context"
	"strings"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/product"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/errs"
)

// ProductService 商品目录
type ProductService struct {
	repo product.Repository
}

// NewProductService 创建商品服务
func NewProductService(repo product.Repository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) List(ctx context.Context, f product.Filter) ([]*product.Product, error) {
	return s.repo.List(ctx, f)
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Categories 全部去重后的分类
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func validateProduct(p *product.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errs.Invalidf("product name is required")
	}
	if p.Price < 0 {
		return errs.Invalidf("product price must not be negative")
	}
	if p.Stock < 0 {
		return errs.Invalidf("product stock must not be negative")
	}
	switch p.Status {
	case "":
		p.Status = product.StatusActive
	case product.StatusActive, product.StatusInactive:
	default:
		return errs.Invalidf("unknown product status %q", p.Status)
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, p *product.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *ProductService) Update(ctx context.Context, p *product.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

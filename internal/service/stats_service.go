package service

import (
	"context"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/order"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/product"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/user"
)

// Stats 后台总览数字
type Stats struct {
	TotalProducts  int64 `json:"totalProducts"`
	TotalOrders    int64 `json:"totalOrders"`
	TotalCustomers int64 `json:"totalCustomers"`
	TotalSales     int64 `json:"totalSales"` // 已完成订单的 total 之和，分
}

// CustomerStats 带消费统计的客户条目
type CustomerStats struct {
	*user.User
	OrderCount int64 `json:"orderCount"`
	TotalSpent int64 `json:"totalSpent"` // 已完成订单的 total 之和，分
}

// StatsService 后台只读聚合查询
type StatsService struct {
	productRepo product.Repository
	orderRepo   order.Repository
	userRepo    user.Repository
}

// NewStatsService 创建统计服务
func NewStatsService(productRepo product.Repository, orderRepo order.Repository, userRepo user.Repository) *StatsService {
	return &StatsService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
	}
}

// Overview 总览数字 + 最近订单
func (s *StatsService) Overview(ctx context.Context) (*Stats, []*order.Order, error) {
	totalProducts, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, nil, err
	}
	totalOrders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, nil, err
	}
	totalCustomers, err := s.userRepo.CountCustomers(ctx)
	if err != nil {
		return nil, nil, err
	}
	totalSales, err := s.orderRepo.SumTotalByStatus(ctx, order.StatusCompleted)
	if err != nil {
		return nil, nil, err
	}
	recent, err := s.orderRepo.ListRecent(ctx, 10)
	if err != nil {
		return nil, nil, err
	}
	return &Stats{
		TotalProducts:  totalProducts,
		TotalOrders:    totalOrders,
		TotalCustomers: totalCustomers,
		TotalSales:     totalSales,
	}, recent, nil
}

// CustomersWithStats 客户列表，逐个补上订单数与已完成消费额
func (s *StatsService) CustomersWithStats(ctx context.Context) ([]CustomerStats, error) {
	customers, err := s.userRepo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerStats, 0, len(customers))
	for _, c := range customers {
		orders, err := s.orderRepo.ListByCustomerEmail(ctx, c.Email)
		if err != nil {
			return nil, err
		}
		var spent int64
		for _, o := range orders {
			if o.Status == order.StatusCompleted {
				spent += o.Total
			}
		}
		out = append(out, CustomerStats{
			User:       c,
			OrderCount: int64(len(orders)),
			TotalSpent: spent,
		})
	}
	return out, nil
}

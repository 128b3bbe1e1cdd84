package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/order"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/product"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/errs"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/repository/mysql"
)

// 配送方式
const (
	DeliveryStandard = "standard"
	DeliveryExpress  = "express"

	// OrderEventsQueue 订单事件队列名
	OrderEventsQueue = "order_events"
)

// OrderCreatedMessage 下单成功后写入 MQ 的事件，通知侧消费
type OrderCreatedMessage struct {
	OrderID       int64  `json:"order_id"`
	Code          string `json:"code"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Total         int64  `json:"total"`
	PaymentMethod string `json:"payment_method"`
}

// SubmitItem 提交的订单行，价格由服务端按商品当前价重新计算，不信任客户端
type SubmitItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// SubmitRequest 下单请求
type SubmitRequest struct {
	Customer       order.Customer `json:"customer"`
	Items          []SubmitItem   `json:"items"`
	PaymentMethod  string         `json:"paymentMethod"`
	DeliveryOption string         `json:"deliveryOption"`
}

// OrderService 订单服务，核心是 Submit 的事务性下单
type OrderService struct {
	db       *gorm.DB
	repo     order.Repository
	mqConn   *amqp.Connection // 为 nil 时跳过事件发布
	delivery config.DeliveryConfig
	node     *snowflake.Node
}

// NewOrderService 创建订单服务
func NewOrderService(db *gorm.DB, repo order.Repository, mqConn *amqp.Connection, delivery config.DeliveryConfig) *OrderService {
	node, err := snowflake.NewNode(1)
	if err != nil {
		// NewNode 只在节点号越界时报错，1 恒合法
		panic(err)
	}
	return &OrderService{
		db:       db,
		repo:     repo,
		mqConn:   mqConn,
		delivery: delivery,
		node:     node,
	}
}

func validateCustomer(c order.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return errs.Invalidf("customer name is required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return errs.Invalidf("customer email %q is not a valid address", c.Email)
	}
	if strings.TrimSpace(c.Phone) == "" {
		return errs.Invalidf("customer phone is required")
	}
	if strings.TrimSpace(c.Address) == "" {
		return errs.Invalidf("customer address is required")
	}
	return nil
}

func (s *OrderService) deliveryFee(option string) (int64, error) {
	switch option {
	case DeliveryStandard:
		return s.delivery.StandardFee, nil
	case DeliveryExpress:
		return s.delivery.ExpressFee, nil
	default:
		return 0, errs.Invalidf("unknown delivery option %q", option)
	}
}

// generateCode 生成形如 ORD-20260829-3KJH2M9Z 的订单号。
// snowflake 保证唯一，code 列上的唯一索引兜底。
func (s *OrderService) generateCode() string {
	suffix := strings.ToUpper(strconv.FormatInt(s.node.Generate().Int64(), 36))
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

// Submit 下单：校验、按商品当前价重算金额、事务内扣库存并落单。
// 任何一行失败都会整单回滚，不会留下部分扣减或孤儿订单。
func (s *OrderService) Submit(ctx context.Context, req SubmitRequest) (*order.Order, error) {
	GetMonitor().RecordCheckoutRequest()

	if err := validateCustomer(req.Customer); err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}
	if len(req.Items) == 0 {
		GetMonitor().RecordCheckoutError()
		return nil, errs.Invalidf("order must contain at least one item")
	}
	for _, it := range req.Items {
		if it.ProductID <= 0 {
			GetMonitor().RecordCheckoutError()
			return nil, errs.Invalidf("item product id is required")
		}
		if it.Quantity <= 0 {
			GetMonitor().RecordCheckoutError()
			return nil, errs.Invalidf("item quantity must be greater than zero")
		}
	}
	fee, err := s.deliveryFee(req.DeliveryOption)
	if err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}

	o := &order.Order{
		Code:           s.generateCode(),
		Customer:       req.Customer,
		DeliveryFee:    fee,
		Status:         order.StatusPending,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  order.PaymentPending,
		DeliveryOption: req.DeliveryOption,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subtotal int64
		items := make([]order.Item, 0, len(req.Items))
		for _, it := range req.Items {
			var p product.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", errs.ErrProductNotFound, it.ProductID)
				}
				GetMonitor().RecordDBError()
				return err
			}
			if p.Status != product.StatusActive {
				return errs.Invalidf("product %q is not available", p.Name)
			}
			// 条件化原子扣减，避免读改写的丢失更新
			if err := mysql.DecrementStock(tx, p.ID, it.Quantity); err != nil {
				if errors.Is(err, errs.ErrOutOfStock) {
					return fmt.Errorf("%w for %q (requested %d)", errs.ErrOutOfStock, p.Name, it.Quantity)
				}
				GetMonitor().RecordDBError()
				return err
			}
			subtotal += p.Price * it.Quantity
			items = append(items, order.Item{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Image:     p.Image,
				Quantity:  it.Quantity,
			})
		}
		o.Items = items
		o.Subtotal = subtotal
		o.Total = subtotal + o.DeliveryFee
		if err := tx.Create(o).Error; err != nil {
			GetMonitor().RecordDBError()
			return err
		}
		return nil
	})
	if err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}

	// 发布事件失败不影响已提交的订单，只记录
	if err := s.publishCreated(ctx, o); err != nil {
		GetMonitor().RecordMQError()
		log.Printf("publish order created event failed: %v", err)
	}

	GetMonitor().RecordCheckoutSuccess()
	return o, nil
}

func (s *OrderService) publishCreated(ctx context.Context, o *order.Order) error {
	if s.mqConn == nil {
		return nil
	}
	ch, err := s.mqConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(OrderEventsQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(&OrderCreatedMessage{
		OrderID:       o.ID,
		Code:          o.Code,
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
	})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		OrderEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// GetByID 按订单 ID 查询
func (s *OrderService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// List 按状态筛选订单，status 为空表示全部
func (s *OrderService) List(ctx context.Context, status string) ([]*order.Order, error) {
	if status != "" && !order.ValidStatus(status) {
		return nil, errs.Invalidf("unknown order status %q", status)
	}
	return s.repo.ListByStatus(ctx, status)
}

// ListByCustomerEmail 查询某客户的全部订单
func (s *OrderService) ListByCustomerEmail(ctx context.Context, email string) ([]*order.Order, error) {
	return s.repo.ListByCustomerEmail(ctx, email)
}

// UpdateStatus 推进订单状态，只允许单调向前或取消
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, next string) (*order.Order, error) {
	if !order.ValidStatus(next) {
		return nil, errs.Invalidf("unknown order status %q", next)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.CanTransition(o.Status, next) {
		return nil, errs.Invalidf("cannot change order status from %q to %q", o.Status, next)
	}
	// 条件更新：读取之后状态被并发改掉时不生效
	ok, err := s.repo.UpdateStatusFrom(ctx, id, o.Status, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Invalidf("order status is no longer %q, cannot move to %q", o.Status, next)
	}
	o.Status = next
	return o, nil
}

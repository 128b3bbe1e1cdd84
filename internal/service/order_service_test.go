package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/order"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/product"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/errs"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/repository/mysql"
)

func TestSubmitComputesTotals(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	sneakers := seedProduct(t, db, "Nike Air Force 1", "Nike", 43000, 15)
	classic := seedProduct(t, db, "Adidas Classic", "Adidas", 36000, 12)

	o, err := svc.Submit(ctx, SubmitRequest{
		Customer: validCustomer(),
		Items: []SubmitItem{
			{ProductID: sneakers.ID, Quantity: 2},
			{ProductID: classic.ID, Quantity: 1},
		},
		PaymentMethod:  "card",
		DeliveryOption: DeliveryStandard,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2*43000+36000), o.Subtotal)
	assert.Equal(t, int64(2000), o.DeliveryFee)
	assert.Equal(t, o.Subtotal+o.DeliveryFee, o.Total)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	require.Len(t, o.Items, 2)
	// 行内保存的是下单时刻的商品快照
	assert.Equal(t, "Nike Air Force 1", o.Items[0].Name)
	assert.Equal(t, int64(43000), o.Items[0].Price)
	assert.True(t, strings.HasPrefix(o.Code, "ORD-"))

	// 库存被各扣一次。查询目标必须用新变量，
	// 复用已填充主键的结构体会让 First 把旧 id 也带进条件
	var gotSneakers, gotClassic product.Product
	require.NoError(t, db.First(&gotSneakers, sneakers.ID).Error)
	assert.Equal(t, int64(13), gotSneakers.Stock)
	require.NoError(t, db.First(&gotClassic, classic.ID).Error)
	assert.Equal(t, int64(11), gotClassic.Stock)

	// 按客户邮箱可查
	list, err := svc.ListByCustomerEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, o.Code, list[0].Code)
}

func TestSubmitExpressDeliveryFee(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)

	p := seedProduct(t, db, "Premium Jacket", "Apparel", 70000, 5)

	o, err := svc.Submit(context.Background(), SubmitRequest{
		Customer:       validCustomer(),
		Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  "cod",
		DeliveryOption: DeliveryExpress,
	})
	require.NoError(t, err)

	// subtotal 700.00 + express 50.00 = 750.00
	assert.Equal(t, int64(70000), o.Subtotal)
	assert.Equal(t, int64(5000), o.DeliveryFee)
	assert.Equal(t, int64(75000), o.Total)
}

func TestSubmitIgnoresClientPrices(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)

	p := seedProduct(t, db, "Adidas Classic", "Adidas", 36000, 12)

	// 请求体里没有价格可言，金额只能来自商品表
	o, err := svc.Submit(context.Background(), SubmitRequest{
		Customer:       validCustomer(),
		Items:          []SubmitItem{{ProductID: p.ID, Quantity: 3}},
		DeliveryOption: DeliveryStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3*36000), o.Subtotal)
}

func TestSubmitValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "Nike Air Force 1", "Nike", 43000, 15)

	cases := []struct {
		name string
		req  SubmitRequest
	}{
		{"missing name", SubmitRequest{
			Customer:       order.Customer{Email: "a@b.com", Phone: "1", Address: "x"},
			Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
			DeliveryOption: DeliveryStandard,
		}},
		{"bad email", SubmitRequest{
			Customer:       order.Customer{Name: "A", Email: "not-an-email", Phone: "1", Address: "x"},
			Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
			DeliveryOption: DeliveryStandard,
		}},
		{"missing phone", SubmitRequest{
			Customer:       order.Customer{Name: "A", Email: "a@b.com", Address: "x"},
			Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
			DeliveryOption: DeliveryStandard,
		}},
		{"missing address", SubmitRequest{
			Customer:       order.Customer{Name: "A", Email: "a@b.com", Phone: "1"},
			Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
			DeliveryOption: DeliveryStandard,
		}},
		{"no items", SubmitRequest{
			Customer:       validCustomer(),
			DeliveryOption: DeliveryStandard,
		}},
		{"zero quantity", SubmitRequest{
			Customer:       validCustomer(),
			Items:          []SubmitItem{{ProductID: p.ID, Quantity: 0}},
			DeliveryOption: DeliveryStandard,
		}},
		{"unknown delivery option", SubmitRequest{
			Customer:       validCustomer(),
			Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
			DeliveryOption: "overnight",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}

	// 校验失败不允许有任何库存副作用
	var got product.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, int64(15), got.Stock)
}

func TestSubmitProductNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		Customer:       validCustomer(),
		Items:          []SubmitItem{{ProductID: 999, Quantity: 1}},
		DeliveryOption: DeliveryStandard,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrProductNotFound)
}

func TestSubmitOutOfStockRollsBackWholeOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)

	a := seedProduct(t, db, "Nike Air Force 1", "Nike", 43000, 5)
	b := seedProduct(t, db, "Off-White Sneakers", "Off-White", 36000, 2)

	// 第一行能扣，第二行超库存，整单必须回滚
	_, err := svc.Submit(context.Background(), SubmitRequest{
		Customer: validCustomer(),
		Items: []SubmitItem{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 3},
		},
		DeliveryOption: DeliveryStandard,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrOutOfStock)
	// 报错信息要点名是哪个商品
	assert.Contains(t, err.Error(), "Off-White Sneakers")

	var gotA, gotB product.Product
	require.NoError(t, db.First(&gotA, a.ID).Error)
	assert.Equal(t, int64(5), gotA.Stock, "first line must not stay decremented")
	require.NoError(t, db.First(&gotB, b.ID).Error)
	assert.Equal(t, int64(2), gotB.Stock)

	var orderCount, itemCount int64
	require.NoError(t, db.Model(&order.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&order.Item{}).Count(&itemCount).Error)
	assert.Zero(t, orderCount, "no order may remain observable")
	assert.Zero(t, itemCount)
}

func TestSubmitInactiveProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)

	p := seedProduct(t, db, "Retired Model", "Nike", 10000, 5)
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", p.ID).
		Update("status", product.StatusInactive).Error)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		Customer:       validCustomer(),
		Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
		DeliveryOption: DeliveryStandard,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestSubmitConcurrentStockContention(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)

	p := seedProduct(t, db, "Limited Drop", "Nike", 50000, 10)

	// 两个并发订单各要 6 件，库存 10：恰好一单成功
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), SubmitRequest{
				Customer:       validCustomer(),
				Items:          []SubmitItem{{ProductID: p.ID, Quantity: 6}},
				DeliveryOption: DeliveryStandard,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, outOfStock int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, errs.ErrOutOfStock)
		outOfStock++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, outOfStock)

	var got product.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, int64(4), got.Stock)
}

func TestOrderCodesAreUnique(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "Adidas Classic", "Adidas", 36000, 100)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		o, err := svc.Submit(ctx, SubmitRequest{
			Customer:       validCustomer(),
			Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
			DeliveryOption: DeliveryStandard,
		})
		require.NoError(t, err)
		assert.False(t, seen[o.Code], "duplicate order code %s", o.Code)
		seen[o.Code] = true
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "Nike Air Force 1", "Nike", 43000, 15)
	submit := func() *order.Order {
		o, err := svc.Submit(ctx, SubmitRequest{
			Customer:       validCustomer(),
			Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
			DeliveryOption: DeliveryStandard,
		})
		require.NoError(t, err)
		return o
	}

	o := submit()
	// 正向推进
	for _, next := range []string{order.StatusProcessing, order.StatusShipped, order.StatusCompleted} {
		updated, err := svc.UpdateStatus(ctx, o.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}
	// 终态不可再动
	_, err := svc.UpdateStatus(ctx, o.ID, order.StatusCancelled)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	// 跳级被拒
	o2 := submit()
	_, err = svc.UpdateStatus(ctx, o2.ID, order.StatusShipped)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	// 任意非终态可取消，取消后不可恢复
	_, err = svc.UpdateStatus(ctx, o2.ID, order.StatusCancelled)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, o2.ID, order.StatusProcessing)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	// 未知状态值
	_, err = svc.UpdateStatus(ctx, o.ID, "archived")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	// 不存在的订单
	_, err = svc.UpdateStatus(ctx, 9999, order.StatusProcessing)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateStatusStaleStateDoesNotApply(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "Nike Air Force 1", "Nike", 43000, 15)
	o, err := svc.Submit(ctx, SubmitRequest{
		Customer:       validCustomer(),
		Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
		DeliveryOption: DeliveryStandard,
	})
	require.NoError(t, err)

	repo := mysql.NewOrderRepository(db)
	ok, err := repo.UpdateStatusFrom(ctx, o.ID, order.StatusPending, order.StatusProcessing)
	require.NoError(t, err)
	assert.True(t, ok)

	// 拿着过期的 from 状态再更新，等价于两个并发推进
	// 基于同一个旧状态：后到的一方不得生效
	ok, err = repo.UpdateStatusFrom(ctx, o.ID, order.StatusPending, order.StatusShipped)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := svc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, got.Status)
}

func TestListOrdersByStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "Nike Air Force 1", "Nike", 43000, 15)
	first, err := svc.Submit(ctx, SubmitRequest{
		Customer:       validCustomer(),
		Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
		DeliveryOption: DeliveryStandard,
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitRequest{
		Customer:       validCustomer(),
		Items:          []SubmitItem{{ProductID: p.ID, Quantity: 1}},
		DeliveryOption: DeliveryStandard,
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, first.ID, order.StatusProcessing)
	require.NoError(t, err)

	pending, err := svc.List(ctx, order.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(ctx, "bogus")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

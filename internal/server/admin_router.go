package server

import (
	"github.com/kataras/iris/v12"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/product"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/service"
)

// adminServices 后台路由依赖的服务集合
type adminServices struct {
	products *service.ProductService
	orders   *service.OrderService
	stats    *service.StatsService
}

// registerAdminRoutes 注册后台管理路由，全部要求登录 + admin 角色
func registerAdminRoutes(api iris.Party, authRequired iris.Handler, svcs adminServices) {
	admin := api.Party("/", authRequired, requireAdmin)

	// ---------- 商品管理 ----------

	admin.Post("/products", func(ctx iris.Context) {
		var p product.Product
		if err := ctx.ReadJSON(&p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"message": err.Error()})
			return
		}
		if err := svcs.products.Create(ctx.Request().Context(), &p); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.StatusCode(201)
		ctx.JSON(iris.Map{"message": "Product created", "product": p})
	})

	admin.Put("/products/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		p, err := svcs.products.GetByID(ctx.Request().Context(), id)
		if err != nil {
			writeError(ctx, err)
			return
		}
		// 解析到已有实例上，实现部分字段更新
		if err := ctx.ReadJSON(p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"message": err.Error()})
			return
		}
		p.ID = id
		if err := svcs.products.Update(ctx.Request().Context(), p); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"message": "Product updated", "product": p})
	})

	admin.Delete("/products/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := svcs.products.Delete(ctx.Request().Context(), id); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"message": "Product deleted"})
	})

	// ---------- 订单管理 ----------

	admin.Get("/orders", func(ctx iris.Context) {
		list, err := svcs.orders.List(ctx.Request().Context(), ctx.URLParam("status"))
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"orders": list})
	})

	admin.Put("/orders/{id:int64}/status", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"message": err.Error()})
			return
		}
		o, err := svcs.orders.UpdateStatus(ctx.Request().Context(), id, req.Status)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"message": "Order status updated", "order": o})
	})

	// ---------- 报表 ----------

	admin.Get("/admin/stats", func(ctx iris.Context) {
		stats, recent, err := svcs.stats.Overview(ctx.Request().Context())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"stats": stats, "recentOrders": recent})
	})

	admin.Get("/customers", func(ctx iris.Context) {
		customers, err := svcs.stats.CustomersWithStats(ctx.Request().Context())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"customers": customers})
	})

	admin.Get("/admin/metrics", func(ctx iris.Context) {
		ctx.JSON(service.GetMonitor().GetStats())
	})
}

package server

import (
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	radix "github.com/mediocregopher/radix/v3"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/auth"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/product"
	userdm "github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/user"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/errs"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/infra/mq"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/infra/redis"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/middleware"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/repository/mysql"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/service"
)

// Deps 路由依赖，Redis/MQ 可为 nil（对应能力降级）
type Deps struct {
	DB    *gorm.DB
	Redis radix.Client
	MQ    *amqp.Connection
}

// RegisterRoutes 初始化基础设施并注册所有 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	deps := Deps{
		DB:    mysql.Init(&cfg.MySQL),
		Redis: redis.Init(&cfg.Redis),
		MQ:    mq.Init(&cfg.RabbitMQ),
	}
	RegisterRoutesWithDeps(app, cfg, deps)
}

// RegisterRoutesWithDeps 用注入的依赖注册路由，测试用 sqlite + nil Redis/MQ
func RegisterRoutesWithDeps(app *iris.Application, cfg *config.Config, deps Deps) {
	// 仓储与服务
	userRepo := mysql.NewUserRepository(deps.DB)
	productRepo := mysql.NewProductRepository(deps.DB)
	orderRepo := mysql.NewOrderRepository(deps.DB)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	productSvc := service.NewProductService(productRepo)
	orderSvc := service.NewOrderService(deps.DB, orderRepo, deps.MQ, cfg.Delivery)
	statsSvc := service.NewStatsService(productRepo, orderRepo, userRepo)

	tokenCache := auth.NewTokenCache(deps.Redis, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	// 旧版 API 的根路径横幅
	app.Get("/", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"message": "E-commerce API is running",
			"version": "1.0.0",
			"endpoints": iris.Map{
				"auth":      "/api/auth/*",
				"products":  "/api/products",
				"orders":    "/api/orders",
				"customers": "/api/customers",
				"admin":     "/api/admin/*",
			},
		})
	})

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// ---------- 认证 ----------

	api.Post("/auth/register", func(ctx iris.Context) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Phone    string `json:"phone"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"message": err.Error()})
			return
		}
		u, token, err := userSvc.Register(ctx.Request().Context(), req.Name, req.Email, req.Password, req.Phone)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.StatusCode(201)
		ctx.JSON(iris.Map{
			"message": "User registered successfully",
			"token":   token,
			"user":    userView(u),
		})
	})

	api.Post("/auth/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"message": err.Error()})
			return
		}
		u, token, err := userSvc.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{
			"message": "Login successful",
			"token":   token,
			"user":    userView(u),
		})
	})

	// 鉴权中间件：解析 Bearer 令牌，claims 放入请求上下文
	authRequired := func(ctx iris.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.StopWithJSON(401, iris.Map{"message": "No token provided"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"message": "No token provided"})
			return
		}

		// 先查缓存，未命中再做签名校验
		claims, hit, err := tokenCache.Get(ctx.Request().Context(), token)
		if err != nil || !hit {
			claims, err = auth.ParseToken(&cfg.JWT, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"message": "Invalid token"})
				return
			}
			_ = tokenCache.Set(ctx.Request().Context(), token, claims)
		}
		ctx.Values().Set("claims", claims)
		ctx.Next()
	}

	api.Get("/auth/me", authRequired, func(ctx iris.Context) {
		claims := mustClaims(ctx)
		u, err := userSvc.GetByID(ctx.Request().Context(), claims.UserID)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"user": u})
	})

	// ---------- 商品目录 ----------

	api.Get("/products", func(ctx iris.Context) {
		f := product.Filter{
			Category: ctx.URLParam("category"),
			Search:   ctx.URLParam("search"),
			Status:   ctx.URLParam("status"),
		}
		if v := ctx.URLParam("featured"); v != "" {
			featured := v == "true"
			f.Featured = &featured
		}
		list, err := productSvc.List(ctx.Request().Context(), f)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"products": list})
	})

	api.Get("/products/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		p, err := productSvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"product": p})
	})

	api.Get("/categories", func(ctx iris.Context) {
		categories, err := productSvc.Categories(ctx.Request().Context())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"categories": categories})
	})

	// ---------- 下单与订单查询 ----------

	api.Post("/orders", middleware.CheckoutRateLimit(), func(ctx iris.Context) {
		var req service.SubmitRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"message": err.Error()})
			return
		}
		o, err := orderSvc.Submit(ctx.Request().Context(), req)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.StatusCode(201)
		ctx.JSON(iris.Map{"message": "Order created successfully", "order": o})
	})

	api.Get("/orders/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		o, err := orderSvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"order": o})
	})

	api.Get("/customers/{email}/orders", func(ctx iris.Context) {
		email := ctx.Params().Get("email")
		list, err := orderSvc.ListByCustomerEmail(ctx.Request().Context(), email)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"orders": list})
	})

	// ---------- 后台管理 ----------

	registerAdminRoutes(api, authRequired, adminServices{
		products: productSvc,
		orders:   orderSvc,
		stats:    statsSvc,
	})
}

// mustClaims 取出鉴权中间件写入的 claims
func mustClaims(ctx iris.Context) *auth.Claims {
	claims, _ := ctx.Values().Get("claims").(*auth.Claims)
	return claims
}

// requireAdmin 显式角色校验
func requireAdmin(ctx iris.Context) {
	if err := auth.RequireRole(mustClaims(ctx), userdm.RoleAdmin); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Next()
}

// writeError 业务错误到 HTTP 响应的统一出口
func writeError(ctx iris.Context, err error) {
	status := errs.StatusOf(err)
	msg := err.Error()
	if status == 500 {
		// 细节只进日志；指标由出错的调用点自己记
		ctx.Application().Logger().Errorf("internal error: %v", err)
		msg = "Server error"
	}
	ctx.StopWithJSON(status, iris.Map{"message": msg})
}

func userView(u *userdm.User) iris.Map {
	return iris.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

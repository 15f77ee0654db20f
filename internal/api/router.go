package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/qs3c/edu_referral_server/config"
	"github.com/qs3c/edu_referral_server/internal/api/handler"
	"github.com/qs3c/edu_referral_server/internal/api/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	referralHandler     *handler.ReferralHandler
	agentHandler        *handler.AgentHandler
	adminHandler        *handler.AdminHandler
	couponHandler       *handler.CouponHandler
	subscriptionHandler *handler.SubscriptionHandler
	revenueHandler      *handler.RevenueHandler
	healthHandler       *handler.HealthHandler
	sessions            middleware.SessionAuthenticator
	cfg                 *config.Config
	log                 *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	referralHandler *handler.ReferralHandler,
	agentHandler *handler.AgentHandler,
	adminHandler *handler.AdminHandler,
	couponHandler *handler.CouponHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	revenueHandler *handler.RevenueHandler,
	healthHandler *handler.HealthHandler,
	sessions middleware.SessionAuthenticator,
	cfg *config.Config,
	log *zap.Logger,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		referralHandler:     referralHandler,
		agentHandler:        agentHandler,
		adminHandler:        adminHandler,
		couponHandler:       couponHandler,
		subscriptionHandler: subscriptionHandler,
		revenueHandler:      revenueHandler,
		healthHandler:       healthHandler,
		sessions:            sessions,
		cfg:                 cfg,
		log:                 log,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(r.log))
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/health", r.healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	{
		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 公开接口 - 推荐码校验
		api.POST("/referral/validate", r.referralHandler.Validate)

		// 学员接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.GET("/user/profile", r.userHandler.GetProfile)

			subscriptions := authenticated.Group("/subscriptions")
			{
				subscriptions.POST("", r.subscriptionHandler.Create)
				subscriptions.GET("", r.subscriptionHandler.ListMine)
			}
		}

		// 管理后台登录
		api.POST("/admin/login", r.adminHandler.Login)
		api.POST("/admin/logout", r.adminHandler.Logout)

		// 管理后台（Redis 会话）
		admin := api.Group("/admin")
		admin.Use(middleware.AdminSession(r.sessions))
		{
			agents := admin.Group("/agents")
			{
				agents.POST("", r.agentHandler.Create)
				agents.GET("", r.agentHandler.List)
				agents.GET("/:id", r.agentHandler.Get)
				agents.PUT("/:id", r.agentHandler.Update)
				agents.DELETE("/:id", r.agentHandler.Delete)
				agents.POST("/:id/referral-code/regenerate", r.agentHandler.RegenerateCode)
				agents.PUT("/:id/referral-code/status", r.agentHandler.ToggleCode)
				agents.GET("/:id/students", r.agentHandler.Students)
				agents.GET("/:id/performance", r.agentHandler.Performance)
			}

			users := admin.Group("/users")
			{
				users.GET("", r.userHandler.List)
				users.PUT("/:id/block", r.userHandler.SetBlocked)
			}

			coupons := admin.Group("/coupons")
			{
				coupons.POST("", r.couponHandler.Create)
				coupons.GET("", r.couponHandler.List)
				coupons.GET("/utilization", r.couponHandler.Utilization)
				coupons.PUT("/:code/status", r.couponHandler.UpdateStatus)
			}

			revenue := admin.Group("/revenue")
			{
				revenue.GET("/summary", r.revenueHandler.Summary)
				revenue.GET("/subscriptions", r.revenueHandler.Subscriptions)
			}
		}
	}

	return engine
}

package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"ContactHub/internal/handler"
	"ContactHub/internal/middleware"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", handler.Health)

	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	{
		limited := auth.Group("", middleware.AuthRateLimitMiddleware()) // 认证接口限流
		limited.POST("/register", handler.Register)
		limited.POST("/login", handler.Login)
		limited.POST("/token/refresh", handler.RefreshToken)

		auth.POST("/logout", middleware.AuthMiddleware(), handler.Logout)
	}

	// 用户相关路由
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me", handler.GetUserProfile)
	}

	// 联系人路由
	contacts := v1.Group("/contacts")
	contacts.Use(middleware.AuthMiddleware())
	{
		contacts.GET("", handler.ListContacts)
		contacts.POST("", handler.CreateContact)
		contacts.GET("/:id", handler.GetContact)
		contacts.PUT("/:id", handler.UpdateContact)
		contacts.DELETE("/:id", handler.DeleteContact)
	}
}

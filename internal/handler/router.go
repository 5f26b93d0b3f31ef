package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lukinkratas/zapis-stavy/internal/middleware"
)

type RouterDeps struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Meters   *MeterHandler
	Readings *ReadingHandler
	Health   *HealthHandler

	Principals    middleware.PrincipalResolver
	AuthRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/healthz", deps.Health.Check)

	public := api.Group("")
	public.Use(middleware.RateLimit(deps.AuthRateLimit))
	public.POST("/register", deps.Auth.Register)
	public.POST("/token", deps.Auth.Token)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.Principals))
	authGroup.GET("/user/:id", deps.Users.Get)
	authGroup.PUT("/user/:id", deps.Users.Update)
	authGroup.DELETE("/user/:id", deps.Users.Delete)

	authGroup.POST("/meter", deps.Meters.Create)
	authGroup.GET("/meter", deps.Meters.List)
	authGroup.GET("/meter/:id", deps.Meters.Get)
	authGroup.PUT("/meter/:id", deps.Meters.Update)
	authGroup.DELETE("/meter/:id", deps.Meters.Delete)
	authGroup.GET("/meter/:id/reading", deps.Readings.ListByMeter)

	authGroup.POST("/reading", deps.Readings.Create)
	authGroup.PUT("/reading/:id", deps.Readings.Update)
	authGroup.DELETE("/reading/:id", deps.Readings.Delete)
}

package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/coaching"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/config"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/db"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/http/handlers"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/http/middleware"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/unify"

	_ "github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/docs"
)

func Router(cfg config.Config, unifier *unify.Service, engine *coaching.Engine, store *db.Store, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Unify:     unifier,
		Coaching:  engine,
		Store:     store,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/service-orders", h.ServiceOrdersSearch)
		api.GET("/service-orders/completed", h.CompletedServiceOrders)
		api.GET("/technicians", h.TechniciansList)
		api.GET("/technicians/:id", h.TechnicianDetails)
		api.GET("/technicians/:id/insights", h.TechnicianInsights)
		api.GET("/technicians/:id/recommendations", h.TechnicianRecommendations)
		api.GET("/coaching/recommendations", h.AllRecommendations)
		api.GET("/coaching/summary", h.CoachingSummary)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/cache/clear", h.ClearCache)
		admin.PATCH("/coaching/recommendations/:id/status", h.UpdateRecommendationStatus)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

package http

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"

	"github.com/gmalla/backend/internal/http/handlers"
	"github.com/gmalla/backend/internal/http/middleware"
	"github.com/gmalla/backend/internal/metrics"
)

func Router(h *handlers.Handler, logger zerolog.Logger, env string, corsAllowed string) *gin.Engine {
	if env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Admin-Key", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if corsAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = strings.Split(corsAllowed, ",")
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))

	api := r.Group("/api")
	{
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
		api.GET("/auth-status", h.AuthStatus)

		api.GET("/incidencias", h.IncidencesList)
		api.GET("/usuarios", h.AgentsList)
		api.GET("/calendario", h.Calendar)
		api.GET("/detalle-incidencia/:id_gtask", h.IncidenceDetail)

		api.POST("/mover-incidencia", h.Move)
		api.POST("/recargar", h.Reload)

		api.GET("/filtro-usuarios", h.FilterGet)
		api.PUT("/filtro-usuarios", h.FilterPut)

		admin := api.Group("")
		admin.Use(middleware.AdminKey(h.AdminKey))
		{
			admin.POST("/asignacion-automatica", h.BatchRun)
		}
	}

	return r
}

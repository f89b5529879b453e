package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/calldeck/backend/internal/http/handlers"
	httpMW "github.com/calldeck/backend/internal/http/middleware"
	"github.com/calldeck/backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler *handlers.HealthHandler
	RoomHandler   *handlers.RoomHandler
	MetricHandler *handlers.MetricHandler
	ViewHandler   *handlers.ViewHandler

	// TemplateGlob and StaticDir locate the view assets; empty values skip
	// view registration (API-only mode, used by most tests).
	TemplateGlob string
	StaticDir    string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(httpMW.Recovery(cfg.Log))
	r.Use(otelgin.Middleware("calldeck"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())
	r.Use(httpMW.Errors(cfg.Log))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.RoomHandler != nil {
			api.GET("/rooms", cfg.RoomHandler.List)
			api.POST("/rooms", cfg.RoomHandler.Create)
			api.GET("/rooms/:room_name", cfg.RoomHandler.Get)
			api.POST("/rooms/:room_name", cfg.RoomHandler.Modify)
			api.DELETE("/rooms/:room_name", cfg.RoomHandler.Delete)
		}

		if cfg.MetricHandler != nil {
			api.POST("/metrics", cfg.MetricHandler.Ingest)
			api.GET("/metrics/:room_name", cfg.MetricHandler.ListByRoom)
			api.DELETE("/metrics/:room_name", cfg.MetricHandler.DeleteByRoom)
		}
	}

	if cfg.ViewHandler != nil && cfg.TemplateGlob != "" {
		r.LoadHTMLGlob(cfg.TemplateGlob)
		if cfg.StaticDir != "" {
			r.Static("/static", cfg.StaticDir)
		}
		r.GET("/", cfg.ViewHandler.Dashboard)
		r.GET("/calls/:room_name", cfg.ViewHandler.Call)
		r.GET("/metrics/:room_name", cfg.ViewHandler.Metrics)
	}

	return r
}

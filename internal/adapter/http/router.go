package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carenow/queue-notify/internal/adapter/http/middleware"
)

type RouterDeps struct {
	QueueHandler      *QueueHandler
	InboxHandler      *InboxHandler
	PreferenceHandler *PreferenceHandler
	HealthHandler     *HealthHandler
	MetricsHandler    *MetricsHandler
	WebSocketHandler  *WebSocketHandler
	Logger            *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Tracing())
	r.Use(middleware.Logging(deps.Logger))

	r.GET("/health", deps.HealthHandler.Liveness)
	r.GET("/health/ready", deps.HealthHandler.Readiness)

	r.GET("/ws", deps.WebSocketHandler.Handle)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(200))
	{
		queues := v1.Group("/queues")
		{
			queues.POST("/:key/advance", deps.QueueHandler.Advance)
			queues.GET("/:key", deps.QueueHandler.GetState)
		}

		recipients := v1.Group("/recipients")
		{
			recipients.GET("/:id/preferences", deps.PreferenceHandler.Get)
			recipients.PUT("/:id/preferences", deps.PreferenceHandler.Upsert)
			recipients.GET("/:id/notifications", deps.InboxHandler.ListByRecipient)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("/:id", deps.InboxHandler.GetByID)
			notifications.PATCH("/:id/read", deps.InboxHandler.MarkRead)
		}

		v1.GET("/metrics", deps.MetricsHandler.GetMetrics)
	}

	return r
}

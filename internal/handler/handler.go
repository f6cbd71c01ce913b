package handler

import (
	"context"
	"time"

	"trading-supervisor/internal/agent"
	"trading-supervisor/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Querier answers one natural-language query.
type Querier interface {
	HandleQuery(ctx context.Context, text, sessionID string) domain.Recommendation
}

// EventHandler answers raw agent and gateway events.
type EventHandler interface {
	Handle(ctx context.Context, raw []byte, format agent.Format) (any, int, error)
}

type Handler struct {
	tracer  trace.Tracer
	logger  zerolog.Logger
	querier Querier
	events  EventHandler
	started time.Time
}

func New(tracer trace.Tracer, logger zerolog.Logger, querier Querier, events EventHandler) *Handler {
	return &Handler{
		tracer:  tracer,
		logger:  logger.With().Str("component", "http").Logger(),
		querier: querier,
		events:  events,
		started: time.Now(),
	}
}

// RegisterRoutes mounts the public health route on r and the analysis
// routes on api, which carries the auth and rate-limit middleware.
func (h *Handler) RegisterRoutes(r *gin.Engine, api *gin.RouterGroup) {
	r.GET("/health", h.Health)
	api.POST("/analyze", h.Analyze)
	api.POST("/agent", h.AgentEvent)
	api.POST("/gateway", h.GatewayEvent)
}

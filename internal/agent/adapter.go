package agent

import (
	"context"
	"time"

	"trading-supervisor/internal/domain"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Querier interface {
	HandleQuery(ctx context.Context, text, sessionID string) domain.Recommendation
}

type Format int

const (
	// FormatAuto answers gateway events in gateway form and everything else
	// in agent form.
	FormatAuto Format = iota
	FormatAgent
	FormatGateway
)

// Adapter turns raw host events into supervisor queries and wraps the
// resulting envelope for the host.
type Adapter struct {
	tracer      trace.Tracer
	logger      zerolog.Logger
	querier     Querier
	actionGroup string
	apiPath     string
	now         func() time.Time
}

func NewAdapter(tracer trace.Tracer, logger zerolog.Logger, querier Querier, actionGroup, apiPath string) *Adapter {
	return &Adapter{
		tracer:      tracer,
		logger:      logger.With().Str("component", "agent").Logger(),
		querier:     querier,
		actionGroup: actionGroup,
		apiPath:     apiPath,
		now:         time.Now,
	}
}

// Handle answers one event. The returned status mirrors the status carried
// inside the response so HTTP hosts can reuse it.
func (a *Adapter) Handle(ctx context.Context, raw []byte, format Format) (any, int, error) {
	ctx, span := a.tracer.Start(ctx, "agent.handle")
	defer span.End()

	ev, err := ParseEvent(raw)
	var rec domain.Recommendation
	if err != nil {
		a.logger.Warn().Err(err).Msg("event parsing failed")
		rec = requestError(err, a.now())
	} else {
		span.SetAttributes(attribute.String("session_id", ev.SessionID))
		rec = a.querier.HandleQuery(ctx, ev.Query, ev.SessionID)
	}

	gateway := format == FormatGateway || (format == FormatAuto && ev.Gateway)
	span.SetAttributes(attribute.Bool("gateway", gateway))
	if gateway {
		resp, err := FormatGatewayResponse(rec)
		if err != nil {
			return nil, 0, err
		}
		return resp, resp.StatusCode, nil
	}
	resp, err := FormatAgentResponse(rec, a.actionGroup, a.apiPath)
	if err != nil {
		return nil, 0, err
	}
	return resp, resp.Response.HTTPStatusCode, nil
}

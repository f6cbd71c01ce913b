package provider

import (
	"context"
	"fmt"
	"time"

	"trading-supervisor/internal/domain"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type aggIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonProvider fetches daily aggregates through the Polygon REST client.
type PolygonProvider struct {
	tracer   trace.Tracer
	limiter  *RateLimiter
	listAggs func(ctx context.Context, params *models.ListAggsParams) aggIterator
	now      func() time.Time
}

// NewPolygonProvider is limited to 5 requests per minute, the basic plan quota.
func NewPolygonProvider(tracer trace.Tracer, apiKey string) *PolygonProvider {
	c := polygon.New(apiKey)
	return &PolygonProvider{
		tracer:  tracer,
		limiter: NewRateLimiter(5, 12*time.Second),
		listAggs: func(ctx context.Context, params *models.ListAggsParams) aggIterator {
			return c.ListAggs(ctx, params)
		},
		now: time.Now,
	}
}

func (p *PolygonProvider) FetchDailyCloses(ctx context.Context, ticker string, days int) ([]domain.PricePoint, error) {
	ctx, span := p.tracer.Start(ctx, "polygon.fetch-daily-closes")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", ticker), attribute.Int("days", days))

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	to := p.now().UTC()
	from := to.AddDate(0, 0, -days)
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Timespan("day"),
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.
		WithAdjusted(true).
		WithOrder(models.Order("asc")).
		WithLimit(5000)

	points, err := collectCloses(p.listAggs(ctx, params))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list aggregates for %s: %w", ticker, err)
	}
	span.SetAttributes(attribute.Int("points", len(points)))
	return points, nil
}

func collectCloses(it aggIterator) ([]domain.PricePoint, error) {
	var points []domain.PricePoint
	for it.Next() {
		agg := it.Item()
		points = append(points, domain.PricePoint{
			Time:  time.Time(agg.Timestamp).UTC(),
			Close: agg.Close,
		})
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

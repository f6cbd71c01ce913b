package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trading-supervisor/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches daily closes from the public chart endpoint. It needs
// no credential.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
	now     func() time.Time
}

func NewYahooProvider(tracer trace.Tracer, baseURL string) *YahooProvider {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: NewRateLimiter(30, 2*time.Second),
		now:     time.Now,
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyCloses returns up to days of daily closes, oldest first. Missing
// closes are skipped.
func (p *YahooProvider) FetchDailyCloses(ctx context.Context, ticker string, days int) ([]domain.PricePoint, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-daily-closes")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", ticker), attribute.Int("days", days))

	to := p.now().UTC()
	from := to.AddDate(0, 0, -days)
	q := url.Values{}
	q.Set("period1", fmt.Sprint(from.Unix()))
	q.Set("period2", fmt.Sprint(to.Unix()))
	q.Set("interval", "1d")
	q.Set("events", "history")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(ticker), q.Encode())

	body, err := p.doRequest(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch chart for %s: %w", ticker, err)
	}

	var raw yahooChartResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedResponseError{Reason: "chart payload", Err: err}
	}
	if raw.Chart.Error != nil {
		return nil, &UpstreamError{Message: raw.Chart.Error.Code + ": " + raw.Chart.Error.Description}
	}
	if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := raw.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	points := make([]domain.PricePoint, 0, len(closes))
	for i, c := range closes {
		if c == nil || i >= len(result.Timestamp) {
			continue
		}
		points = append(points, domain.PricePoint{
			Time:  time.Unix(result.Timestamp[i], 0).UTC(),
			Close: *c,
		})
	}
	span.SetAttributes(attribute.Int("points", len(points)))
	return points, nil
}

func (p *YahooProvider) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; trading-supervisor/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Provider: "yahoo", StatusCode: resp.StatusCode, Body: string(body)}
	}

	return io.ReadAll(resp.Body)
}

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trading-supervisor/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// ErrMissingAPIKey is returned when no Alpha Vantage credential is configured.
var ErrMissingAPIKey = errors.New("alpha vantage api key not configured")

// AlphaVantageProvider reads the NEWS_SENTIMENT feed.
type AlphaVantageProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limit   int
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewAlphaVantageProvider is rate limited to the free tier: 5 requests per
// minute.
func NewAlphaVantageProvider(tracer trace.Tracer, apiKey, baseURL string, limit int) *AlphaVantageProvider {
	if baseURL == "" {
		baseURL = alphaVantageBaseURL
	}
	if limit <= 0 {
		limit = 50
	}
	return &AlphaVantageProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limit:   limit,
		tracer:  tracer,
		limiter: NewRateLimiter(5, 12*time.Second),
	}
}

func (p *AlphaVantageProvider) HasAPIKey() bool { return p.apiKey != "" }

type avTickerSentiment struct {
	Ticker         string `json:"ticker"`
	RelevanceScore string `json:"relevance_score"`
	SentimentScore string `json:"ticker_sentiment_score"`
}

type avArticle struct {
	Title           string              `json:"title"`
	URL             string              `json:"url"`
	Source          string              `json:"source"`
	TimePublished   string              `json:"time_published"`
	TickerSentiment []avTickerSentiment `json:"ticker_sentiment"`
}

// FetchNewsSentiment returns recent articles about ticker with their
// per-ticker sentiment annotations.
func (p *AlphaVantageProvider) FetchNewsSentiment(ctx context.Context, ticker string) ([]domain.NewsArticle, error) {
	ctx, span := p.tracer.Start(ctx, "alphavantage.fetch-news-sentiment")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", ticker))

	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("tickers", ticker)
	q.Set("apikey", p.apiKey)
	q.Set("limit", strconv.Itoa(p.limit))
	endpoint := fmt.Sprintf("%s/query?%s", p.baseURL, q.Encode())

	body, err := p.doRequest(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("fetch news for %s: %w", ticker, err)
	}

	articles, err := parseNewsSentiment(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad payload")
		return nil, fmt.Errorf("parse news for %s: %w", ticker, err)
	}
	span.SetAttributes(attribute.Int("articles", len(articles)))
	return articles, nil
}

// parseNewsSentiment checks the documented failure keys before decoding the
// feed. Alpha Vantage answers 200 for errors and rate limits alike.
func parseNewsSentiment(body []byte) ([]domain.NewsArticle, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedResponseError{Reason: "response is not a JSON object", Err: err}
	}

	if msg, ok := raw["Error Message"]; ok {
		return nil, &UpstreamError{Message: unquote(msg)}
	}
	for _, key := range []string{"Note", "Information"} {
		if msg, ok := raw[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, unquote(msg))
		}
	}

	feedRaw, ok := raw["feed"]
	if !ok {
		return nil, &MalformedResponseError{Reason: "missing feed"}
	}
	var feed []avArticle
	if err := json.Unmarshal(feedRaw, &feed); err != nil {
		return nil, &MalformedResponseError{Reason: "feed is not a list of articles", Err: err}
	}

	articles := make([]domain.NewsArticle, 0, len(feed))
	for _, item := range feed {
		article := domain.NewsArticle{
			Title:  item.Title,
			URL:    item.URL,
			Source: item.Source,
		}
		if ts, err := time.Parse("20060102T150405", item.TimePublished); err == nil {
			article.PublishedAt = ts.UTC()
		}
		for _, ts := range item.TickerSentiment {
			score, err := parseScore(ts.SentimentScore)
			if err != nil {
				return nil, &MalformedResponseError{Reason: "invalid ticker_sentiment_score for " + ts.Ticker, Err: err}
			}
			relevance, err := parseScore(ts.RelevanceScore)
			if err != nil {
				return nil, &MalformedResponseError{Reason: "invalid relevance_score for " + ts.Ticker, Err: err}
			}
			article.TickerMentions = append(article.TickerMentions, domain.TickerSentiment{
				Ticker:    strings.ToUpper(strings.TrimSpace(ts.Ticker)),
				Score:     score,
				Relevance: relevance,
			})
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func parseScore(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func unquote(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}

func (p *AlphaVantageProvider) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Provider: "alphavantage", StatusCode: resp.StatusCode, Body: string(body)}
	}

	return io.ReadAll(resp.Body)
}

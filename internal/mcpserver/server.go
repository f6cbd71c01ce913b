package mcpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trading-supervisor/internal/agent"
	"trading-supervisor/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

const (
	ServerName      = "trading-supervisor"
	AnalyzeToolName = "analyze_stock"
)

type Querier interface {
	HandleQuery(ctx context.Context, text, sessionID string) domain.Recommendation
}

type AnalyzeInput struct {
	Query     string `json:"query" jsonschema:"natural-language question naming a ticker, e.g. Should I buy AAPL?"`
	SessionID string `json:"session_id,omitempty" jsonschema:"optional caller session identifier"`
}

// New builds an MCP server exposing the analyze_stock tool. Each call is
// bounded by timeout when it is positive.
func New(querier Querier, logger zerolog.Logger, version string, timeout time.Duration) *mcp.Server {
	logger = logger.With().Str("component", "mcp").Logger()
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: AnalyzeToolName,
		Description: "Analyze a stock question. Extracts the ticker, runs RSI technical analysis " +
			"and/or news sentiment analysis, and returns a BUY/SELL/HOLD recommendation as JSON.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, any, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		rec := querier.HandleQuery(ctx, in.Query, in.SessionID)
		logger.Info().
			Str("ticker", rec.Ticker).
			Str("recommendation", string(rec.Action)).
			Msg("tool call answered")
		res, err := toolResult(rec)
		return res, nil, err
	})
	return server
}

func toolResult(rec domain.Recommendation) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode recommendation: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(raw)},
			&mcp.TextContent{Text: agent.FormatMessage(rec)},
		},
		IsError: !rec.Succeeded(),
	}, nil
}

// HTTPHandler serves server over streamable HTTP. A non-empty token is
// required as a bearer credential on every request.
func HTTPHandler(server *mcp.Server, token string) http.Handler {
	h := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	if token == "" {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.ServeHTTP(w, r)
	})
}

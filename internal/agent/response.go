package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trading-supervisor/internal/domain"
)

const MessageVersion = "1.0"

type AgentResponse struct {
	MessageVersion    string            `json:"messageVersion"`
	Response          ActionResponse    `json:"response"`
	SessionAttributes SessionAttributes `json:"sessionAttributes"`
}

type ActionResponse struct {
	ActionGroup    string                  `json:"actionGroup"`
	APIPath        string                  `json:"apiPath"`
	HTTPMethod     string                  `json:"httpMethod"`
	HTTPStatusCode int                     `json:"httpStatusCode"`
	ResponseBody   map[string]ResponseBody `json:"responseBody"`
}

// ResponseBody holds the JSON-encoded {result, message} pair as a string.
type ResponseBody struct {
	Body string `json:"body"`
}

type SessionAttributes struct {
	LastTicker         string `json:"lastTicker"`
	LastRecommendation string `json:"lastRecommendation"`
	Timestamp          string `json:"timestamp"`
}

type GatewayResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

type resultBody struct {
	Result  domain.Recommendation `json:"result"`
	Message string                `json:"message"`
}

// StatusCode maps an envelope to an HTTP status: 200 on success, 400 when
// the input was malformed, 500 otherwise.
func StatusCode(rec domain.Recommendation) int {
	if rec.Succeeded() {
		return http.StatusOK
	}
	if rec.Error != nil {
		switch rec.Error.Code {
		case domain.CodeValidation, domain.CodeInvalidTicker:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func CORSHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "POST,GET,OPTIONS",
	}
}

func FormatAgentResponse(rec domain.Recommendation, actionGroup, apiPath string) (AgentResponse, error) {
	body, err := json.Marshal(resultBody{Result: rec, Message: FormatMessage(rec)})
	if err != nil {
		return AgentResponse{}, fmt.Errorf("encode agent body: %w", err)
	}
	ts := ""
	if !rec.Timestamp.IsZero() {
		ts = rec.Timestamp.Format(time.RFC3339)
	}
	return AgentResponse{
		MessageVersion: MessageVersion,
		Response: ActionResponse{
			ActionGroup:    actionGroup,
			APIPath:        apiPath,
			HTTPMethod:     http.MethodPost,
			HTTPStatusCode: StatusCode(rec),
			ResponseBody: map[string]ResponseBody{
				"application/json": {Body: string(body)},
			},
		},
		SessionAttributes: SessionAttributes{
			LastTicker:         rec.Ticker,
			LastRecommendation: string(rec.Action),
			Timestamp:          ts,
		},
	}, nil
}

func FormatGatewayResponse(rec domain.Recommendation) (GatewayResponse, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return GatewayResponse{}, fmt.Errorf("encode gateway body: %w", err)
	}
	return GatewayResponse{
		StatusCode: StatusCode(rec),
		Headers:    CORSHeaders(),
		Body:       string(body),
	}, nil
}

// FormatMessage renders a recommendation as plain text for agent replies.
func FormatMessage(rec domain.Recommendation) string {
	var b strings.Builder
	if !rec.Succeeded() {
		summary := rec.Summary
		if summary == "" {
			summary = "Unable to process request"
		}
		fmt.Fprintf(&b, "Error: %s", summary)
		if rec.Error != nil {
			fmt.Fprintf(&b, "\nDetails: %s", rec.Error.Error())
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Trading Analysis for %s\n\n", rec.Ticker)
	fmt.Fprintf(&b, "Recommendation: %s\n", rec.Action)
	fmt.Fprintf(&b, "Confidence: %s\n\n", percent(rec.Confidence))
	fmt.Fprintf(&b, "Summary: %s\n\n", rec.Summary)

	if t := rec.Technical; t != nil && !t.Failed() {
		b.WriteString("Technical Analysis:\n")
		fmt.Fprintf(&b, "  - Current Price: $%s\n", number(t.CurrentPrice))
		fmt.Fprintf(&b, "  - RSI: %s\n", number(t.RSI))
		fmt.Fprintf(&b, "  - Signal: %s\n\n", t.Signal)
	}
	if s := rec.Sentiment; s != nil && !s.Failed() {
		b.WriteString("Sentiment Analysis:\n")
		fmt.Fprintf(&b, "  - Sentiment: %s\n", s.Sentiment)
		fmt.Fprintf(&b, "  - Confidence: %s\n", percent(s.Confidence))
	}
	return b.String()
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// requestError builds the envelope for an event that could not be parsed.
func requestError(err error, ts time.Time) domain.Recommendation {
	var de *domain.Error
	if !errors.As(err, &de) {
		err = domain.Validationf("%v", err)
	}
	rec := domain.ErrorRecommendation("", err, ts)
	rec.Summary = "Invalid request format: " + rec.Error.Message
	return rec
}

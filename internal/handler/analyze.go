package handler

import (
	"net/http"

	"trading-supervisor/internal/agent"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Query     string `json:"query" example:"Should I buy AAPL?"`
	SessionID string `json:"session_id" example:"6f1c2a1e-demo"`
}

// Analyze godoc
// @Summary      Analyze a stock query
// @Description  Extracts the ticker, runs technical and/or sentiment analysis and returns a BUY/SELL/HOLD recommendation
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request  body      AnalyzeRequest  true  "Natural-language query"
// @Success      200      {object}  domain.Recommendation
// @Failure      400      {object}  domain.Recommendation
// @Failure      500      {object}  domain.Recommendation
// @Security     ApiKeyAuth
// @Router       /api/analyze [post]
func (h *Handler) Analyze(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze")
	defer span.End()

	var req AnalyzeRequest
	// A missing or blank query is left to the supervisor so it is answered
	// with a VALIDATION_ERROR recommendation like any other bad input.
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: expected a JSON object"})
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.GetString(requestIDKey)
	}
	span.SetAttributes(attribute.String("session_id", sessionID))

	rec := h.querier.HandleQuery(ctx, req.Query, sessionID)
	c.JSON(agent.StatusCode(rec), rec)
}

package handler

import (
	"net/http"

	"trading-supervisor/internal/agent"

	"github.com/gin-gonic/gin"
)

// AgentEvent godoc
// @Summary      Agent action-group invocation
// @Description  Accepts an agent event ({"inputText": ...}) or an API-Gateway proxy event and answers in the matching wrapper format
// @Tags         agent
// @Accept       json
// @Produce      json
// @Param        event  body      object  true  "Agent or gateway event"
// @Success      200    {object}  agent.AgentResponse
// @Failure      400    {object}  agent.AgentResponse
// @Failure      500    {object}  agent.AgentResponse
// @Security     ApiKeyAuth
// @Router       /api/agent [post]
func (h *Handler) AgentEvent(c *gin.Context) {
	h.serveEvent(c, agent.FormatAuto, "handler.agent-event")
}

// GatewayEvent godoc
// @Summary      Gateway proxy invocation
// @Description  Accepts an API-Gateway proxy event and answers with statusCode, CORS headers and a JSON body
// @Tags         agent
// @Accept       json
// @Produce      json
// @Param        event  body      object  true  "Gateway event"
// @Success      200    {object}  agent.GatewayResponse
// @Failure      400    {object}  agent.GatewayResponse
// @Failure      500    {object}  agent.GatewayResponse
// @Security     ApiKeyAuth
// @Router       /api/gateway [post]
func (h *Handler) GatewayEvent(c *gin.Context) {
	h.serveEvent(c, agent.FormatGateway, "handler.gateway-event")
}

func (h *Handler) serveEvent(c *gin.Context, format agent.Format, spanName string) {
	ctx, span := h.tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	resp, status, err := h.events.Handle(ctx, raw, format)
	if err != nil {
		span.RecordError(err)
		h.logger.Error().Err(err).Msg("failed to encode event response")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode response"})
		return
	}
	c.JSON(status, resp)
}

package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/concierge/backend/internal/domain"
	"github.com/concierge/backend/internal/observability"
)

const serviceName = "concierge-backend"

// ChatUsecase is the application logic served over HTTP
type ChatUsecase interface {
	Chat(ctx context.Context, request *domain.ChatRequest) (*domain.ChatResponse, error)
	Search(ctx context.Context, request *domain.SearchRequest) (*domain.SearchResponse, error)
}

// HandlerConfig holds handler settings
type HandlerConfig struct {
	Version string
	MaxTopK int
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service ChatUsecase
	version string
	maxTopK int
	logger  zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(service ChatUsecase, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		service: service,
		version: version,
		maxTopK: cfg.MaxTopK,
		logger:  logger.With().Str("component", "http").Logger(),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": h.version,
	})
}

// Search ranks the catalog for a query without calling the assistant
func (h *Handler) Search(c *gin.Context) {
	var request domain.SearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.respondError(c, http.StatusBadRequest, "query is required")
		return
	}
	if request.TopK < 0 {
		h.respondError(c, http.StatusBadRequest, "top_k must not be negative")
		return
	}
	if h.maxTopK > 0 && request.TopK > h.maxTopK {
		request.TopK = h.maxTopK
	}

	response, err := h.service.Search(c.Request.Context(), &request)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Chat answers a conversational recommendation request
func (h *Handler) Chat(c *gin.Context) {
	var request domain.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.respondError(c, http.StatusBadRequest, "query is required")
		return
	}

	response, err := h.service.Chat(c.Request.Context(), &request)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// handleError maps domain errors onto HTTP statuses
func (h *Handler) handleError(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		observability.WithRequest(c.Request.Context(), h.logger).
			Error().Err(err).Int("status", status).Str("path", c.FullPath()).Msg("request failed")
	}
	h.respondError(c, status, message)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded, try again later"
	case errors.Is(err, domain.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable, "assistant is not configured"
	case errors.Is(err, domain.ErrAssistantFailure), errors.Is(err, domain.ErrMalformedReply):
		return http.StatusBadGateway, "assistant failed to answer"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handler) respondError(c *gin.Context, status int, message string) {
	body := gin.H{"error": message}
	if id := c.GetString(requestIDKey); id != "" {
		body["request_id"] = id
	}
	c.AbortWithStatusJSON(status, body)
}

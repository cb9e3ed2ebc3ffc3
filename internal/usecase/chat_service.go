package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/concierge/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonWordRegex         = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
	currentDateRegex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	defaultChatCacheTTL  = 10 * time.Minute
	chatOutcomeOK        = "ok"
	chatOutcomeCached    = "cached"
	chatOutcomeError     = "error"
	chatOutcomeNoService = "unavailable"
)

// ChatServiceConfig holds configuration for the chat service
type ChatServiceConfig struct {
	CacheTTL time.Duration
	TopK     int
	Profile  domain.UserProfile
	Metrics  domain.MetricsRecorder
}

// ChatService narrows the catalog for a query and asks the assistant for an answer
type ChatService struct {
	catalog   *domain.Catalog
	ranker    *RankingService
	assistant domain.Assistant
	cache     domain.CacheRepository
	profile   domain.UserProfile
	cacheTTL  time.Duration
	topK      int
	metrics   domain.MetricsRecorder
	logger    zerolog.Logger
}

// NewChatService creates a new chat service with dependencies.
// cache and assistant may be nil.
func NewChatService(
	catalog *domain.Catalog,
	ranker *RankingService,
	assistant domain.Assistant,
	cache domain.CacheRepository,
	config ChatServiceConfig,
	logger zerolog.Logger,
) *ChatService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = defaultChatCacheTTL
	}

	topK := config.TopK
	if topK <= 0 {
		topK = ranker.DefaultTopK()
	}

	if catalog == nil {
		catalog = domain.EmptyCatalog()
	}

	return &ChatService{
		catalog:   catalog,
		ranker:    ranker,
		assistant: assistant,
		cache:     cache,
		profile:   config.Profile,
		cacheTTL:  cacheTTL,
		topK:      topK,
		metrics:   config.Metrics,
		logger:    logger.With().Str("component", "chat").Logger(),
	}
}

// Profile returns the persona served by this service
func (s *ChatService) Profile() domain.UserProfile {
	return s.profile
}

// Search ranks the catalog for a search request. Empty tastes fall back to the
// profile tastes and a non-positive TopK to the configured default.
func (s *ChatService) Search(ctx context.Context, request *domain.SearchRequest) (*domain.SearchResponse, error) {
	if request == nil || strings.TrimSpace(request.Query) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tastes := request.Tastes
	if tastes == "" {
		tastes = s.profile.Tastes
	}
	topK := request.TopK
	if topK <= 0 {
		topK = s.topK
	}

	return &domain.SearchResponse{
		Query:   request.Query,
		Matches: s.ranker.Search(s.catalog, request.Query, tastes, topK),
	}, nil
}

// Chat answers a conversational request.
// Flow: check cache -> rank catalog -> ask assistant -> cache -> return
func (s *ChatService) Chat(ctx context.Context, request *domain.ChatRequest) (*domain.ChatResponse, error) {
	started := time.Now()

	if request == nil || strings.TrimSpace(request.Query) == "" {
		return nil, domain.ErrInvalidRequest
	}

	currentDate := strings.TrimSpace(request.CurrentDate)
	if currentDate == "" {
		currentDate = domain.DefaultCurrentDate
	}
	if !currentDateRegex.MatchString(currentDate) {
		return nil, fmt.Errorf("%w: current_date must be YYYY-MM-DD", domain.ErrInvalidRequest)
	}

	if s.assistant == nil {
		s.observe(chatOutcomeNoService, started)
		return nil, domain.ErrAssistantUnavailable
	}

	cacheKey := generateCacheKey(request.Query, currentDate)

	// Try cache first
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		s.observe(chatOutcomeCached, started)
		return cached, nil
	}

	matches := s.ranker.Search(s.catalog, request.Query, s.profile.Tastes, s.topK)

	s.logger.Debug().
		Str("query", request.Query).
		Int("matches", len(matches)).
		Msg("catalog narrowed for assistant")

	response, err := s.assistant.Respond(ctx, domain.AssistantRequest{
		Query:       request.Query,
		CurrentDate: currentDate,
		Profile:     s.profile,
		Matches:     matches,
	})
	if err != nil {
		s.observe(chatOutcomeError, started)
		return nil, err
	}

	if err := s.setInCache(ctx, cacheKey, response); err != nil {
		s.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache chat response")
	}

	s.observe(chatOutcomeOK, started)
	return response, nil
}

// generateCacheKey creates a normalized cache key.
// Format: "chat:{normalized_query}:{date}"
func generateCacheKey(query, currentDate string) string {
	return fmt.Sprintf("chat:%s:%s", normalizeForCacheKey(query), currentDate)
}

// normalizeForCacheKey lower-cases, strips punctuation and collapses whitespace
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonWordRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// getFromCache retrieves a chat response from cache
func (s *ChatService) getFromCache(ctx context.Context, key string) (*domain.ChatResponse, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		s.observeCache(false)
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("cache lookup failed")
		}
		return nil, err
	}

	var response domain.ChatResponse
	if err := json.Unmarshal(data, &response); err != nil {
		s.observeCache(false)
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cached reply")
		return nil, domain.ErrCacheMiss
	}
	s.observeCache(true)
	return &response, nil
}

// setInCache stores a chat response in cache
func (s *ChatService) setInCache(ctx context.Context, key string, response *domain.ChatResponse) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}

func (s *ChatService) observe(outcome string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveChat(outcome, time.Since(started))
	}
}

func (s *ChatService) observeCache(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCache(hit)
	}
}

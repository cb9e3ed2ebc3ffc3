package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Assistant turns ranked matches into a structured conversational answer
type Assistant interface {
	Respond(ctx context.Context, request AssistantRequest) (*ChatResponse, error)
}

// MetricsRecorder receives search and chat observations
type MetricsRecorder interface {
	ObserveSearch(keywords, matches int, elapsed time.Duration)
	ObserveChat(outcome string, elapsed time.Duration)
	ObserveCache(hit bool)
}

package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrAssistantFailure is returned when the language model request fails
	ErrAssistantFailure = errors.New("assistant request failed")

	// ErrMalformedReply is returned when the assistant reply is not the expected JSON
	ErrMalformedReply = errors.New("assistant reply is malformed")

	// ErrAssistantUnavailable is returned when no assistant is configured
	ErrAssistantUnavailable = errors.New("assistant not configured")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCatalogUnreadable is returned when the catalog document exists but cannot be decoded
	ErrCatalogUnreadable = errors.New("catalog document unreadable")
)

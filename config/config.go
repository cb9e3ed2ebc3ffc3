package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/concierge/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig       `mapstructure:"server"`
	Log       LogConfig          `mapstructure:"log"`
	Catalog   CatalogConfig      `mapstructure:"catalog"`
	Search    SearchConfig       `mapstructure:"search"`
	Profile   domain.UserProfile `mapstructure:"profile"`
	LLM       LLMConfig          `mapstructure:"llm"`
	Cache     CacheConfig        `mapstructure:"cache"`
	RateLimit RateLimitConfig    `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// CatalogConfig holds the catalog document location
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// SearchConfig holds ranking configuration
type SearchConfig struct {
	TopK              int             `mapstructure:"top_k"`
	MaxTopK           int             `mapstructure:"max_top_k"`
	NameWeight        int             `mapstructure:"name_weight"`
	DescriptionWeight int             `mapstructure:"description_weight"`
	SnippetLength     int             `mapstructure:"snippet_length"`
	StopWords         []string        `mapstructure:"stop_words"`
	Signature         SignatureConfig `mapstructure:"signature"`
}

// SignatureConfig holds the signature item override
type SignatureConfig struct {
	Substring      string   `mapstructure:"substring"`
	Bonus          int      `mapstructure:"bonus"`
	TriggerPhrases []string `mapstructure:"trigger_phrases"`
}

// LLMConfig holds language model configuration
type LLMConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Provider          string        `mapstructure:"provider"` // "openai" or "ollama"
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	ServerURL         string        `mapstructure:"server_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type            string        `mapstructure:"type"` // "memory" or "redis"
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Redis           RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	Prefix   string `mapstructure:"prefix"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from the given file, or from the default
// search paths when path is empty
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/concierge/")
	}

	// Environment variable settings
	v.SetEnvPrefix("CONCIERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Catalog defaults
	v.SetDefault("catalog.path", "data.json")

	// Search defaults
	v.SetDefault("search.top_k", 15)
	v.SetDefault("search.max_top_k", 50)
	v.SetDefault("search.name_weight", 3)
	v.SetDefault("search.description_weight", 1)
	v.SetDefault("search.snippet_length", 120)
	v.SetDefault("search.signature.substring", "fällä")
	v.SetDefault("search.signature.bonus", 1000)
	v.SetDefault("search.signature.trigger_phrases", []string{"birthday"})

	// Profile defaults
	v.SetDefault("profile.name", "Dika")
	v.SetDefault("profile.orders_frequency", "Erratic, always trying new things, daring, healthy")
	v.SetDefault("profile.tastes", "Likes Chocolate and Vanilla, Likes Music, Likes Guitars, Does not like blueberries")
	v.SetDefault("profile.habits", "Orders tamwin every friday, and also asks for his thobes to be taken for laundry every friday as well")

	// LLM defaults
	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.server_url", "http://localhost:11434")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.requests_per_second", 2.0)
	v.SetDefault("llm.burst", 5)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 10)
	v.SetDefault("cache.redis.prefix", "concierge:")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.burst", 10)
}

// bindEnv registers keys without defaults so AutomaticEnv can see them
func bindEnv(v *viper.Viper) error {
	if err := v.BindEnv("search.stop_words"); err != nil {
		return err
	}
	// OPENAI_API_KEY is honoured as a fallback for the provider key
	return v.BindEnv("llm.api_key", "CONCIERGE_LLM_API_KEY", "OPENAI_API_KEY")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	if config.Search.TopK <= 0 {
		return fmt.Errorf("search top_k must be positive, got: %d", config.Search.TopK)
	}
	if config.Search.MaxTopK < config.Search.TopK {
		return fmt.Errorf("search max_top_k (%d) must be at least top_k (%d)", config.Search.MaxTopK, config.Search.TopK)
	}
	if config.Search.NameWeight <= 0 || config.Search.DescriptionWeight <= 0 {
		return fmt.Errorf("search weights must be positive")
	}
	if config.Search.NameWeight < config.Search.DescriptionWeight {
		return fmt.Errorf("search name_weight (%d) must be at least description_weight (%d)",
			config.Search.NameWeight, config.Search.DescriptionWeight)
	}

	if config.LLM.Provider != "openai" && config.LLM.Provider != "ollama" {
		return fmt.Errorf("llm provider must be 'openai' or 'ollama', got: %s", config.LLM.Provider)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when cache type is 'redis'")
	}

	return nil
}

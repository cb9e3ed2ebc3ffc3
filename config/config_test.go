package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Server.ShutdownTimeout != 10*time.Second {
			t.Errorf("Server.ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
		}
		if cfg.Catalog.Path != "data.json" {
			t.Errorf("Catalog.Path = %s, want data.json", cfg.Catalog.Path)
		}
		if cfg.Search.TopK != 15 {
			t.Errorf("Search.TopK = %d, want 15", cfg.Search.TopK)
		}
		if cfg.Search.NameWeight != 3 || cfg.Search.DescriptionWeight != 1 {
			t.Errorf("Search weights = %d/%d, want 3/1", cfg.Search.NameWeight, cfg.Search.DescriptionWeight)
		}
		if cfg.Search.StopWords != nil {
			t.Errorf("Search.StopWords = %v, want nil", cfg.Search.StopWords)
		}
		if cfg.Search.Signature.Substring != "fällä" {
			t.Errorf("Search.Signature.Substring = %s, want fällä", cfg.Search.Signature.Substring)
		}
		if len(cfg.Search.Signature.TriggerPhrases) != 1 || cfg.Search.Signature.TriggerPhrases[0] != "birthday" {
			t.Errorf("Search.Signature.TriggerPhrases = %v, want [birthday]", cfg.Search.Signature.TriggerPhrases)
		}
		if cfg.Profile.Name != "Dika" {
			t.Errorf("Profile.Name = %s, want Dika", cfg.Profile.Name)
		}
		if !strings.Contains(cfg.Profile.Tastes, "Likes Guitars") {
			t.Errorf("Profile.Tastes = %s, want guitars", cfg.Profile.Tastes)
		}
		if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
			t.Errorf("LLM = %s/%s, want openai/gpt-4o-mini", cfg.LLM.Provider, cfg.LLM.Model)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 10*time.Minute {
			t.Errorf("Cache.TTL = %v, want 10m", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 60 {
			t.Errorf("RateLimit.PerIP = %d, want 60", cfg.RateLimit.PerIP)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		t.Setenv("CONCIERGE_SERVER_PORT", "9090")
		t.Setenv("CONCIERGE_SERVER_ENVIRONMENT", "production")
		t.Setenv("CONCIERGE_CATALOG_PATH", "/srv/catalog.json")
		t.Setenv("CONCIERGE_SEARCH_TOP_K", "5")
		t.Setenv("CONCIERGE_SEARCH_STOP_WORDS", "the,a")
		t.Setenv("CONCIERGE_PROFILE_NAME", "Sara")
		t.Setenv("CONCIERGE_LLM_PROVIDER", "ollama")
		t.Setenv("CONCIERGE_LLM_API_KEY", "sk-test")
		t.Setenv("CONCIERGE_CACHE_TYPE", "redis")
		t.Setenv("CONCIERGE_CACHE_REDIS_ADDR", "localhost:6379")
		t.Setenv("CONCIERGE_CACHE_TTL", "24h")
		t.Setenv("CONCIERGE_RATELIMIT_PER_IP", "200")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Catalog.Path != "/srv/catalog.json" {
			t.Errorf("Catalog.Path = %s, want /srv/catalog.json", cfg.Catalog.Path)
		}
		if cfg.Search.TopK != 5 {
			t.Errorf("Search.TopK = %d, want 5", cfg.Search.TopK)
		}
		if len(cfg.Search.StopWords) != 2 || cfg.Search.StopWords[0] != "the" {
			t.Errorf("Search.StopWords = %v, want [the a]", cfg.Search.StopWords)
		}
		if cfg.Profile.Name != "Sara" {
			t.Errorf("Profile.Name = %s, want Sara", cfg.Profile.Name)
		}
		if cfg.LLM.Provider != "ollama" {
			t.Errorf("LLM.Provider = %s, want ollama", cfg.LLM.Provider)
		}
		if cfg.LLM.APIKey != "sk-test" {
			t.Errorf("LLM.APIKey = %s, want sk-test", cfg.LLM.APIKey)
		}
		if cfg.Cache.Type != "redis" || cfg.Cache.Redis.Addr != "localhost:6379" {
			t.Errorf("Cache = %s@%s, want redis@localhost:6379", cfg.Cache.Type, cfg.Cache.Redis.Addr)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
	})

	t.Run("falls back to OPENAI_API_KEY", func(t *testing.T) {
		t.Setenv("CONCIERGE_LLM_API_KEY", "")
		os.Unsetenv("CONCIERGE_LLM_API_KEY")
		t.Setenv("OPENAI_API_KEY", "sk-openai")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.LLM.APIKey != "sk-openai" {
			t.Errorf("LLM.APIKey = %s, want sk-openai", cfg.LLM.APIKey)
		}
	})

	t.Run("reads explicit config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "concierge.yaml")
		content := "server:\n  port: \"7070\"\nsearch:\n  top_k: 3\n  stop_words: [\"i\", \"want\"]\nprofile:\n  name: Omar\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070", cfg.Server.Port)
		}
		if cfg.Search.TopK != 3 {
			t.Errorf("Search.TopK = %d, want 3", cfg.Search.TopK)
		}
		if len(cfg.Search.StopWords) != 2 {
			t.Errorf("Search.StopWords = %v, want 2 words", cfg.Search.StopWords)
		}
		if cfg.Profile.Name != "Omar" {
			t.Errorf("Profile.Name = %s, want Omar", cfg.Profile.Name)
		}
		if cfg.Profile.Habits == "" {
			t.Error("Profile.Habits should keep its default")
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("LoadFile() error = nil, want error")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "invalid cache type",
			env:     map[string]string{"CONCIERGE_CACHE_TYPE": "memcached"},
			wantErr: "cache type must be",
		},
		{
			name:    "redis without address",
			env:     map[string]string{"CONCIERGE_CACHE_TYPE": "redis"},
			wantErr: "redis address is required",
		},
		{
			name:    "non-positive top_k",
			env:     map[string]string{"CONCIERGE_SEARCH_TOP_K": "0"},
			wantErr: "top_k must be positive",
		},
		{
			name:    "max_top_k below top_k",
			env:     map[string]string{"CONCIERGE_SEARCH_TOP_K": "20", "CONCIERGE_SEARCH_MAX_TOP_K": "10"},
			wantErr: "max_top_k",
		},
		{
			name:    "description outweighs name",
			env:     map[string]string{"CONCIERGE_SEARCH_NAME_WEIGHT": "1", "CONCIERGE_SEARCH_DESCRIPTION_WEIGHT": "2"},
			wantErr: "name_weight",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"CONCIERGE_LLM_PROVIDER": "bard"},
			wantErr: "llm provider",
		},
		{
			name:    "unknown log format",
			env:     map[string]string{"CONCIERGE_LOG_FORMAT": "xml"},
			wantErr: "log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

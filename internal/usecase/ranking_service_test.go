package usecase

import (
	"slices"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concierge/backend/internal/domain"
)

const dikaTastes = "Likes Chocolate and Vanilla, Likes Music, Likes Guitars, Does not like blueberries"

func newTestRanker(config RankConfig) *RankingService {
	return NewRankingService(config, zerolog.Nop())
}

func TestNewRankingService(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		svc := newTestRanker(RankConfig{})
		assert.Equal(t, 3, svc.nameWeight)
		assert.Equal(t, 1, svc.descriptionWeight)
		assert.Equal(t, 1000, svc.signatureBonus)
		assert.Equal(t, "fällä", svc.signatureSubstring)
		assert.Equal(t, []string{"birthday"}, svc.triggerPhrases)
		assert.Equal(t, 15, svc.DefaultTopK())
	})

	t.Run("empty trigger list disables override", func(t *testing.T) {
		svc := newTestRanker(RankConfig{TriggerPhrases: []string{}})
		assert.Empty(t, svc.triggerPhrases)
	})

	t.Run("normalizes configured values", func(t *testing.T) {
		svc := newTestRanker(RankConfig{
			TriggerPhrases:     []string{" Anniversary ", ""},
			SignatureSubstring: " GALA ",
			SnippetLength:      -5,
		})
		assert.Equal(t, []string{"anniversary"}, svc.triggerPhrases)
		assert.Equal(t, "gala", svc.signatureSubstring)
		assert.Equal(t, 0, svc.snippetLength)
	})
}

func TestRankingService_Search(t *testing.T) {
	svc := newTestRanker(RankConfig{})
	catalog := domain.NewCatalog(sampleEntries())

	t.Run("music guitar scenario", func(t *testing.T) {
		music := domain.NewCatalog([]domain.CatalogEntry{
			domain.NewCatalogEntry("Music", nil, domain.MapNode(
				domain.Field{Key: "Guitars", Value: domain.ListNode(record("Fender Strat", "electric guitar", nil))},
			)),
		})

		matches := svc.Search(music, "I want a guitar", "Likes Guitars", 15)
		require.Len(t, matches, 1)
		assert.Equal(t, "Music", matches[0].Service)
		assert.Equal(t, "Guitars", matches[0].Store)
		assert.Equal(t, "Fender Strat", matches[0].ItemName)
		assert.Greater(t, matches[0].Score, 0)
	})

	t.Run("name hits outrank description hits", func(t *testing.T) {
		matches := svc.Search(catalog, "I want a guitar", "Likes Guitars", 15)
		require.Len(t, matches, 2)
		assert.Equal(t, "Acoustic Guitar", matches[0].ItemName)
		assert.Equal(t, 3, matches[0].Score)
		assert.Equal(t, "Fender Strat", matches[1].ItemName)
		assert.Equal(t, 1, matches[1].Score)
	})

	t.Run("birthday puts signature item first", func(t *testing.T) {
		matches := svc.Search(catalog, "Plan a birthday for me", dikaTastes, 15)
		require.NotEmpty(t, matches)
		assert.Equal(t, "Fällä Boat Trip", matches[0].ItemName)
		assert.Equal(t, domain.StoreNotAvailable, matches[0].Store)
	})

	t.Run("signature item is ordinary without trigger", func(t *testing.T) {
		matches := svc.Search(catalog, "boat", "", 15)
		require.Len(t, matches, 1)
		assert.Equal(t, "Fällä Boat Trip", matches[0].ItemName)
		assert.Equal(t, 4, matches[0].Score)
	})

	t.Run("empty catalog", func(t *testing.T) {
		matches := svc.Search(domain.EmptyCatalog(), "birthday guitar", dikaTastes, 15)
		assert.NotNil(t, matches)
		assert.Empty(t, matches)
	})

	t.Run("nil catalog", func(t *testing.T) {
		assert.Empty(t, svc.Search(nil, "guitar", "", 15))
	})

	t.Run("no keyword overlap", func(t *testing.T) {
		assert.Empty(t, svc.Search(catalog, "submarine", "Likes Astronomy", 15))
	})
}

func TestRankingService_Rank(t *testing.T) {
	normalizer := NewCatalogNormalizer()
	entries := sampleEntries()

	t.Run("idempotent", func(t *testing.T) {
		svc := newTestRanker(RankConfig{SnippetLength: 12})
		first := svc.Rank(normalizer.Normalize(entries), "chocolate cake", dikaTastes, 5)
		second := svc.Rank(normalizer.Normalize(entries), "chocolate cake", dikaTastes, 5)
		assert.Equal(t, first, second)
	})

	t.Run("filter sort and truncation invariants", func(t *testing.T) {
		svc := newTestRanker(RankConfig{})
		queries := []string{"guitar", "cake", "birthday", "music cake guitar wash", "nothing"}
		for _, query := range queries {
			for _, topK := range []int{0, 1, 2, 3, 10} {
				matches := svc.Rank(normalizer.Normalize(entries), query, dikaTastes, topK)
				assert.LessOrEqual(t, len(matches), topK, "query=%q topK=%d", query, topK)
				for i, m := range matches {
					assert.Greater(t, m.Score, 0, "query=%q", query)
					if i > 0 {
						assert.GreaterOrEqual(t, matches[i-1].Score, m.Score, "query=%q", query)
					}
				}
			}
		}
	})

	t.Run("non-positive topK returns empty", func(t *testing.T) {
		svc := newTestRanker(RankConfig{})
		assert.Empty(t, svc.Rank(normalizer.Normalize(entries), "guitar", "", 0))
		assert.Empty(t, svc.Rank(normalizer.Normalize(entries), "guitar", "", -3))
	})

	t.Run("ties keep traversal order", func(t *testing.T) {
		svc := newTestRanker(RankConfig{})
		tied := []domain.CatalogEntry{
			domain.NewCatalogEntry("A", nil, domain.ListNode(
				record("Red Rose", "", nil),
				record("White Rose", "", nil),
				record("Yellow Rose", "", nil),
			)),
		}
		matches := svc.Rank(normalizer.Normalize(tied), "rose", "", 10)
		require.Len(t, matches, 3)
		assert.Equal(t, "Red Rose", matches[0].ItemName)
		assert.Equal(t, "White Rose", matches[1].ItemName)
		assert.Equal(t, "Yellow Rose", matches[2].ItemName)
	})

	t.Run("signature bonus exceeds best ordinary score", func(t *testing.T) {
		svc := newTestRanker(RankConfig{SignatureBonus: 1})
		crowded := []domain.CatalogEntry{
			domain.NewCatalogEntry("Gifts", nil, domain.ListNode(
				record("Birthday Chocolate Vanilla Music Guitars", "birthday chocolate vanilla music guitars", nil),
				record("Fällä Gala", "", nil),
			)),
		}
		matches := svc.Rank(normalizer.Normalize(crowded), "birthday", dikaTastes, 1)
		require.Len(t, matches, 1)
		assert.Equal(t, "Fällä Gala", matches[0].ItemName)
	})

	t.Run("nameless items never match", func(t *testing.T) {
		svc := newTestRanker(RankConfig{})
		nameless := []domain.CatalogEntry{
			domain.NewCatalogEntry("Odd", nil, domain.ListNode(
				domain.MapNode(domain.Field{Key: "description", Value: domain.ScalarNode("guitar strings")}),
			)),
		}
		assert.Empty(t, svc.Rank(normalizer.Normalize(nameless), "guitar", "", 10))
	})

	t.Run("snippet truncated on runes", func(t *testing.T) {
		svc := newTestRanker(RankConfig{SnippetLength: 7})
		matches := svc.Rank(normalizer.Normalize(entries), "boat", "", 1)
		require.Len(t, matches, 1)
		assert.Equal(t, "Private...", matches[0].Description)
	})

	t.Run("records metrics", func(t *testing.T) {
		metrics := &MockMetrics{}
		svc := newTestRanker(RankConfig{Metrics: metrics})
		svc.Rank(normalizer.Normalize(entries), "guitar", "", 10)
		assert.Equal(t, []int{2}, metrics.searches)
	})

	t.Run("does not reorder input", func(t *testing.T) {
		svc := newTestRanker(RankConfig{})
		items := normalizer.Collect(entries)
		before := slices.Clone(items)
		svc.Rank(slices.Values(items), "cake", dikaTastes, 10)
		assert.Equal(t, before, items)
	})
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"zero limit omits", "anything", 0, ""},
		{"short text untouched", "cake", 10, "cake"},
		{"multi-byte runes", "fällä boat", 5, "fällä..."},
		{"trailing space trimmed", "red rose", 4, "red..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRunes(tt.text, tt.limit); got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}

package usecase

import (
	"cmp"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/concierge/backend/internal/domain"
)

// Keyword weights for scoring
const (
	defaultNameWeight        = 3 // Keyword found in the item name
	defaultDescriptionWeight = 1 // Keyword found in the item description
)

// Signature item defaults
const (
	defaultSignatureBonus     = 1000
	defaultSignatureSubstring = "fällä"
	defaultTopK               = 15
)

// defaultTriggerPhrases switch the signature override on
var defaultTriggerPhrases = []string{"birthday"}

// RankConfig holds configuration for the ranking service
type RankConfig struct {
	NameWeight        int
	DescriptionWeight int
	StopWords         []string
	// TriggerPhrases enable the signature bonus when found in the query.
	// nil selects the defaults, an empty slice disables the override.
	TriggerPhrases     []string
	SignatureSubstring string
	SignatureBonus     int
	// SnippetLength caps the description attached to each match in runes; 0 omits it.
	SnippetLength int
	DefaultTopK   int
	Metrics       domain.MetricsRecorder
}

// RankingService scores catalog items against a query and a taste profile
type RankingService struct {
	extractor          *KeywordExtractor
	normalizer         *CatalogNormalizer
	nameWeight         int
	descriptionWeight  int
	triggerPhrases     []string
	signatureSubstring string
	signatureBonus     int
	snippetLength      int
	defaultTopK        int
	metrics            domain.MetricsRecorder
	logger             zerolog.Logger
}

// NewRankingService creates a new ranking service with the given configuration
func NewRankingService(config RankConfig, logger zerolog.Logger) *RankingService {
	nameWeight := config.NameWeight
	if nameWeight <= 0 {
		nameWeight = defaultNameWeight
	}

	descriptionWeight := config.DescriptionWeight
	if descriptionWeight <= 0 {
		descriptionWeight = defaultDescriptionWeight
	}

	triggers := config.TriggerPhrases
	if triggers == nil {
		triggers = defaultTriggerPhrases
	}
	lowered := make([]string, 0, len(triggers))
	for _, phrase := range triggers {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase != "" {
			lowered = append(lowered, phrase)
		}
	}

	signature := strings.ToLower(strings.TrimSpace(config.SignatureSubstring))
	if signature == "" {
		signature = defaultSignatureSubstring
	}

	bonus := config.SignatureBonus
	if bonus <= 0 {
		bonus = defaultSignatureBonus
	}

	topK := config.DefaultTopK
	if topK <= 0 {
		topK = defaultTopK
	}

	snippet := config.SnippetLength
	if snippet < 0 {
		snippet = 0
	}

	return &RankingService{
		extractor:          NewKeywordExtractor(config.StopWords),
		normalizer:         NewCatalogNormalizer(),
		nameWeight:         nameWeight,
		descriptionWeight:  descriptionWeight,
		triggerPhrases:     lowered,
		signatureSubstring: signature,
		signatureBonus:     bonus,
		snippetLength:      snippet,
		defaultTopK:        topK,
		metrics:            config.Metrics,
		logger:             logger.With().Str("component", "rank").Logger(),
	}
}

// DefaultTopK returns the configured result cap
func (s *RankingService) DefaultTopK() int {
	return s.defaultTopK
}

// Search ranks every item of the catalog
func (s *RankingService) Search(catalog *domain.Catalog, query, tastes string, topK int) []domain.ScoredMatch {
	return s.Rank(s.normalizer.Normalize(catalog.Entries()), query, tastes, topK)
}

// Rank scores the items, drops those scoring zero, sorts the rest by
// descending score and keeps the first topK. Equal scores keep the order in
// which the items were produced.
func (s *RankingService) Rank(items iter.Seq[domain.CatalogItem], query, tastes string, topK int) []domain.ScoredMatch {
	started := time.Now()
	matches := []domain.ScoredMatch{}

	keywords := s.extractor.Extract(query, tastes)
	if topK <= 0 {
		s.observe(len(keywords), 0, started)
		return matches
	}

	triggered := s.isTriggered(strings.ToLower(query))
	bonus := s.bonusFor(len(keywords))

	for item := range items {
		score := s.calculateScore(item.Item, keywords)
		if triggered && s.isSignatureItem(item.Item) {
			score += bonus
		}
		if score <= 0 {
			continue
		}
		matches = append(matches, s.toMatch(item, score))
	}

	slices.SortStableFunc(matches, func(a, b domain.ScoredMatch) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	s.logger.Debug().
		Strs("keywords", keywords).
		Bool("signature_triggered", triggered).
		Int("matches", len(matches)).
		Msg("ranked catalog")

	s.observe(len(keywords), len(matches), started)
	return matches
}

// calculateScore sums the weights of every keyword found in the item name and
// description. Each field counts at most once per keyword.
func (s *RankingService) calculateScore(item domain.Item, keywords []string) int {
	if item.Name == "" {
		return 0
	}

	nameLower := strings.ToLower(item.Name)
	descriptionLower := strings.ToLower(item.Description)

	score := 0
	for _, keyword := range keywords {
		if strings.Contains(nameLower, keyword) {
			score += s.nameWeight
		}
		if strings.Contains(descriptionLower, keyword) {
			score += s.descriptionWeight
		}
	}
	return score
}

// isTriggered reports whether the lower-cased query holds a trigger phrase
func (s *RankingService) isTriggered(queryLower string) bool {
	for _, phrase := range s.triggerPhrases {
		if strings.Contains(queryLower, phrase) {
			return true
		}
	}
	return false
}

func (s *RankingService) isSignatureItem(item domain.Item) bool {
	return item.Name != "" && strings.Contains(strings.ToLower(item.Name), s.signatureSubstring)
}

// bonusFor returns a bonus strictly above the best ordinary score reachable
// with n keywords.
func (s *RankingService) bonusFor(n int) int {
	ceiling := n*(s.nameWeight+s.descriptionWeight) + 1
	return max(s.signatureBonus, ceiling)
}

func (s *RankingService) toMatch(item domain.CatalogItem, score int) domain.ScoredMatch {
	return domain.ScoredMatch{
		Service:     item.Service,
		Store:       item.Store,
		ItemName:    item.Item.Name,
		Price:       item.Item.Price,
		Score:       score,
		Description: truncateRunes(item.Item.Description, s.snippetLength),
	}
}

func (s *RankingService) observe(keywords, matches int, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSearch(keywords, matches, time.Since(started))
	}
}

// truncateRunes cuts text to at most limit runes, marking the cut with "..."
func truncateRunes(text string, limit int) string {
	if limit <= 0 || text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

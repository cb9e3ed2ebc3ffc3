package usecase

import (
	"strings"
)

// keywordTrimSet is stripped from both ends of every token
const keywordTrimSet = ",.!?;:\"'()[]{}"

// DefaultStopWords are excluded from the keyword bag: articles, prepositions,
// pronouns, conjunctions and conversational filler verbs.
var DefaultStopWords = []string{
	// Articles and conjunctions
	"a", "an", "the", "and", "or", "but", "so", "if", "than", "then",
	// Prepositions
	"to", "for", "of", "in", "on", "at", "by", "from", "with", "about",
	"into", "as", "up", "out", "over", "under", "between",
	// Pronouns and determiners
	"i", "me", "my", "mine", "you", "your", "he", "him", "his", "she", "her",
	"it", "its", "we", "us", "our", "they", "them", "their", "this", "that",
	"these", "those", "some", "any", "something", "anything", "what", "which",
	"who", "how", "there", "here",
	// Filler verbs and auxiliaries
	"want", "wants", "need", "needs", "like", "likes", "would", "could",
	"should", "can", "will", "please", "show", "get", "give", "find", "looking",
	"buy", "is", "are", "am", "be", "was", "were", "do", "does", "did", "have",
	"has", "had", "not", "don't", "doesn't", "also", "just", "really", "every",
}

// KeywordExtractor turns a query and a taste profile into a keyword bag
type KeywordExtractor struct {
	stopWords map[string]bool
}

// NewKeywordExtractor creates an extractor with the given stop words.
// A nil slice selects DefaultStopWords; an empty slice disables filtering.
func NewKeywordExtractor(stopWords []string) *KeywordExtractor {
	if stopWords == nil {
		stopWords = DefaultStopWords
	}

	set := make(map[string]bool, len(stopWords))
	for _, word := range stopWords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			set[word] = true
		}
	}

	return &KeywordExtractor{stopWords: set}
}

// Extract returns the lower-cased keywords of the query followed by those of
// the tastes, without stop words and without repeats.
func (e *KeywordExtractor) Extract(query, tastes string) []string {
	// a comma always separates taste words, even without a following space
	tastes = strings.ReplaceAll(tastes, ",", " ")

	seen := make(map[string]bool)
	var keywords []string

	for _, text := range []string{query, tastes} {
		for _, word := range strings.Fields(strings.ToLower(text)) {
			word = strings.Trim(word, keywordTrimSet)
			if word == "" || e.stopWords[word] || seen[word] {
				continue
			}
			seen[word] = true
			keywords = append(keywords, word)
		}
	}

	return keywords
}

// IsStopWord reports whether word is filtered out of the keyword bag
func (e *KeywordExtractor) IsStopWord(word string) bool {
	return e.stopWords[strings.ToLower(word)]
}

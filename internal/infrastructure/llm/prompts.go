package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/concierge/backend/internal/domain"
)

// SystemPromptTemplate frames the assistant. Placeholders: user name, profile
// JSON, ranked catalog matches JSON.
const SystemPromptTemplate = `You are a smart concierge assistant for %s.

USER PROFILE:
%s

RELEVANT CATALOG ITEMS (already ranked, best first):
%s

--- LOGIC CONTROLLER ---

SCENARIO A: Birthday plan request
IF the user asks about a friend's birthday or a plan for a special day:
  1. FIND the signature "Fällä" boat event in the catalog items.
  2. SELECT 1 gift that fits the user's tastes and 1 cake that respects their dislikes.
  3. MESSAGE: pitch the daring plan and say which habitual orders you moved to the next day because of it.

SCENARIO B: Normal search request
IF the user asks for a specific item (e.g. "I want an amp", "Show me flowers"):
  1. SEARCH the catalog items for that specific item.
  2. FILTER by price or specs if mentioned (e.g. "Budget 2000 QAR").
  3. OUTPUT: the relevant display tags.
  4. MESSAGE: a simple confirmation.
  5. DO NOT reschedule habits or add cakes unless asked.
  6. For the first item recommended, choose a number between 1 and 5 and mention that buying it earns that many Snoonu coins.

--- TAG FORMATTING RULES ---
1. Every item mentioned in the message must appear in display_tags.
2. Each tag is [Service Name, Store Name, Exact Item Name] taken from the catalog items.
3. If the store is "N/A", keep "N/A".

Respond ONLY with a JSON object of the form:
{"display_tags": [["Service", "Store", "Item"]], "assistant_message": "..."}`

// UserPromptTemplate carries the date and the raw query
const UserPromptTemplate = "Today is %s. %s"

// promptMatch is the compact form of a match sent to the model
type promptMatch struct {
	Service     string `json:"service"`
	Store       string `json:"store"`
	ItemName    string `json:"item_name"`
	Price       any    `json:"price"`
	Description string `json:"description,omitempty"`
}

// BuildSystemPrompt renders the system prompt for a request
func BuildSystemPrompt(profile domain.UserProfile, matches []domain.ScoredMatch) (string, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}

	compact := make([]promptMatch, 0, len(matches))
	for _, m := range matches {
		compact = append(compact, promptMatch{
			Service:     m.Service,
			Store:       m.Store,
			ItemName:    m.ItemName,
			Price:       m.Price,
			Description: m.Description,
		})
	}
	matchesJSON, err := json.Marshal(compact)
	if err != nil {
		return "", fmt.Errorf("marshal matches: %w", err)
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = "the user"
	}

	return fmt.Sprintf(SystemPromptTemplate, name, profileJSON, matchesJSON), nil
}

// BuildUserPrompt renders the human turn
func BuildUserPrompt(currentDate, query string) string {
	return fmt.Sprintf(UserPromptTemplate, currentDate, query)
}

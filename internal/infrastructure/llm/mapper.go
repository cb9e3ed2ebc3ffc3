package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/concierge/backend/internal/domain"
)

// rawReply mirrors the JSON object the model is asked to produce
type rawReply struct {
	DisplayTags      [][]string `json:"display_tags"`
	AssistantMessage string     `json:"assistant_message"`
}

// MapToChatResponse parses the model output into a chat response.
// Tags with fewer than three parts are dropped and an empty store becomes "N/A".
func MapToChatResponse(content string) (*domain.ChatResponse, error) {
	payload := stripCodeFence(content)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty reply", domain.ErrMalformedReply)
	}

	var raw rawReply
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	if strings.TrimSpace(raw.AssistantMessage) == "" {
		return nil, fmt.Errorf("%w: missing assistant_message", domain.ErrMalformedReply)
	}

	tags := make([]domain.DisplayTag, 0, len(raw.DisplayTags))
	for _, parts := range raw.DisplayTags {
		if len(parts) < 3 || strings.TrimSpace(parts[2]) == "" {
			continue
		}
		store := strings.TrimSpace(parts[1])
		if store == "" {
			store = domain.StoreNotAvailable
		}
		tags = append(tags, domain.DisplayTag{strings.TrimSpace(parts[0]), store, strings.TrimSpace(parts[2])})
	}

	return &domain.ChatResponse{
		DisplayTags:      tags,
		AssistantMessage: raw.AssistantMessage,
	}, nil
}

// stripCodeFence removes a surrounding markdown code fence some models add
func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

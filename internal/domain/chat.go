package domain

// DefaultCurrentDate is used when a chat request carries no date
const DefaultCurrentDate = "2026-01-16"

// UserProfile is the static persona the assistant serves
type UserProfile struct {
	Name            string `json:"name" mapstructure:"name"`
	OrdersFrequency string `json:"orders_frequency" mapstructure:"orders_frequency"`
	Tastes          string `json:"tastes" mapstructure:"tastes"`
	Habits          string `json:"habits" mapstructure:"habits"`
}

// ChatRequest represents a conversational recommendation request
type ChatRequest struct {
	Query       string `json:"query" binding:"required"`
	CurrentDate string `json:"current_date,omitempty"`
}

// DisplayTag is a [service, store, exact item name] tuple
type DisplayTag [3]string

// ChatResponse is the structured answer produced by the assistant
type ChatResponse struct {
	DisplayTags      []DisplayTag `json:"display_tags"`
	AssistantMessage string       `json:"assistant_message"`
}

// AssistantRequest carries everything the assistant needs for one reply
type AssistantRequest struct {
	Query       string
	CurrentDate string
	Profile     UserProfile
	Matches     []ScoredMatch
}

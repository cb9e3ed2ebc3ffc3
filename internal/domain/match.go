package domain

// ScoredMatch is one ranked catalog item handed to the assistant
type ScoredMatch struct {
	Service     string `json:"service"`
	Store       string `json:"store"`
	ItemName    string `json:"item_name"`
	Price       any    `json:"price"`
	Score       int    `json:"score"`
	Description string `json:"description,omitempty"`
}

// SearchRequest represents a catalog search request
type SearchRequest struct {
	Query  string `json:"query" binding:"required"`
	Tastes string `json:"tastes,omitempty"`
	TopK   int    `json:"top_k,omitempty"`
}

// SearchResponse wraps the ranked matches of a search
type SearchResponse struct {
	Query   string        `json:"query"`
	Matches []ScoredMatch `json:"matches"`
}

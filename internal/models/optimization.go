package models

import "time"

// Optimization is a row in the optimizations table. Rows are immutable.
type Optimization struct {
	ID              int64
	UserID          *int64
	Prompt          string
	OptimizedPrompt string
	TokensBefore    int
	TokensAfter     int
	TokensSaved     int
	CO2SavedKg      float64
	CreatedAt       time.Time
}

// OptimizeRequest is the JSON body for POST /api/optimize. Absent fields are
// estimated server-side.
type OptimizeRequest struct {
	Prompt          string  `json:"prompt"`
	OptimizedPrompt *string `json:"optimized_prompt"`
	TokensBefore    *int    `json:"tokens_before"`
	TokensAfter     *int    `json:"tokens_after"`
}

// OptimizeResponse is returned after an optimization is recorded.
type OptimizeResponse struct {
	ID           int64   `json:"id"`
	UserID       *int64  `json:"user_id"`
	TokensBefore int     `json:"tokens_before"`
	TokensAfter  int     `json:"tokens_after"`
	TokensSaved  int     `json:"tokens_saved"`
	KWhSaved     float64 `json:"kwh_saved"`
	CO2SavedKg   float64 `json:"co2_saved_kg"`
}

// SuggestRequest is the JSON body for POST /api/optimize/suggest.
type SuggestRequest struct {
	Prompt string `json:"prompt"`
}

// SuggestResponse carries the heuristic rewrite without persisting anything.
type SuggestResponse struct {
	OptimizedPrompt string `json:"optimized_prompt"`
	TokensBefore    int    `json:"tokens_before"`
	TokensAfter     int    `json:"tokens_after"`
	TokensSaved     int    `json:"tokens_saved"`
	AlreadyOptimal  bool   `json:"already_optimal"`
}

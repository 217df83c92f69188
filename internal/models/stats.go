package models

// StatsResponse is the JSON body for GET /api/stats.
type StatsResponse struct {
	Users            int64   `json:"users"`
	CO2SavedKg       float64 `json:"co2_saved_kg"`
	CO2SavedG        float64 `json:"co2_saved_g"`
	PromptsOptimized int64   `json:"prompts_optimized"`
	EnergySavedKWh   float64 `json:"energy_saved_kwh"`
	ImpactScore      float64 `json:"impact_score"`
}

// Package stats rolls the stored users and optimizations up into the
// platform-wide impact figures.
package stats

import (
	"context"
	"time"

	"github.com/ayush/greenprompt/backend/internal/savings"
)

// UserCounter counts registered users.
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// OptimizationTotals sums the optimization log.
type OptimizationTotals interface {
	CountAll(ctx context.Context) (int64, error)
	SumCO2(ctx context.Context) (float64, error)
}

// Snapshot is a point-in-time rollup.
type Snapshot struct {
	Users            int64     `json:"users"`
	PromptsOptimized int64     `json:"prompts_optimized"`
	CO2SavedKg       float64   `json:"co2_saved_kg"`
	EnergySavedKWh   float64   `json:"energy_saved_kwh"`
	ImpactScore      float64   `json:"impact_score"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Aggregator computes snapshots from the stores. Nothing is cached; every
// call reads the current totals.
type Aggregator struct {
	users UserCounter
	opts  OptimizationTotals
	calc  *savings.Calculator
	now   func() time.Time
}

func NewAggregator(users UserCounter, opts OptimizationTotals, calc *savings.Calculator) *Aggregator {
	return &Aggregator{users: users, opts: opts, calc: calc, now: time.Now}
}

// Snapshot reads the three totals and derives energy and impact score.
func (a *Aggregator) Snapshot(ctx context.Context) (*Snapshot, error) {
	users, err := a.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	prompts, err := a.opts.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	co2, err := a.opts.SumCO2(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Users:            users,
		PromptsOptimized: prompts,
		CO2SavedKg:       co2,
		EnergySavedKWh:   a.calc.EnergyFromCO2(co2),
		ImpactScore:      ImpactScore(co2, prompts, users),
		GeneratedAt:      a.now().UTC(),
	}, nil
}

// ImpactScore weighs grams of CO₂ saved, prompts and users.
func ImpactScore(co2Kg float64, prompts, users int64) float64 {
	return co2Kg*1000 + float64(prompts)*0.1 + float64(users)
}

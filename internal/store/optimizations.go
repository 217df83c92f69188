package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ayush/greenprompt/backend/internal/common"
	"github.com/ayush/greenprompt/backend/internal/models"
)

// OptimizationStore is the append-only log of optimization events.
type OptimizationStore struct {
	db      DBTX
	dialect Dialect
}

func NewOptimizationStore(db DBTX, dialect Dialect) *OptimizationStore {
	return &OptimizationStore{db: db, dialect: dialect}
}

// Record inserts one optimization and returns its id. The prompt is required.
func (s *OptimizationStore) Record(ctx context.Context, o *models.Optimization) (int64, error) {
	if strings.TrimSpace(o.Prompt) == "" {
		return 0, fmt.Errorf("%w: prompt is required", common.ErrValidation)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`INSERT INTO optimizations
		   (user_id, prompt, optimized_prompt, tokens_before, tokens_after, tokens_saved, co2_saved_kg, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		o.UserID, o.Prompt, o.OptimizedPrompt,
		o.TokensBefore, o.TokensAfter, o.TokensSaved, o.CO2SavedKg, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: record optimization: %w", common.ErrStorage, err)
	}
	return o.ID, nil
}

// CountAll returns the number of recorded optimizations.
func (s *OptimizationStore) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM optimizations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count optimizations: %w", common.ErrStorage, err)
	}
	return n, nil
}

// SumCO2 returns the total kg of CO₂ saved, 0 when there are no rows.
func (s *OptimizationStore) SumCO2(ctx context.Context) (float64, error) {
	var sum float64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(co2_saved_kg), 0.0) FROM optimizations`).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("%w: sum co2: %w", common.ErrStorage, err)
	}
	return sum, nil
}

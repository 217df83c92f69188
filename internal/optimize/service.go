// Package optimize records optimization events and serves the heuristic
// suggestion used by the prompt editor.
package optimize

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayush/greenprompt/backend/internal/common"
	"github.com/ayush/greenprompt/backend/internal/heuristic"
	"github.com/ayush/greenprompt/backend/internal/logging"
	"github.com/ayush/greenprompt/backend/internal/models"
	"github.com/ayush/greenprompt/backend/internal/savings"
)

// Recorder persists optimization rows.
type Recorder interface {
	Record(ctx context.Context, o *models.Optimization) (int64, error)
}

// Service turns an optimize request into a stored record with server-side
// savings figures.
type Service struct {
	store  Recorder
	calc   *savings.Calculator
	strict bool
	logger logging.Logger
}

// NewService builds a Service. With strict set, client token counts are
// ignored and the server estimates are used instead.
func NewService(store Recorder, calc *savings.Calculator, strict bool, logger logging.Logger) *Service {
	return &Service{store: store, calc: calc, strict: strict, logger: logger}
}

// Optimize validates req, fills in missing counts, computes the savings and
// records the event for userID (nil for anonymous callers).
func (s *Service) Optimize(ctx context.Context, userID *int64, req models.OptimizeRequest) (*models.OptimizeResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", common.ErrValidation)
	}
	if (req.TokensBefore != nil && *req.TokensBefore < 0) || (req.TokensAfter != nil && *req.TokensAfter < 0) {
		return nil, fmt.Errorf("%w: token counts must be non-negative", common.ErrValidation)
	}

	optimized := ""
	if req.OptimizedPrompt != nil {
		optimized = *req.OptimizedPrompt
	}

	estBefore := savings.Estimate(req.Prompt)
	estAfter := estBefore
	if req.OptimizedPrompt != nil {
		estAfter = savings.Estimate(optimized)
	}

	before := s.pick(ctx, "tokens_before", req.TokensBefore, estBefore)
	after := s.pick(ctx, "tokens_after", req.TokensAfter, estAfter)

	sv := s.calc.Compute(before, after)
	rec := &models.Optimization{
		UserID:          userID,
		Prompt:          req.Prompt,
		OptimizedPrompt: optimized,
		TokensBefore:    before,
		TokensAfter:     after,
		TokensSaved:     sv.TokensSaved,
		CO2SavedKg:      sv.CO2SavedKg,
	}
	id, err := s.store.Record(ctx, rec)
	if err != nil {
		return nil, err
	}

	return &models.OptimizeResponse{
		ID:           id,
		UserID:       userID,
		TokensBefore: before,
		TokensAfter:  after,
		TokensSaved:  sv.TokensSaved,
		KWhSaved:     sv.KWhSaved,
		CO2SavedKg:   sv.CO2SavedKg,
	}, nil
}

// pick chooses between a client-supplied count and the server estimate.
func (s *Service) pick(ctx context.Context, field string, supplied *int, estimate int) int {
	if supplied == nil {
		return estimate
	}
	if *supplied != estimate {
		s.logger.Warn(ctx, "client token count differs from estimate",
			"field", field, "supplied", *supplied, "estimate", estimate, "strict", s.strict)
	}
	if s.strict {
		return estimate
	}
	return *supplied
}

// Suggest runs the heuristic shortener. Nothing is stored.
func (s *Service) Suggest(prompt string) (*models.SuggestResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", common.ErrValidation)
	}
	res := heuristic.Optimize(prompt)
	return &models.SuggestResponse{
		OptimizedPrompt: res.Text,
		TokensBefore:    res.TokensBefore,
		TokensAfter:     res.TokensAfter,
		TokensSaved:     max(0, res.TokensBefore-res.TokensAfter),
		AlreadyOptimal:  res.AlreadyOptimal,
	}, nil
}

package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayush/greenprompt/backend/internal/logging"
)

const (
	latestKey   = "stats/latest.json"
	contentType = "application/json"
)

// ObjectUploader stores a blob under a key.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Publisher writes snapshots to object storage: one timestamped object per
// run plus stats/latest.json.
type Publisher struct {
	agg    *Aggregator
	dst    ObjectUploader
	logger logging.Logger
}

func NewPublisher(agg *Aggregator, dst ObjectUploader, logger logging.Logger) *Publisher {
	return &Publisher{agg: agg, dst: dst, logger: logger}
}

// Publish computes a snapshot and uploads it. It returns the snapshot and the
// timestamped key.
func (p *Publisher) Publish(ctx context.Context) (*Snapshot, string, error) {
	snap, err := p.agg.Snapshot(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("compute snapshot: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := "stats/" + snap.GeneratedAt.Format(time.RFC3339) + ".json"
	for _, k := range []string{key, latestKey} {
		if err := p.dst.Upload(ctx, k, data, contentType); err != nil {
			return nil, "", err
		}
	}
	p.logger.Info(ctx, "stats published", "key", key, "prompts_optimized", snap.PromptsOptimized)
	return snap, key, nil
}

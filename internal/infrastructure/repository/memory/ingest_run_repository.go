package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/archive-ingest/internal/domain/ingestrun"
)

type IngestRunRepository struct {
	mu   sync.RWMutex
	runs []ingestrun.Statistics
}

func NewIngestRunRepository() *IngestRunRepository {
	return &IngestRunRepository{}
}

func (r *IngestRunRepository) Save(_ context.Context, stats ingestrun.Statistics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.runs {
		if existing.RunID == stats.RunID {
			return fmt.Errorf("ingest run %s already recorded", stats.RunID)
		}
	}
	r.runs = append(r.runs, stats)
	return nil
}

func (r *IngestRunRepository) Runs() []ingestrun.Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ingestrun.Statistics, 0, len(r.runs))
	out = append(out, r.runs...)
	return out
}

package ingestrun

import "context"

// Repository keeps run summaries for audit.
type Repository interface {
	Save(ctx context.Context, stats Statistics) error
}

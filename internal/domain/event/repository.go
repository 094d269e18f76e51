package event

import "context"

// Repository commits one match's events atomically. Either every group is
// written or none is.
type Repository interface {
	LoadMatchBatch(ctx context.Context, matchID int64, batch Batch) (LoadResult, error)
}

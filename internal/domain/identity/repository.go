package identity

import "context"

// Repository is the atomic insert-if-absent store behind the canonicalizer.
// Ensure* calls must be safe under concurrent use: two callers racing on the
// same normalized name get the same id and exactly one sees created=true.
type Repository interface {
	EnsureTeam(ctx context.Context, team Team) (id int64, created bool, err error)
	EnsurePerson(ctx context.Context, person Person) (id int64, created bool, err error)
	ExistingIDs(ctx context.Context, kind Kind, ids []int64) (map[int64]bool, error)
}

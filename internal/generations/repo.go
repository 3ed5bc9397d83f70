package generations

import "context"

// Repo defines persistence operations for generation records.
type Repo interface {
	Create(ctx context.Context, g Generation) error
	GetByID(ctx context.Context, sessionID, id string) (Generation, error)
	ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]Generation, error)
}

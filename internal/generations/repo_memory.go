package generations

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores generations in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu        sync.RWMutex
	byID      map[string]Generation
	bySession map[string][]Generation
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:      make(map[string]Generation),
		bySession: make(map[string][]Generation),
	}
}

// Create stores the generation.
func (r *MemoryRepo) Create(ctx context.Context, g Generation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[g.ID] = g
	r.bySession[g.SessionID] = append(r.bySession[g.SessionID], g)
	return nil
}

// GetByID returns a generation owned by sessionID.
func (r *MemoryRepo) GetByID(ctx context.Context, sessionID, id string) (Generation, error) {
	if err := ctx.Err(); err != nil {
		return Generation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byID[id]
	if !ok {
		return Generation{}, ErrNotFound
	}
	if g.SessionID != sessionID {
		return Generation{}, ErrForbidden
	}
	return g, nil
}

// ListBySession returns a session's generations, newest first, with limit/offset.
func (r *MemoryRepo) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	owned := r.bySession[sessionID]
	r.mu.RUnlock()

	if len(owned) == 0 || offset >= len(owned) {
		return []Generation{}, nil
	}

	out := make([]Generation, len(owned))
	copy(out, owned)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)

package interviewprep

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo keeps preps per user in insertion order.
type MemoryRepo struct {
	mu     sync.Mutex
	byUser map[string][]InterviewPrep
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUser: make(map[string][]InterviewPrep)}
}

func (r *MemoryRepo) Append(ctx context.Context, prep InterviewPrep) error {
	if prep.ID == "" || prep.UserID == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[prep.UserID] = append(r.byUser[prep.UserID], prep)
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]InterviewPrep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	preps := r.byUser[userID]
	out := make([]InterviewPrep, 0, len(preps))
	for i := len(preps) - 1; i >= 0; i-- {
		out = append(out, preps[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (InterviewPrep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byUser[userID] {
		if p.ID == id {
			return p, nil
		}
	}
	return InterviewPrep{}, ErrNotFound
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	preps := r.byUser[userID]
	for i, p := range preps {
		if p.ID == id {
			r.byUser[userID] = append(preps[:i:i], preps[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

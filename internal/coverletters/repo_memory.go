package coverletters

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	letters map[string]CoverLetter
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{letters: make(map[string]CoverLetter)}
}

func (r *MemoryRepo) Append(ctx context.Context, letter CoverLetter) error {
	if letter.ID == "" || letter.UserID == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.letters[letter.ID] = letter
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]CoverLetter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []CoverLetter{}
	for _, l := range r.letters {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (CoverLetter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.letters[id]
	if !ok || l.UserID != userID {
		return CoverLetter{}, ErrNotFound
	}
	return l, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.letters[id]
	if !ok || l.UserID != userID {
		return ErrNotFound
	}
	delete(r.letters, id)
	return nil
}

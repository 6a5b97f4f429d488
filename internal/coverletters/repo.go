package coverletters

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("cover letter not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("could not save cover letter")
)

// Repo archives cover letters per user. GetByID and Delete report ErrNotFound
// both for unknown ids and for letters owned by another user.
type Repo interface {
	Append(ctx context.Context, letter CoverLetter) error
	// ListByUser returns the user's letters, newest first.
	ListByUser(ctx context.Context, userID string) ([]CoverLetter, error)
	GetByID(ctx context.Context, userID, id string) (CoverLetter, error)
	Delete(ctx context.Context, userID, id string) error
}

package interviewprep

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("interview prep not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("could not save interview prep")
)

// Repo archives interview preps per user. GetByID and Delete report ErrNotFound
// both for unknown ids and for preps owned by another user.
type Repo interface {
	Append(ctx context.Context, prep InterviewPrep) error
	// ListByUser returns the user's preps, newest first.
	ListByUser(ctx context.Context, userID string) ([]InterviewPrep, error)
	GetByID(ctx context.Context, userID, id string) (InterviewPrep, error)
	Delete(ctx context.Context, userID, id string) error
}

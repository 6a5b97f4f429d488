package resumes

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("resume not found")
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPersistence      = errors.New("could not save resume")
)

// Repo stores at most one resume per user and one analysis per resume.
// Every write is an upsert, so repeating it leaves a single row.
type Repo interface {
	UpsertResume(ctx context.Context, userID string, in ResumeInput) (Resume, error)
	UpsertAnalysis(ctx context.Context, userID, resumeID string, feedback Feedback) (Analysis, error)
	// SaveAnalysis upserts the resume and its analysis atomically.
	SaveAnalysis(ctx context.Context, userID string, in ResumeInput, feedback Feedback) (Resume, Analysis, error)
	GetByUser(ctx context.Context, userID string) (Resume, error)
	// GetAnalysis returns ErrNotFound without a resume and ErrAnalysisNotFound
	// when the resume has not been analyzed.
	GetAnalysis(ctx context.Context, userID string) (Resume, Analysis, error)
}

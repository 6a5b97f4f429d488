package resumes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu       sync.Mutex
	resumes  map[string]Resume   // by user id
	analyses map[string]Analysis // by resume id
	now      func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		resumes:  make(map[string]Resume),
		analyses: make(map[string]Analysis),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) UpsertResume(ctx context.Context, userID string, in ResumeInput) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertResumeLocked(userID, in), nil
}

func (r *MemoryRepo) UpsertAnalysis(ctx context.Context, userID, resumeID string, feedback Feedback) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[userID]
	if !ok || resume.ID != resumeID {
		return Analysis{}, ErrNotFound
	}
	return r.upsertAnalysisLocked(resumeID, feedback), nil
}

func (r *MemoryRepo) SaveAnalysis(ctx context.Context, userID string, in ResumeInput, feedback Feedback) (Resume, Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, Analysis{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume := r.upsertResumeLocked(userID, in)
	analysis := r.upsertAnalysisLocked(resume.ID, feedback)
	return resume, analysis, nil
}

func (r *MemoryRepo) GetByUser(ctx context.Context, userID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[userID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

func (r *MemoryRepo) GetAnalysis(ctx context.Context, userID string) (Resume, Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, Analysis{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[userID]
	if !ok {
		return Resume{}, Analysis{}, ErrNotFound
	}
	analysis, ok := r.analyses[resume.ID]
	if !ok {
		return resume, Analysis{}, ErrAnalysisNotFound
	}
	return resume, analysis, nil
}

func (r *MemoryRepo) upsertResumeLocked(userID string, in ResumeInput) Resume {
	now := r.now()
	resume, ok := r.resumes[userID]
	if !ok {
		resume = Resume{ID: uuid.NewString(), UserID: userID, CreatedAt: now}
	}
	resume.Filename = in.Filename
	resume.Content = in.Content
	resume.StorageKey = in.StorageKey
	resume.UpdatedAt = later(now, resume.UpdatedAt)
	r.resumes[userID] = resume
	return resume
}

func (r *MemoryRepo) upsertAnalysisLocked(resumeID string, feedback Feedback) Analysis {
	now := r.now()
	analysis, ok := r.analyses[resumeID]
	if !ok {
		analysis = Analysis{ID: uuid.NewString(), ResumeID: resumeID, CreatedAt: now}
	}
	analysis.Feedback = feedback
	analysis.UpdatedAt = later(now, analysis.UpdatedAt)
	r.analyses[resumeID] = analysis
	return analysis
}

// later keeps updated_at monotonic when the clock steps backwards.
func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

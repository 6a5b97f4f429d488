package interviewprep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartcareer-backend/internal/llm"
	"smartcareer-backend/internal/llm/generate"
	"smartcareer-backend/internal/llm/schema"
	"smartcareer-backend/internal/resumes"
	"smartcareer-backend/internal/shared/telemetry"
)

// ResumeSource looks up the user's current resume.
type ResumeSource interface {
	GetByUser(ctx context.Context, userID string) (resumes.Resume, error)
}

type Service struct {
	Repo    Repo
	Resumes ResumeSource
	Gateway llm.Gateway

	now func() time.Time
}

func NewService(repo Repo, resumeSource ResumeSource, gateway llm.Gateway) *Service {
	return &Service{
		Repo:    repo,
		Resumes: resumeSource,
		Gateway: gateway,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Generate builds a preparation guide for the job and archives it.
func (s *Service) Generate(ctx context.Context, userID string, req Request) (InterviewPrep, Guide, error) {
	req.JobTitle = strings.TrimSpace(req.JobTitle)
	req.JobDescription = strings.TrimSpace(req.JobDescription)
	if userID == "" || req.JobTitle == "" || req.JobDescription == "" {
		return InterviewPrep{}, Guide{}, fmt.Errorf("%w: job_title and job_description are required", ErrInvalidInput)
	}
	options := normalizeOptions(req.Options)

	resume, err := s.Resumes.GetByUser(ctx, userID)
	if errors.Is(err, resumes.ErrNotFound) || (err == nil && strings.TrimSpace(resume.Content) == "") {
		return InterviewPrep{}, Guide{}, resumes.ErrResumeRequired
	}
	if err != nil {
		return InterviewPrep{}, Guide{}, err
	}

	guide, err := s.prepare(ctx, resume.Content, req.JobTitle, req.JobDescription, options)
	if err != nil {
		return InterviewPrep{}, Guide{}, err
	}
	content, err := json.Marshal(guide)
	if err != nil {
		return InterviewPrep{}, Guide{}, err
	}

	prep := InterviewPrep{
		ID:             uuid.NewString(),
		UserID:         userID,
		ResumeID:       resume.ID,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		Options:        options,
		Content:        string(content),
		CreatedAt:      s.now(),
	}
	if err := s.Repo.Append(ctx, prep); err != nil {
		return InterviewPrep{}, Guide{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	telemetry.Info("interview_prep.generated", map[string]any{
		"user_id":   userID,
		"record_id": prep.ID,
		"options":   len(options),
	})
	return prep, guide, nil
}

func (s *Service) prepare(ctx context.Context, resumeText, title, description string, options []string) (guide Guide, err error) {
	start := time.Now()
	defer func() { generate.Observe(generate.TaskInterviewPrep, start, err) }()

	prompt := llm.BuildInterviewPrepPrompt(llm.InterviewPrepInput{
		ResumeText:     resumeText,
		JobTitle:       title,
		JobDescription: description,
		Options:        options,
	})
	obj, _, err := generate.JSON(ctx, s.Gateway, generate.TaskInterviewPrep, prompt)
	if err != nil {
		return Guide{}, err
	}
	guide = NormalizeGuide(obj, title)
	if err := schema.Validate(schema.InterviewPrep, guide); err != nil {
		return Guide{}, err
	}
	return guide, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]InterviewPrep, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Get returns an archived prep with its guide decoded.
func (s *Service) Get(ctx context.Context, userID, id string) (InterviewPrep, Guide, error) {
	prep, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return InterviewPrep{}, Guide{}, err
	}
	var guide Guide
	if err := json.Unmarshal([]byte(prep.Content), &guide); err != nil {
		return InterviewPrep{}, Guide{}, fmt.Errorf("decode interview prep %s: %w", prep.ID, err)
	}
	return prep, guide, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}

package coverletters

import (
	"context"
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

// Service generates and archives cover letters.
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

// Generate writes a cover letter for the job from the user's resume and
// archives it. Without a resume it returns resumes.ErrResumeRequired.
func (s *Service) Generate(ctx context.Context, userID string, req Request) (CoverLetter, error) {
	req.JobTitle = strings.TrimSpace(req.JobTitle)
	req.JobDescription = strings.TrimSpace(req.JobDescription)
	req.CompanyInfo = strings.TrimSpace(req.CompanyInfo)
	if userID == "" || req.JobTitle == "" || req.JobDescription == "" {
		return CoverLetter{}, fmt.Errorf("%w: job_title and job_description are required", ErrInvalidInput)
	}

	resume, err := s.Resumes.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return CoverLetter{}, resumes.ErrResumeRequired
		}
		return CoverLetter{}, err
	}
	if strings.TrimSpace(resume.Content) == "" {
		return CoverLetter{}, resumes.ErrResumeRequired
	}

	content, err := s.write(ctx, resume.Content, req)
	if err != nil {
		return CoverLetter{}, err
	}

	letter := CoverLetter{
		ID:             uuid.NewString(),
		UserID:         userID,
		ResumeID:       resume.ID,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		CompanyInfo:    req.CompanyInfo,
		Content:        content,
		CreatedAt:      s.now(),
	}
	if err := s.Repo.Append(ctx, letter); err != nil {
		return CoverLetter{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	telemetry.Info("cover_letter.generated", map[string]any{
		"user_id":   userID,
		"record_id": letter.ID,
		"chars":     len(content),
	})
	return letter, nil
}

func (s *Service) write(ctx context.Context, resumeText string, req Request) (letter string, err error) {
	start := time.Now()
	defer func() { generate.Observe(generate.TaskCoverLetter, start, err) }()

	prompt := llm.BuildCoverLetterPrompt(llm.CoverLetterInput{
		ResumeText:     resumeText,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		CompanyInfo:    req.CompanyInfo,
	})
	obj, _, err := generate.JSON(ctx, s.Gateway, generate.TaskCoverLetter, prompt)
	if err != nil {
		return "", err
	}
	text, _ := obj["letter"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: letter is missing", llm.ErrMalformedOutput)
	}
	if err := schema.Validate(schema.CoverLetter, map[string]any{"letter": text}); err != nil {
		return "", err
	}
	return text, nil
}

// List returns the user's letters, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]CoverLetter, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (CoverLetter, error) {
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}

package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"smartcareer-backend/internal/extract"
	"smartcareer-backend/internal/llm"
	"smartcareer-backend/internal/llm/generate"
	"smartcareer-backend/internal/llm/schema"
	"smartcareer-backend/internal/shared/storage/object"
	"smartcareer-backend/internal/shared/telemetry"
	"smartcareer-backend/internal/shared/util"
)

const (
	// MaxUploadBytes caps a resume upload.
	MaxUploadBytes  = 10 << 20
	defaultFilename = "resume.pdf"
)

var (
	ErrUnsupportedFile = errors.New("only PDF resumes are supported")
	ErrUnreadable      = errors.New("could not read any text from the resume")
	ErrFileUnavailable = errors.New("resume file is not available")
	// ErrResumeRequired is returned by features that need an uploaded resume.
	ErrResumeRequired  = errors.New("upload and analyze a resume first")
)

// Service runs resume analysis: text extraction, the model call and the
// resume and analysis upsert.
type Service struct {
	Repo    Repo
	Store   object.ObjectStore
	Gateway llm.Gateway

	extractText func(ctx context.Context, data []byte) (string, error)
}

// NewService constructs a Service. store may be nil, in which case uploads
// are analyzed but the file itself is not kept.
func NewService(repo Repo, store object.ObjectStore, gateway llm.Gateway) *Service {
	return &Service{
		Repo:        repo,
		Store:       store,
		Gateway:     gateway,
		extractText: extract.ExtractTextFromBytes,
	}
}

// Analyze extracts the text of an uploaded PDF, asks the model for feedback
// and stores both as the user's single resume and analysis. The previous
// resume is only replaced once the model produced a usable result.
func (s *Service) Analyze(ctx context.Context, userID, filename string, data []byte) (Resume, Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return Resume{}, Analysis{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return Resume{}, Analysis{}, ErrUnsupportedFile
	}
	if len(data) == 0 {
		return Resume{}, Analysis{}, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if len(data) > MaxUploadBytes {
		return Resume{}, Analysis{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxUploadBytes)
	}
	name, err := util.SanitizeFileName(filename)
	if err != nil || !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name = defaultFilename
	}

	text, err := s.extractText(ctx, data)
	if err != nil {
		telemetry.Warn("resume.extract_failed", map[string]any{"user_id": userID, "error": err.Error()})
		return Resume{}, Analysis{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	if strings.TrimSpace(text) == "" {
		return Resume{}, Analysis{}, ErrUnreadable
	}

	feedback, err := s.generateFeedback(ctx, text)
	if err != nil {
		return Resume{}, Analysis{}, err
	}

	resume, analysis, err := s.save(ctx, userID, ResumeInput{Filename: name, Content: text}, data, feedback)
	if err != nil {
		return Resume{}, Analysis{}, err
	}

	telemetry.Info("resume.analyzed", map[string]any{
		"user_id":   userID,
		"resume_id": resume.ID,
		"ats_score": feedback.ATSScore,
		"chars":     len(text),
	})
	return resume, analysis, nil
}

// save stores the upload under a content-derived key and then upserts the
// rows. The new object is removed when the upsert fails, and the object of
// the replaced resume is removed once the upsert committed.
func (s *Service) save(ctx context.Context, userID string, in ResumeInput, data []byte, feedback Feedback) (Resume, Analysis, error) {
	if s.Store == nil {
		resume, analysis, err := s.Repo.SaveAnalysis(ctx, userID, in, feedback)
		if err != nil {
			return Resume{}, Analysis{}, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return resume, analysis, nil
	}

	var previousKey string
	if prev, err := s.Repo.GetByUser(ctx, userID); err == nil {
		previousKey = prev.StorageKey
	} else if !errors.Is(err, ErrNotFound) {
		return Resume{}, Analysis{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	in.StorageKey = object.ResumeKey(userID, data)
	if _, err := s.Store.Put(ctx, in.StorageKey, "application/pdf", bytes.NewReader(data)); err != nil {
		return Resume{}, Analysis{}, fmt.Errorf("%w: store upload: %w", ErrPersistence, err)
	}

	resume, analysis, err := s.Repo.SaveAnalysis(ctx, userID, in, feedback)
	if err != nil {
		if in.StorageKey != previousKey {
			s.deleteUnreferenced(ctx, userID, in.StorageKey)
		}
		return Resume{}, Analysis{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if previousKey != "" && previousKey != in.StorageKey {
		s.deleteUnreferenced(ctx, userID, previousKey)
	}
	return resume, analysis, nil
}

// deleteUnreferenced removes key unless the user's row points at it, which
// happens when a concurrent upload carried the same bytes. The delete is best
// effort and outlives a cancelled request context.
func (s *Service) deleteUnreferenced(ctx context.Context, userID, key string) {
	if current, err := s.Repo.GetByUser(ctx, userID); err == nil && current.StorageKey == key {
		return
	}
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.Store.Delete(delCtx, key); err != nil {
		telemetry.Warn("resume.object_delete_failed", map[string]any{
			"user_id": userID,
			"key":     key,
			"error":   err.Error(),
		})
	}
}

func (s *Service) generateFeedback(ctx context.Context, text string) (feedback Feedback, err error) {
	start := time.Now()
	defer func() { generate.Observe(generate.TaskAnalysis, start, err) }()

	obj, _, err := generate.JSON(ctx, s.Gateway, generate.TaskAnalysis, llm.BuildAnalysisPrompt(text))
	if err != nil {
		return Feedback{}, err
	}
	feedback = NormalizeFeedback(obj)
	if err := schema.Validate(schema.Analysis, feedback); err != nil {
		return Feedback{}, err
	}
	return feedback, nil
}

// Current returns the user's resume.
func (s *Service) Current(ctx context.Context, userID string) (Resume, error) {
	return s.Repo.GetByUser(ctx, userID)
}

// CurrentAnalysis returns the user's resume and its analysis.
func (s *Service) CurrentAnalysis(ctx context.Context, userID string) (Resume, Analysis, error) {
	return s.Repo.GetAnalysis(ctx, userID)
}

// OpenFile opens the stored PDF of the user's resume.
func (s *Service) OpenFile(ctx context.Context, userID string) (Resume, io.ReadCloser, error) {
	resume, err := s.Repo.GetByUser(ctx, userID)
	if err != nil {
		return Resume{}, nil, err
	}
	if s.Store == nil || resume.StorageKey == "" {
		return Resume{}, nil, ErrFileUnavailable
	}
	rc, err := s.Store.Open(ctx, resume.StorageKey)
	if err != nil {
		return Resume{}, nil, fmt.Errorf("%w: %w", ErrFileUnavailable, err)
	}
	return resume, rc, nil
}

// ResumeText returns the extracted text of the user's resume, used as input
// for cover letters and interview preps.
func (s *Service) ResumeText(ctx context.Context, userID string) (string, error) {
	resume, err := s.Repo.GetByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return resume.Content, nil
}

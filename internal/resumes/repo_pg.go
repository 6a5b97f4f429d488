package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type PGRepo struct {
	DB *sql.DB
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const upsertResumeSQL = `
INSERT INTO resumes (id, user_id, filename, content, storage_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (user_id) DO UPDATE SET
  filename = EXCLUDED.filename,
  content = EXCLUDED.content,
  storage_key = EXCLUDED.storage_key,
  updated_at = GREATEST(now(), resumes.updated_at)
RETURNING id, user_id, filename, content, storage_key, created_at, updated_at`

const upsertAnalysisSQL = `
INSERT INTO analysis_results (id, resume_id, ats_score, key_skills, strengths, missing_sections, improvements, created_at, updated_at)
SELECT $1::uuid, r.id, $4::integer, $5::text, $6::text, $7::text, $8::text, now(), now()
FROM resumes r
WHERE r.id = $2::uuid AND r.user_id = $3
ON CONFLICT (resume_id) DO UPDATE SET
  ats_score = EXCLUDED.ats_score,
  key_skills = EXCLUDED.key_skills,
  strengths = EXCLUDED.strengths,
  missing_sections = EXCLUDED.missing_sections,
  improvements = EXCLUDED.improvements,
  updated_at = GREATEST(now(), analysis_results.updated_at)
RETURNING id, resume_id, ats_score, key_skills, strengths, missing_sections, improvements, created_at, updated_at`

func (r *PGRepo) UpsertResume(ctx context.Context, userID string, in ResumeInput) (Resume, error) {
	return upsertResume(ctx, r.DB, userID, in)
}

func (r *PGRepo) UpsertAnalysis(ctx context.Context, userID, resumeID string, feedback Feedback) (Analysis, error) {
	return upsertAnalysis(ctx, r.DB, userID, resumeID, feedback)
}

func (r *PGRepo) SaveAnalysis(ctx context.Context, userID string, in ResumeInput, feedback Feedback) (Resume, Analysis, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Resume{}, Analysis{}, err
	}
	defer tx.Rollback()

	resume, err := upsertResume(ctx, tx, userID, in)
	if err != nil {
		return Resume{}, Analysis{}, err
	}
	analysis, err := upsertAnalysis(ctx, tx, userID, resume.ID, feedback)
	if err != nil {
		return Resume{}, Analysis{}, err
	}
	if err := tx.Commit(); err != nil {
		return Resume{}, Analysis{}, err
	}
	return resume, analysis, nil
}

func (r *PGRepo) GetByUser(ctx context.Context, userID string) (Resume, error) {
	const query = `
SELECT id, user_id, filename, content, storage_key, created_at, updated_at
FROM resumes
WHERE user_id = $1`
	var resume Resume
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Filename,
		&resume.Content,
		&resume.StorageKey,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

func (r *PGRepo) GetAnalysis(ctx context.Context, userID string) (Resume, Analysis, error) {
	const query = `
SELECT r.id, r.user_id, r.filename, r.content, r.storage_key, r.created_at, r.updated_at,
       a.id, a.ats_score, a.key_skills, a.strengths, a.missing_sections, a.improvements, a.created_at, a.updated_at
FROM resumes r
LEFT JOIN analysis_results a ON a.resume_id = r.id
WHERE r.user_id = $1`
	var resume Resume
	var (
		analysisID      sql.NullString
		atsScore        sql.NullInt64
		keySkills       sql.NullString
		strengths       sql.NullString
		missingSections sql.NullString
		improvements    sql.NullString
		createdAt       sql.NullTime
		updatedAt       sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Filename,
		&resume.Content,
		&resume.StorageKey,
		&resume.CreatedAt,
		&resume.UpdatedAt,
		&analysisID,
		&atsScore,
		&keySkills,
		&strengths,
		&missingSections,
		&improvements,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, Analysis{}, ErrNotFound
		}
		return Resume{}, Analysis{}, err
	}
	if !analysisID.Valid {
		return resume, Analysis{}, ErrAnalysisNotFound
	}

	analysis := Analysis{
		ID:        analysisID.String,
		ResumeID:  resume.ID,
		CreatedAt: createdAt.Time,
		UpdatedAt: updatedAt.Time,
	}
	analysis.Feedback.ATSScore = int(atsScore.Int64)
	if err := decodeFeedback(&analysis.Feedback, keySkills.String, strengths.String, missingSections.String, improvements.String); err != nil {
		return Resume{}, Analysis{}, err
	}
	return resume, analysis, nil
}

func upsertResume(ctx context.Context, q queryer, userID string, in ResumeInput) (Resume, error) {
	var resume Resume
	err := q.QueryRowContext(ctx, upsertResumeSQL,
		uuid.NewString(),
		userID,
		in.Filename,
		in.Content,
		in.StorageKey,
	).Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Filename,
		&resume.Content,
		&resume.StorageKey,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		return Resume{}, fmt.Errorf("upsert resume: %w", err)
	}
	return resume, nil
}

func upsertAnalysis(ctx context.Context, q queryer, userID, resumeID string, feedback Feedback) (Analysis, error) {
	lists, err := encodeFeedback(feedback)
	if err != nil {
		return Analysis{}, err
	}
	var analysis Analysis
	var keySkills, strengths, missingSections, improvements string
	err = q.QueryRowContext(ctx, upsertAnalysisSQL,
		uuid.NewString(),
		resumeID,
		userID,
		feedback.ATSScore,
		lists[0],
		lists[1],
		lists[2],
		lists[3],
	).Scan(
		&analysis.ID,
		&analysis.ResumeID,
		&analysis.Feedback.ATSScore,
		&keySkills,
		&strengths,
		&missingSections,
		&improvements,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, fmt.Errorf("upsert analysis: %w", err)
	}
	if err := decodeFeedback(&analysis.Feedback, keySkills, strengths, missingSections, improvements); err != nil {
		return Analysis{}, err
	}
	return analysis, nil
}

// encodeFeedback renders the list fields as the JSON text stored in their columns.
func encodeFeedback(f Feedback) ([4]string, error) {
	var out [4]string
	for i, v := range []any{nonNilStrings(f.KeySkills), nonNilStrings(f.Strengths), nonNilStrings(f.MissingSections), nonNilImprovements(f.Improvements)} {
		data, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("encode analysis: %w", err)
		}
		out[i] = string(data)
	}
	return out, nil
}

func decodeFeedback(f *Feedback, keySkills, strengths, missingSections, improvements string) error {
	targets := []struct {
		raw string
		dst any
	}{
		{keySkills, &f.KeySkills},
		{strengths, &f.Strengths},
		{missingSections, &f.MissingSections},
		{improvements, &f.Improvements},
	}
	for _, t := range targets {
		if t.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(t.raw), t.dst); err != nil {
			return fmt.Errorf("decode analysis: %w", err)
		}
	}
	f.KeySkills = nonNilStrings(f.KeySkills)
	f.Strengths = nonNilStrings(f.Strengths)
	f.MissingSections = nonNilStrings(f.MissingSections)
	f.Improvements = nonNilImprovements(f.Improvements)
	return nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilImprovements(v []Improvement) []Improvement {
	if v == nil {
		return []Improvement{}
	}
	return v
}

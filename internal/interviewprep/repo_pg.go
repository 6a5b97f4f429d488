package interviewprep

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

func (r *PGRepo) Append(ctx context.Context, prep InterviewPrep) error {
	options, err := json.Marshal(normalizeOptions(prep.Options))
	if err != nil {
		return err
	}
	const query = `
INSERT INTO interview_preps (id, user_id, resume_id, job_title, job_description, options, content, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.DB.ExecContext(ctx, query,
		prep.ID,
		prep.UserID,
		prep.ResumeID,
		prep.JobTitle,
		prep.JobDescription,
		string(options),
		prep.Content,
		prep.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert interview prep: %w", err)
	}
	return nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]InterviewPrep, error) {
	const query = `
SELECT id, user_id, resume_id, job_title, job_description, options, content, created_at
FROM interview_preps
WHERE user_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []InterviewPrep{}
	for rows.Next() {
		p, err := scanPrep(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (InterviewPrep, error) {
	if _, err := uuid.Parse(id); err != nil {
		return InterviewPrep{}, ErrNotFound
	}
	const query = `
SELECT id, user_id, resume_id, job_title, job_description, options, content, created_at
FROM interview_preps
WHERE id = $1 AND user_id = $2`
	p, err := scanPrep(r.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return InterviewPrep{}, ErrNotFound
	}
	return p, err
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM interview_preps WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPrep(s interface{ Scan(...any) error }) (InterviewPrep, error) {
	var (
		p       InterviewPrep
		options string
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.ResumeID, &p.JobTitle, &p.JobDescription, &options, &p.Content, &p.CreatedAt); err != nil {
		return InterviewPrep{}, err
	}
	if options != "" {
		if err := json.Unmarshal([]byte(options), &p.Options); err != nil {
			return InterviewPrep{}, fmt.Errorf("decode interview prep options: %w", err)
		}
	}
	if p.Options == nil {
		p.Options = []string{}
	}
	return p, nil
}

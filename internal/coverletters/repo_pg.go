package coverletters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type PGRepo struct {
	DB *sql.DB
}

const letterColumns = `id, user_id, resume_id, job_title, job_description, company_info, content, created_at`

func (r *PGRepo) Append(ctx context.Context, letter CoverLetter) error {
	const query = `
INSERT INTO cover_letters (id, user_id, resume_id, job_title, job_description, company_info, content, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		letter.ID,
		letter.UserID,
		letter.ResumeID,
		letter.JobTitle,
		letter.JobDescription,
		letter.CompanyInfo,
		letter.Content,
		letter.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cover letter: %w", err)
	}
	return nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]CoverLetter, error) {
	query := `SELECT ` + letterColumns + `
FROM cover_letters
WHERE user_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CoverLetter{}
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (CoverLetter, error) {
	if _, err := uuid.Parse(id); err != nil {
		return CoverLetter{}, ErrNotFound
	}
	query := `SELECT ` + letterColumns + `
FROM cover_letters
WHERE id = $1 AND user_id = $2`
	l, err := scanLetter(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CoverLetter{}, ErrNotFound
		}
		return CoverLetter{}, err
	}
	return l, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM cover_letters WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLetter(s scanner) (CoverLetter, error) {
	var l CoverLetter
	err := s.Scan(
		&l.ID,
		&l.UserID,
		&l.ResumeID,
		&l.JobTitle,
		&l.JobDescription,
		&l.CompanyInfo,
		&l.Content,
		&l.CreatedAt,
	)
	return l, err
}

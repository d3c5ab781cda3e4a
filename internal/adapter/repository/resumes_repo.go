package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-builder/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type ResumesRepo struct {
	pool *pgxpool.Pool
}

func NewResumesRepo(pool *pgxpool.Pool) *ResumesRepo {
	return &ResumesRepo{pool: pool}
}

const resumeColumns = `id::text, user_id::text, name, template_id, content, status, created_at, updated_at`

func (r *ResumesRepo) Create(ctx context.Context, rec *domain.ResumeRecord) error {
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO resumes (id, user_id, name, template_id, content, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.UserID, rec.Name, rec.TemplateID, content, string(rec.Status), rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (r *ResumesRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ResumeRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id)
	rec, err := scanResume(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("resume %s: %w", id, domain.ErrNotFound)
	}
	return rec, err
}

// List returns the user's resumes, most recently updated first.
func (r *ResumesRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.ResumeRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ResumeRecord{}
	for rows.Next() {
		rec, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *ResumesRepo) Update(ctx context.Context, rec *domain.ResumeRecord) error {
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE resumes SET name = $2, template_id = $3, content = $4, status = $5, updated_at = $6 WHERE id = $1`,
		rec.ID, rec.Name, rec.TemplateID, content, string(rec.Status), rec.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resume %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *ResumesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resume %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanResume(row pgx.Row) (*domain.ResumeRecord, error) {
	var (
		id, userID, status string
		content            []byte
		rec                domain.ResumeRecord
		created, updated   time.Time
	)
	if err := row.Scan(&id, &userID, &rec.Name, &rec.TemplateID, &content, &status, &created, &updated); err != nil {
		return nil, err
	}
	return decodeResume(rec, id, userID, status, content, created, updated)
}

// decodeResume fills the parts of a record that need parsing after a scan.
func decodeResume(rec domain.ResumeRecord, id, userID, status string, content []byte, created, updated time.Time) (*domain.ResumeRecord, error) {
	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("resume id %q: %w", id, err)
	}
	if userID != "" {
		if rec.UserID, err = uuid.Parse(userID); err != nil {
			return nil, fmt.Errorf("resume %s user id %q: %w", id, userID, err)
		}
	}
	rec.Content = domain.NewResumeDocument()
	if len(content) > 0 {
		if err := json.Unmarshal(content, &rec.Content); err != nil {
			return nil, fmt.Errorf("resume %s content: %w", id, err)
		}
	}
	rec.Content.Normalize()
	rec.Status = domain.Status(status)
	rec.CreatedAt = created.UTC()
	rec.UpdatedAt = updated.UTC()
	return &rec, nil
}

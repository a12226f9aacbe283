package admission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists application submissions.
type Repository interface {
	Create(ctx context.Context, sub Submission) error
	UpdateStatus(ctx context.Context, id, status, lastError string) error
	FindByID(ctx context.Context, id string) (Submission, error)
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS application_submissions (
    id          UUID PRIMARY KEY,
    email       TEXT NOT NULL,
    full_name   TEXT NOT NULL DEFAULT '',
    payload     JSONB NOT NULL,
    status      TEXT NOT NULL,
    last_error  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
)`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed submission repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the submissions table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schemaSQL)
	return err
}

// Create inserts a new submission.
func (r *PostgresRepository) Create(ctx context.Context, sub Submission) error {
	id, err := uuid.Parse(sub.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO application_submissions
        (id, email, full_name, payload, status, last_error, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, sub.Email, sub.FullName, sub.Payload, sub.Status, sub.LastError, sub.CreatedAt.UTC(), sub.UpdatedAt.UTC())
	return err
}

// UpdateStatus records the notification outcome for a submission.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status, lastError string) error {
	subID, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE application_submissions
        SET status = $1, last_error = $2, updated_at = $3 WHERE id = $4`,
		status, lastError, time.Now().UTC(), subID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// FindByID fetches a submission.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Submission, error) {
	subID, err := uuid.Parse(id)
	if err != nil {
		return Submission{}, ErrSubmissionNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, email, full_name, payload, status, last_error, created_at, updated_at
        FROM application_submissions WHERE id = $1`, subID)

	var (
		rowID uuid.UUID
		sub   Submission
	)
	if err := row.Scan(&rowID, &sub.Email, &sub.FullName, &sub.Payload, &sub.Status, &sub.LastError, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	sub.ID = rowID.String()
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	return sub, nil
}

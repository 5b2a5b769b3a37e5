package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jobdeck/jobdeck/internal/common"
	"github.com/jobdeck/jobdeck/internal/dbx"
	"github.com/jobdeck/jobdeck/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.StoredFile) (*models.StoredFile, error) {
	query :=
		`INSERT INTO stored_files (file_id, user_id, kind, url, file_name, label)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING uploaded_at
		 `

	label := sql.NullString{String: f.Label, Valid: f.Label != ""}

	err := r.db.QueryRowContext(ctx, query,
		f.ID, f.UserID, string(f.Kind), f.URL, f.FileName, label).Scan(&f.UploadedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID string, kind models.FileKind) (*models.StoredFile, error) {
	query :=
		`SELECT file_id, user_id, kind, url, file_name, label, uploaded_at
		 FROM stored_files
		 WHERE file_id = $1 AND user_id = $2 AND kind = $3
		 `

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id, userID, string(kind)))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, kind models.FileKind) ([]*models.StoredFile, error) {
	query :=
		`SELECT file_id, user_id, kind, url, file_name, label, uploaded_at
		 FROM stored_files
		 WHERE user_id = $1 AND kind = $2
		 ORDER BY uploaded_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.StoredFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string, kind models.FileKind) error {
	query :=
		`DELETE FROM stored_files
		 WHERE file_id = $1 AND user_id = $2 AND kind = $3
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID, string(kind))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*models.StoredFile, error) {
	f := &models.StoredFile{}
	var kind string
	var label sql.NullString

	err := row.Scan(&f.ID, &f.UserID, &kind, &f.URL, &f.FileName, &label, &f.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	f.Kind = models.FileKind(kind)
	f.Label = label.String
	return f, nil
}

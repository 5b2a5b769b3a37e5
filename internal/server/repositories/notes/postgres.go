package notes

import (
	"context"
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

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	query :=
		`INSERT INTO application_notes (note_id, application_id, user_id, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		note.ID, note.ApplicationID, note.UserID, note.Content).Scan(&note.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

func (r *PostgresRepository) ListByApplication(ctx context.Context, applicationID, userID string) ([]*models.Note, error) {
	query :=
		`SELECT note_id, application_id, user_id, content, created_at
		 FROM application_notes
		 WHERE application_id = $1 AND user_id = $2
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, applicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(&note.ID, &note.ApplicationID, &note.UserID, &note.Content, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, applicationID, userID string) error {
	query :=
		`DELETE FROM application_notes
		 WHERE note_id = $1 AND application_id = $2 AND user_id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, id, applicationID, userID)
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

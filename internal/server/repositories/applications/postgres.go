package applications

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

func (r *PostgresRepository) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	query :=
		`INSERT INTO applications (application_id, user_id, company, job_title, job_description, status, resume_id, cv_id, applied_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		app.ID, app.UserID, app.Company, app.JobTitle, app.JobDescription, app.Status,
		nullStr(app.ResumeID), nullStr(app.CVID), app.AppliedDate).Scan(&app.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return app, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID string) (*models.Application, error) {
	query := selectApplications + ` WHERE application_id = $1 AND user_id = $2`

	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Application, error) {
	query := selectApplications + ` WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, app *models.Application) error {
	query :=
		`UPDATE applications
		 SET company = $3, job_title = $4, job_description = $5, status = $6,
		     resume_id = $7, cv_id = $8, applied_date = $9
		 WHERE application_id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query,
		app.ID, app.UserID, app.Company, app.JobTitle, app.JobDescription, app.Status,
		nullStr(app.ResumeID), nullStr(app.CVID), app.AppliedDate)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM applications WHERE application_id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) ClearFileReferences(ctx context.Context, userID, fileID string, kind models.FileKind) error {
	column := "resume_id"
	if kind == models.FileKindCV {
		column = "cv_id"
	}
	query := fmt.Sprintf(
		`UPDATE applications SET %s = NULL WHERE user_id = $1 AND %s = $2`, column, column)

	if _, err := r.db.ExecContext(ctx, query, userID, fileID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const selectApplications = `SELECT application_id, user_id, company, job_title, job_description, status, resume_id, cv_id, applied_date, created_at
	 FROM applications`

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (*models.Application, error) {
	app := &models.Application{}
	var resumeID, cvID sql.NullString
	var applied sql.NullTime

	err := row.Scan(&app.ID, &app.UserID, &app.Company, &app.JobTitle, &app.JobDescription,
		&app.Status, &resumeID, &cvID, &applied, &app.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	app.ResumeID = resumeID.String
	app.CVID = cvID.String
	if applied.Valid {
		t := applied.Time
		app.AppliedDate = &t
	}
	return app, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

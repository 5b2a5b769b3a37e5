package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jobdeck/jobdeck/internal/common"
	"github.com/jobdeck/jobdeck/internal/dbx"
	"github.com/jobdeck/jobdeck/internal/server/models"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// violation, raised when concurrent first-sight requests race to provision
// the same subject.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	query :=
		`SELECT user_id, cognito_sub, email, email_verified, premium, created_at
		 FROM users
		 WHERE user_id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetBySubject(ctx context.Context, sub string) (*models.Identity, error) {
	query :=
		`SELECT user_id, cognito_sub, email, email_verified, premium, created_at
		 FROM users
		 WHERE cognito_sub = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, sub))
}

func (r *PostgresRepository) Create(ctx context.Context, ident *models.Identity) (*models.Identity, error) {
	query :=
		`INSERT INTO users (user_id, cognito_sub, email, email_verified)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	sub := sql.NullString{String: ident.CognitoSub, Valid: ident.CognitoSub != ""}

	err := r.db.QueryRowContext(ctx, query,
		ident.ID, sub, ident.Email, ident.EmailVerified).Scan(&ident.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ident, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Identity, error) {
	ident := &models.Identity{}
	var sub sql.NullString

	err := row.Scan(&ident.ID, &sub, &ident.Email, &ident.EmailVerified, &ident.Premium, &ident.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	ident.CognitoSub = sub.String
	return ident, nil
}

// Package identities persists durable user identities.
package identities

import (
	"context"

	"github.com/jobdeck/jobdeck/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	GetBySubject(ctx context.Context, sub string) (*models.Identity, error)
	Create(ctx context.Context, ident *models.Identity) (*models.Identity, error)
}

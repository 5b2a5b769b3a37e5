// Package applications persists tracked job applications.
package applications

import (
	"context"

	"github.com/jobdeck/jobdeck/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, app *models.Application) (*models.Application, error)
	// GetByID is scoped to the owning user; a foreign id yields not-found.
	GetByID(ctx context.Context, id, userID string) (*models.Application, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	Delete(ctx context.Context, id, userID string) error
	// ClearFileReferences nulls out references to a stored file that is
	// about to be deleted, so the delete does not dangle.
	ClearFileReferences(ctx context.Context, userID, fileID string, kind models.FileKind) error
}

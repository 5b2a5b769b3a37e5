// Package files persists stored-file metadata (resumes and CVs). The file
// bytes themselves live in object storage.
package files

import (
	"context"

	"github.com/jobdeck/jobdeck/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, f *models.StoredFile) (*models.StoredFile, error)
	// GetByID is scoped to the owning user; a foreign id yields not-found.
	GetByID(ctx context.Context, id, userID string, kind models.FileKind) (*models.StoredFile, error)
	ListByUser(ctx context.Context, userID string, kind models.FileKind) ([]*models.StoredFile, error)
	Delete(ctx context.Context, id, userID string, kind models.FileKind) error
}

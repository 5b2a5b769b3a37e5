// Package notes persists free-form notes attached to applications.
package notes

import (
	"context"

	"github.com/jobdeck/jobdeck/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	ListByApplication(ctx context.Context, applicationID, userID string) ([]*models.Note, error)
	Delete(ctx context.Context, id, applicationID, userID string) error
}

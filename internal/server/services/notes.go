package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jobdeck/jobdeck/internal/server/models"
	"github.com/jobdeck/jobdeck/internal/server/repositories/repomanager"
)

// NoteService owns notes attached to applications. Every operation first
// resolves the parent application scoped to the calling identity, so a note
// can never be read or written across users.
type NoteService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewNoteService(db *sql.DB, repos repomanager.RepositoryManager) *NoteService {
	return &NoteService{db: db, repos: repos}
}

func (s *NoteService) Create(ctx context.Context, ident *models.Identity, applicationID, content string) (*models.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	if _, err := s.repos.Applications(s.db).GetByID(ctx, applicationID, ident.ID); err != nil {
		return nil, err
	}

	note := &models.Note{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		UserID:        ident.ID,
		Content:       content,
	}
	return s.repos.Notes(s.db).Create(ctx, note)
}

func (s *NoteService) List(ctx context.Context, ident *models.Identity, applicationID string) ([]*models.Note, error) {
	if _, err := s.repos.Applications(s.db).GetByID(ctx, applicationID, ident.ID); err != nil {
		return nil, err
	}
	return s.repos.Notes(s.db).ListByApplication(ctx, applicationID, ident.ID)
}

func (s *NoteService) Delete(ctx context.Context, ident *models.Identity, applicationID, noteID string) error {
	if _, err := s.repos.Applications(s.db).GetByID(ctx, applicationID, ident.ID); err != nil {
		return err
	}
	return s.repos.Notes(s.db).Delete(ctx, noteID, applicationID, ident.ID)
}

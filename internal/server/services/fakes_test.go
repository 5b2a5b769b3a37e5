package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/jobdeck/jobdeck/internal/common"
	"github.com/jobdeck/jobdeck/internal/dbx"
	"github.com/jobdeck/jobdeck/internal/server/models"
	"github.com/jobdeck/jobdeck/internal/server/repositories/applications"
	"github.com/jobdeck/jobdeck/internal/server/repositories/files"
	"github.com/jobdeck/jobdeck/internal/server/repositories/identities"
	"github.com/jobdeck/jobdeck/internal/server/repositories/notes"
	"github.com/jobdeck/jobdeck/internal/server/storage"
)

// fakeStore is an in-memory ObjectStore. Objects maps key to its stat.
type fakeStore struct {
	objects map[string]storage.ObjectStat

	presignedUploads   []string
	presignedDownloads []string
	deleted            []string

	lastDisposition string
	statErr         error
	deleteErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]storage.ObjectStat{}}
}

func (f *fakeStore) PresignUpload(ctx context.Context, key, contentType string, maxSize int64, expires time.Duration) (*storage.PresignedUpload, error) {
	f.presignedUploads = append(f.presignedUploads, key)
	return &storage.PresignedUpload{
		URL:    "https://store.example.com",
		Fields: map[string]string{"key": key, "Content-Type": contentType},
	}, nil
}

func (f *fakeStore) PresignDownload(ctx context.Context, key, contentDisposition string, expires time.Duration) (string, error) {
	f.presignedDownloads = append(f.presignedDownloads, key)
	f.lastDisposition = contentDisposition
	return "https://store.example.com/" + key + "?signed=1", nil
}

func (f *fakeStore) StatObject(ctx context.Context, key string) (*storage.ObjectStat, error) {
	if f.statErr != nil {
		return nil, f.statErr
	}
	stat, ok := f.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &stat, nil
}

func (f *fakeStore) DeleteObject(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://files.example.com/" + key
}

// fakeFilesRepo is an in-memory files.Repository.
type fakeFilesRepo struct {
	rows map[string]*models.StoredFile
}

func newFakeFilesRepo() *fakeFilesRepo {
	return &fakeFilesRepo{rows: map[string]*models.StoredFile{}}
}

func (f *fakeFilesRepo) Create(ctx context.Context, rec *models.StoredFile) (*models.StoredFile, error) {
	cp := *rec
	cp.UploadedAt = time.Now()
	f.rows[rec.ID] = &cp
	return &cp, nil
}

func (f *fakeFilesRepo) GetByID(ctx context.Context, id, userID string, kind models.FileKind) (*models.StoredFile, error) {
	rec, ok := f.rows[id]
	if !ok || rec.UserID != userID || rec.Kind != kind {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

func (f *fakeFilesRepo) ListByUser(ctx context.Context, userID string, kind models.FileKind) ([]*models.StoredFile, error) {
	var out []*models.StoredFile
	for _, rec := range f.rows {
		if rec.UserID == userID && rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeFilesRepo) Delete(ctx context.Context, id, userID string, kind models.FileKind) error {
	if _, err := f.GetByID(ctx, id, userID, kind); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

// fakeApplicationsRepo is an in-memory applications.Repository.
type fakeApplicationsRepo struct {
	rows    map[string]*models.Application
	cleared []string
}

func newFakeApplicationsRepo() *fakeApplicationsRepo {
	return &fakeApplicationsRepo{rows: map[string]*models.Application{}}
}

func (f *fakeApplicationsRepo) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	cp := *app
	cp.CreatedAt = time.Now()
	f.rows[app.ID] = &cp
	return &cp, nil
}

func (f *fakeApplicationsRepo) GetByID(ctx context.Context, id, userID string) (*models.Application, error) {
	app, ok := f.rows[id]
	if !ok || app.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *app
	return &cp, nil
}

func (f *fakeApplicationsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Application, error) {
	var out []*models.Application
	for _, app := range f.rows {
		if app.UserID == userID {
			out = append(out, app)
		}
	}
	return out, nil
}

func (f *fakeApplicationsRepo) Update(ctx context.Context, app *models.Application) error {
	if _, ok := f.rows[app.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *app
	f.rows[app.ID] = &cp
	return nil
}

func (f *fakeApplicationsRepo) Delete(ctx context.Context, id, userID string) error {
	if _, err := f.GetByID(ctx, id, userID); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeApplicationsRepo) ClearFileReferences(ctx context.Context, userID, fileID string, kind models.FileKind) error {
	f.cleared = append(f.cleared, fileID)
	for _, app := range f.rows {
		if app.UserID != userID {
			continue
		}
		switch kind {
		case models.FileKindResume:
			if app.ResumeID == fileID {
				app.ResumeID = ""
			}
		case models.FileKindCV:
			if app.CVID == fileID {
				app.CVID = ""
			}
		}
	}
	return nil
}

// fakeNotesRepo is an in-memory notes.Repository.
type fakeNotesRepo struct {
	rows map[string]*models.Note
}

func newFakeNotesRepo() *fakeNotesRepo {
	return &fakeNotesRepo{rows: map[string]*models.Note{}}
}

func (f *fakeNotesRepo) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	cp := *note
	cp.CreatedAt = time.Now()
	f.rows[note.ID] = &cp
	return &cp, nil
}

func (f *fakeNotesRepo) ListByApplication(ctx context.Context, applicationID, userID string) ([]*models.Note, error) {
	var out []*models.Note
	for _, n := range f.rows {
		if n.ApplicationID == applicationID && n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotesRepo) Delete(ctx context.Context, id, applicationID, userID string) error {
	n, ok := f.rows[id]
	if !ok || n.ApplicationID != applicationID || n.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

// fakeRepoManager vends the in-memory repositories regardless of the DB
// handle it is given.
type fakeRepoManager struct {
	identitiesRepo   *fakeIdentitiesRepo
	filesRepo        *fakeFilesRepo
	applicationsRepo *fakeApplicationsRepo
	notesRepo        *fakeNotesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		identitiesRepo:   &fakeIdentitiesRepo{},
		filesRepo:        newFakeFilesRepo(),
		applicationsRepo: newFakeApplicationsRepo(),
		notesRepo:        newFakeNotesRepo(),
	}
}

func (m *fakeRepoManager) Identities(db dbx.DBTX) identities.Repository { return m.identitiesRepo }
func (m *fakeRepoManager) Files(db dbx.DBTX) files.Repository           { return m.filesRepo }
func (m *fakeRepoManager) Applications(db dbx.DBTX) applications.Repository {
	return m.applicationsRepo
}
func (m *fakeRepoManager) Notes(db dbx.DBTX) notes.Repository { return m.notesRepo }

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

type fakeIdentitiesRepo struct{}

func (f *fakeIdentitiesRepo) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	return nil, common.ErrorNotFound
}

func (f *fakeIdentitiesRepo) GetBySubject(ctx context.Context, sub string) (*models.Identity, error) {
	return nil, common.ErrorNotFound
}

func (f *fakeIdentitiesRepo) Create(ctx context.Context, ident *models.Identity) (*models.Identity, error) {
	return ident, nil
}

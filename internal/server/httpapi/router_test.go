package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jobdeck/jobdeck/internal/common"
	"github.com/jobdeck/jobdeck/internal/dbx"
	"github.com/jobdeck/jobdeck/internal/logging"
	"github.com/jobdeck/jobdeck/internal/server/auth"
	"github.com/jobdeck/jobdeck/internal/server/models"
	"github.com/jobdeck/jobdeck/internal/server/repositories/applications"
	"github.com/jobdeck/jobdeck/internal/server/repositories/files"
	"github.com/jobdeck/jobdeck/internal/server/repositories/identities"
	"github.com/jobdeck/jobdeck/internal/server/repositories/notes"
	"github.com/jobdeck/jobdeck/internal/server/services"
	"github.com/jobdeck/jobdeck/internal/server/storage"
)

// identityStub injects a fixed identity, standing in for the auth middleware.
func identityStub(ident *models.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), ident)))
		})
	}
}

type stubStore struct {
	objects map[string]storage.ObjectStat
}

func (s *stubStore) PresignUpload(ctx context.Context, key, contentType string, maxSize int64, expires time.Duration) (*storage.PresignedUpload, error) {
	return &storage.PresignedUpload{URL: "https://store.example.com", Fields: map[string]string{"key": key}}, nil
}

func (s *stubStore) PresignDownload(ctx context.Context, key, contentDisposition string, expires time.Duration) (string, error) {
	return "https://store.example.com/" + key + "?signed=1", nil
}

func (s *stubStore) StatObject(ctx context.Context, key string) (*storage.ObjectStat, error) {
	stat, ok := s.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &stat, nil
}

func (s *stubStore) DeleteObject(ctx context.Context, key string) error { return nil }

func (s *stubStore) PublicURL(key string) string { return "https://files.example.com/" + key }

// stubRepos satisfies repomanager.RepositoryManager with an in-memory files
// repository; the other repositories are unused by these tests.
type stubRepos struct {
	files *stubFilesRepo
	apps  *stubApplicationsRepo
}

func (m *stubRepos) Identities(db dbx.DBTX) identities.Repository { return nil }

func (m *stubRepos) Files(db dbx.DBTX) files.Repository { return m.files }

func (m *stubRepos) Applications(db dbx.DBTX) applications.Repository { return m.apps }

func (m *stubRepos) Notes(db dbx.DBTX) notes.Repository { return nil }

func (m *stubRepos) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

type stubFilesRepo struct {
	rows map[string]*models.StoredFile
}

func (f *stubFilesRepo) Create(ctx context.Context, rec *models.StoredFile) (*models.StoredFile, error) {
	rec.UploadedAt = time.Now()
	f.rows[rec.ID] = rec
	return rec, nil
}

func (f *stubFilesRepo) GetByID(ctx context.Context, id, userID string, kind models.FileKind) (*models.StoredFile, error) {
	rec, ok := f.rows[id]
	if !ok || rec.UserID != userID || rec.Kind != kind {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

func (f *stubFilesRepo) ListByUser(ctx context.Context, userID string, kind models.FileKind) ([]*models.StoredFile, error) {
	var out []*models.StoredFile
	for _, rec := range f.rows {
		if rec.UserID == userID && rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *stubFilesRepo) Delete(ctx context.Context, id, userID string, kind models.FileKind) error {
	if _, err := f.GetByID(ctx, id, userID, kind); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

type stubApplicationsRepo struct {
	rows map[string]*models.Application
}

func (f *stubApplicationsRepo) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	app.CreatedAt = time.Now()
	f.rows[app.ID] = app
	return app, nil
}

func (f *stubApplicationsRepo) GetByID(ctx context.Context, id, userID string) (*models.Application, error) {
	app, ok := f.rows[id]
	if !ok || app.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return app, nil
}

func (f *stubApplicationsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Application, error) {
	var out []*models.Application
	for _, app := range f.rows {
		if app.UserID == userID {
			out = append(out, app)
		}
	}
	return out, nil
}

func (f *stubApplicationsRepo) Update(ctx context.Context, app *models.Application) error {
	f.rows[app.ID] = app
	return nil
}

func (f *stubApplicationsRepo) Delete(ctx context.Context, id, userID string) error {
	delete(f.rows, id)
	return nil
}

func (f *stubApplicationsRepo) ClearFileReferences(ctx context.Context, userID, fileID string, kind models.FileKind) error {
	return nil
}

func newTestServer(t *testing.T, ident *models.Identity) (*httptest.Server, *stubStore, *stubRepos) {
	t.Helper()

	store := &stubStore{objects: map[string]storage.ObjectStat{}}
	repos := &stubRepos{
		files: &stubFilesRepo{rows: map[string]*models.StoredFile{}},
		apps:  &stubApplicationsRepo{rows: map[string]*models.Application{}},
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	h := NewHandlers(
		services.NewFileService(nil, repos, store, logger),
		services.NewApplicationService(nil, repos),
		services.NewNoteService(nil, repos),
		logger,
	)
	ts := httptest.NewServer(NewRouter(h, identityStub(ident)))
	t.Cleanup(ts.Close)
	return ts, store, repos
}

func getJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts, _, _ := newTestServer(t, &models.Identity{ID: "U1"})

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestGetMe(t *testing.T) {
	ts, _, _ := newTestServer(t, &models.Identity{ID: "U1", Email: "u1@example.com", Premium: true})

	resp, err := http.Get(ts.URL + "/users/me")
	if err != nil {
		t.Fatalf("GET /users/me: %v", err)
	}
	var body userResponse
	getJSON(t, resp, &body)
	if body.ID != "U1" || body.Email != "u1@example.com" || !body.Premium {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestPresignUpload_Handler(t *testing.T) {
	ts, _, _ := newTestServer(t, &models.Identity{ID: "U1"})

	resp, err := http.Post(ts.URL+"/files/presign?filename=resume.pdf&content_type=application/pdf", "", nil)
	if err != nil {
		t.Fatalf("POST /files/presign: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body uploadGrantResponse
	getJSON(t, resp, &body)
	if !strings.HasPrefix(body.Key, "U1/") {
		t.Errorf("key = %q", body.Key)
	}
	if body.UploadURL == "" || body.FileURL == "" {
		t.Errorf("incomplete grant: %+v", body)
	}
}

func TestPresignUpload_UnsupportedType(t *testing.T) {
	ts, _, _ := newTestServer(t, &models.Identity{ID: "U1"})

	resp, err := http.Post(ts.URL+"/files/presign?filename=pic.png&content_type=image/png", "", nil)
	if err != nil {
		t.Fatalf("POST /files/presign: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", resp.StatusCode)
	}
}

func TestCreateAndDownloadResume(t *testing.T) {
	ts, store, _ := newTestServer(t, &models.Identity{ID: "U1"})
	store.objects["U1/abc.pdf"] = storage.ObjectStat{Size: 50000, ContentType: "application/pdf"}

	payload := `{"file_name":"resume.pdf","url":"https://files.example.com/U1/abc.pdf","label":"Backend"}`
	resp, err := http.Post(ts.URL+"/files/resumes", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST /files/resumes: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var created fileResponse
	getJSON(t, resp, &created)

	resp, err = http.Get(ts.URL + "/files/presign-get?kind=resume&item_id=" + created.ID)
	if err != nil {
		t.Fatalf("GET /files/presign-get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("presign-get status = %d", resp.StatusCode)
	}
	var grant downloadGrantResponse
	getJSON(t, resp, &grant)
	if !strings.Contains(grant.DownloadURL, "U1/abc.pdf") {
		t.Errorf("download url = %q", grant.DownloadURL)
	}
}

func TestCreateFile_BodyFieldNames(t *testing.T) {
	ts, store, _ := newTestServer(t, &models.Identity{ID: "U1"})
	store.objects["U1/abc.pdf"] = storage.ObjectStat{Size: 50000, ContentType: "application/pdf"}

	// The body carries the object reference as "url"; label is optional.
	resp, err := http.Post(ts.URL+"/files/cv", "application/json",
		strings.NewReader(`{"file_name":"resume.pdf","url":"https://files.example.com/U1/abc.pdf"}`))
	if err != nil {
		t.Fatalf("POST /files/cv: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/files/cv", "application/json",
		strings.NewReader(`{"file_name":"resume.pdf","file_url":"https://files.example.com/U1/abc.pdf"}`))
	if err != nil {
		t.Fatalf("POST /files/cv: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field must be rejected, status = %d", resp.StatusCode)
	}
}

func TestPresignDownload_ForeignKeyForbidden(t *testing.T) {
	ts, _, _ := newTestServer(t, &models.Identity{ID: "U2"})

	resp, err := http.Get(ts.URL + "/files/presign-get?key=U1/abc.pdf")
	if err != nil {
		t.Fatalf("GET /files/presign-get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestApplicationsCRUD_Handler(t *testing.T) {
	ts, _, _ := newTestServer(t, &models.Identity{ID: "U1"})

	resp, err := http.Post(ts.URL+"/applications", "application/json",
		strings.NewReader(`{"company":"Acme","job_title":"Backend Engineer","applied_date":"2026-08-01"}`))
	if err != nil {
		t.Fatalf("POST /applications: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var created applicationResponse
	getJSON(t, resp, &created)
	if created.Status != models.StatusApplied || created.AppliedDate != "2026-08-01" {
		t.Errorf("unexpected body: %+v", created)
	}

	req, _ := http.NewRequest(http.MethodPatch, ts.URL+"/applications/"+created.ID,
		strings.NewReader(`{"status":"interviewing"}`))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH: %v", err)
	}
	var updated applicationResponse
	getJSON(t, resp, &updated)
	if updated.Status != models.StatusInterviewing {
		t.Errorf("status = %q", updated.Status)
	}
	if updated.Company != "Acme" {
		t.Errorf("patch clobbered company: %+v", updated)
	}
}

func TestApplicationValidation_Handler(t *testing.T) {
	ts, _, _ := newTestServer(t, &models.Identity{ID: "U1"})

	resp, err := http.Post(ts.URL+"/applications", "application/json",
		strings.NewReader(`{"company":"Acme","status":"ghosted"}`))
	if err != nil {
		t.Fatalf("POST /applications: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

// Package services implements the application services behind the HTTP
// layer: file upload/download mediation, applications, and notes.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobdeck/jobdeck/internal/common"
	"github.com/jobdeck/jobdeck/internal/dbx"
	"github.com/jobdeck/jobdeck/internal/logging"
	"github.com/jobdeck/jobdeck/internal/server/models"
	"github.com/jobdeck/jobdeck/internal/server/repositories/repomanager"
	"github.com/jobdeck/jobdeck/internal/server/storage"
)

const (
	// MaxUploadSize is the hard byte ceiling the store enforces at upload
	// time and the service re-checks at confirmation time.
	MaxUploadSize = 10 << 20 // 10 MiB

	uploadGrantTTL   = 10 * time.Minute
	downloadGrantTTL = 5 * time.Minute
)

// allowedContentTypes is the fixed allow-list for uploaded documents.
var allowedContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// AllowedContentType reports whether ct is an accepted document MIME type.
func AllowedContentType(ct string) bool {
	_, ok := allowedContentTypes[strings.ToLower(ct)]
	return ok
}

// ErrInvalidDownloadSelector is returned when a download request names
// neither a record reference nor a raw url/key.
var ErrInvalidDownloadSelector = errors.New("provide kind and item_id, or url, or key")

// ObjectStore is the object-storage surface the file service consumes.
// *storage.Client satisfies it.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string, maxSize int64, expires time.Duration) (*storage.PresignedUpload, error)
	PresignDownload(ctx context.Context, key, contentDisposition string, expires time.Duration) (string, error)
	StatObject(ctx context.Context, key string) (*storage.ObjectStat, error)
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
}

// FileService mediates every interaction between identities and the object
// store: it issues constrained upload/download grants, verifies uploads
// server-side before metadata is persisted, and owns the file-metadata CRUD.
type FileService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	store  ObjectStore
	logger logging.Logger
}

func NewFileService(db *sql.DB, repos repomanager.RepositoryManager, store ObjectStore, logger logging.Logger) *FileService {
	return &FileService{db: db, repos: repos, store: store, logger: logger}
}

// UploadGrant is a time-boxed authorization for a direct upload, plus the
// URL the object will resolve to once stored.
type UploadGrant struct {
	UploadURL   string
	Fields      map[string]string
	FileURL     string
	Key         string
	ContentType string
	MaxSize     int64
}

// AuthorizeUpload validates the requested content type, mints an owned
// object key, and issues an upload grant constrained to that exact key,
// content type, and the size ceiling.
func (s *FileService) AuthorizeUpload(ctx context.Context, ident *models.Identity, filename, contentType string) (*UploadGrant, error) {
	clean := storage.SanitizeFileName(filename)

	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" {
		ct = guessContentType(clean)
	}
	if !AllowedContentType(ct) {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedMediaType, ct)
	}

	key := storage.MintKey(ident.ID, clean)

	presigned, err := s.store.PresignUpload(ctx, key, ct, MaxUploadSize, uploadGrantTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "upload grant issued", "user_id", ident.ID, "key", key, "content_type", ct)

	return &UploadGrant{
		UploadURL:   presigned.URL,
		Fields:      presigned.Fields,
		FileURL:     s.store.PublicURL(key),
		Key:         key,
		ContentType: ct,
		MaxSize:     MaxUploadSize,
	}, nil
}

// VerifiedObject describes an object the store itself has confirmed.
type VerifiedObject struct {
	Key         string
	Size        int64
	ContentType string
}

// ConfirmUpload checks, against the store directly, that the object behind
// claimedURL exists, is owned by ident, is non-empty, fits the size cap,
// and carries an allowed content type. The caller's own report about its
// upload is never trusted; this closes the gap between "a grant was
// issued" and "the grant's constraints were honored".
func (s *FileService) ConfirmUpload(ctx context.Context, ident *models.Identity, claimedURL string) (*VerifiedObject, error) {
	key := storage.KeyFromURL(claimedURL)
	if key == "" {
		return nil, fmt.Errorf("%w: no object key in url", common.ErrUploadVerificationFailed)
	}
	if !storage.OwnedBy(key, ident.ID) {
		return nil, common.ErrForbidden
	}

	stat, err := s.store.StatObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUploadVerificationFailed, err)
	}
	if stat.Size <= 0 || stat.Size > MaxUploadSize {
		return nil, fmt.Errorf("%w: invalid object size %d", common.ErrUploadVerificationFailed, stat.Size)
	}
	if !AllowedContentType(stat.ContentType) {
		return nil, fmt.Errorf("%w: unexpected content type %q", common.ErrUploadVerificationFailed, stat.ContentType)
	}

	return &VerifiedObject{Key: key, Size: stat.Size, ContentType: stat.ContentType}, nil
}

// CreateFile verifies the claimed upload and only then persists a metadata
// record for it.
func (s *FileService) CreateFile(ctx context.Context, ident *models.Identity, kind models.FileKind, fileName, claimedURL, label string) (*models.StoredFile, error) {
	verified, err := s.ConfirmUpload(ctx, ident, claimedURL)
	if err != nil {
		return nil, err
	}

	rec := &models.StoredFile{
		ID:       uuid.NewString(),
		UserID:   ident.ID,
		Kind:     kind,
		URL:      s.store.PublicURL(verified.Key),
		FileName: strings.TrimSpace(fileName),
		Label:    strings.TrimSpace(label),
	}
	return s.repos.Files(s.db).Create(ctx, rec)
}

// ListFiles returns the identity's stored files of the given kind, newest
// first.
func (s *FileService) ListFiles(ctx context.Context, ident *models.Identity, kind models.FileKind) ([]*models.StoredFile, error) {
	return s.repos.Files(s.db).ListByUser(ctx, ident.ID, kind)
}

// DeleteFile removes the metadata record (clearing application references
// to it in the same transaction) and then best-effort deletes the stored
// object. A storage delete failure never blocks or fails the operation.
func (s *FileService) DeleteFile(ctx context.Context, ident *models.Identity, kind models.FileKind, id string) error {
	rec, err := s.repos.Files(s.db).GetByID(ctx, id, ident.ID, kind)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Applications(tx).ClearFileReferences(ctx, ident.ID, id, kind); err != nil {
			return err
		}
		return s.repos.Files(tx).Delete(ctx, id, ident.ID, kind)
	})
	if err != nil {
		return err
	}

	if key := storage.KeyFromURL(rec.URL); key != "" {
		if err := s.store.DeleteObject(ctx, key); err != nil {
			s.logger.Warn(ctx, "orphaned object left in store", "key", key, "error", err.Error())
		}
	}
	return nil
}

// DownloadSelector names the object a download grant is requested for:
// either a metadata record (Kind + ItemID) or a raw URL / key fallback.
type DownloadSelector struct {
	Kind   models.FileKind
	ItemID string
	URL    string
	Key    string
	// Disposition is "inline" or "attachment" (default).
	Disposition string
}

// DownloadGrant is a time-boxed authorization for one direct download.
type DownloadGrant struct {
	URL string
}

// AuthorizeDownload resolves the selector to an object key, enforces
// ownership, computes a human-friendly download name, and issues a
// time-boxed download grant carrying the requested disposition.
//
// The record path is implicitly ownership-scoped by the record lookup; the
// raw url/key path is authorized solely by the key-prefix check. Both paths
// run the prefix check before touching the store.
func (s *FileService) AuthorizeDownload(ctx context.Context, ident *models.Identity, sel DownloadSelector) (*DownloadGrant, error) {
	var key, label, originalName string

	switch {
	case sel.Kind != "" && sel.ItemID != "":
		if !sel.Kind.Valid() {
			return nil, ErrInvalidDownloadSelector
		}
		rec, err := s.repos.Files(s.db).GetByID(ctx, sel.ItemID, ident.ID, sel.Kind)
		if err != nil {
			return nil, err
		}
		key = storage.KeyFromURL(rec.URL)
		label = rec.Label
		originalName = rec.FileName

	case sel.URL != "":
		key = storage.KeyFromURL(sel.URL)

	case sel.Key != "":
		key = sel.Key

	default:
		return nil, ErrInvalidDownloadSelector
	}

	if !storage.OwnedBy(key, ident.ID) {
		return nil, common.ErrForbidden
	}

	disposition := sel.Disposition
	if disposition == "" {
		disposition = "attachment"
	}
	if disposition != "inline" && disposition != "attachment" {
		return nil, ErrInvalidDownloadSelector
	}

	preferred := label
	if preferred == "" {
		preferred = originalName
	}
	if preferred == "" {
		preferred = path.Base(key)
	}
	friendly := storage.SafeDownloadName(preferred, path.Ext(key))

	url, err := s.store.PresignDownload(ctx, key, storage.ContentDisposition(disposition, friendly), downloadGrantTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "download grant issued", "user_id", ident.ID, "key", key, "disposition", disposition)

	return &DownloadGrant{URL: url}, nil
}

// guessContentType maps a file extension to a MIME type, defaulting to
// octet-stream (which the allow-list then rejects).
func guessContentType(name string) string {
	ct := mime.TypeByExtension(path.Ext(name))
	if ct == "" {
		return "application/octet-stream"
	}
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

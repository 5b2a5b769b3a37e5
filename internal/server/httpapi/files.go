package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jobdeck/jobdeck/internal/server/auth"
	"github.com/jobdeck/jobdeck/internal/server/models"
	"github.com/jobdeck/jobdeck/internal/server/services"
)

type uploadGrantResponse struct {
	// UploadURL is the POST target; FileURL is where the object will
	// resolve once stored.
	UploadURL   string            `json:"url"`
	Fields      map[string]string `json:"fields"`
	FileURL     string            `json:"file_url"`
	Key         string            `json:"key"`
	ContentType string            `json:"content_type"`
	MaxSize     int64             `json:"max_size"`
}

// presignUpload issues an upload grant for a new document.
//
//	POST /files/presign?filename=report.pdf&content_type=application/pdf
func (h *Handlers) presignUpload(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())
	q := r.URL.Query()

	grant, err := h.files.AuthorizeUpload(r.Context(), ident, q.Get("filename"), q.Get("content_type"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadGrantResponse{
		UploadURL:   grant.UploadURL,
		Fields:      grant.Fields,
		FileURL:     grant.FileURL,
		Key:         grant.Key,
		ContentType: grant.ContentType,
		MaxSize:     grant.MaxSize,
	})
}

type downloadGrantResponse struct {
	DownloadURL string `json:"url"`
}

// presignDownload issues a download grant. The object is selected by a
// metadata record (kind + item_id) or by a raw url / key.
//
//	GET /files/presign-get?kind=resume&item_id=...&disposition=inline
//	GET /files/presign-get?url=https://...
//	GET /files/presign-get?key=<user>/<token>.pdf
func (h *Handlers) presignDownload(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())
	q := r.URL.Query()

	grant, err := h.files.AuthorizeDownload(r.Context(), ident, services.DownloadSelector{
		Kind:        models.FileKind(q.Get("kind")),
		ItemID:      q.Get("item_id"),
		URL:         q.Get("url"),
		Key:         q.Get("key"),
		Disposition: q.Get("disposition"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadGrantResponse{DownloadURL: grant.URL})
}

type createFileRequest struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
	Label    string `json:"label"`
}

type fileResponse struct {
	ID         string    `json:"id"`
	FileURL    string    `json:"file_url"`
	FileName   string    `json:"file_name"`
	Label      string    `json:"label,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toFileResponse(f *models.StoredFile) fileResponse {
	return fileResponse{
		ID:         f.ID,
		FileURL:    f.URL,
		FileName:   f.FileName,
		Label:      f.Label,
		UploadedAt: f.UploadedAt,
	}
}

// createFile verifies the claimed upload and records its metadata.
func (h *Handlers) createFile(kind models.FileKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := auth.IdentityFromContext(r.Context())

		var req createFileRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}

		rec, err := h.files.CreateFile(r.Context(), ident, kind, req.FileName, req.URL, req.Label)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, toFileResponse(rec))
	}
}

func (h *Handlers) listFiles(kind models.FileKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := auth.IdentityFromContext(r.Context())

		recs, err := h.files.ListFiles(r.Context(), ident, kind)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		out := make([]fileResponse, 0, len(recs))
		for _, f := range recs {
			out = append(out, toFileResponse(f))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (h *Handlers) deleteFile(kind models.FileKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := auth.IdentityFromContext(r.Context())

		if err := h.files.DeleteFile(r.Context(), ident, kind, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

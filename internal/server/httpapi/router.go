package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jobdeck/jobdeck/internal/logging"
	"github.com/jobdeck/jobdeck/internal/server/models"
	"github.com/jobdeck/jobdeck/internal/server/services"
)

// Handlers bundles the services the HTTP layer dispatches to.
type Handlers struct {
	files        *services.FileService
	applications *services.ApplicationService
	notes        *services.NoteService
	logger       logging.Logger
}

func NewHandlers(files *services.FileService, applications *services.ApplicationService, notes *services.NoteService, logger logging.Logger) *Handlers {
	return &Handlers{files: files, applications: applications, notes: notes, logger: logger}
}

// NewRouter assembles the API routes. Everything except the health endpoint
// sits behind the auth middleware.
func NewRouter(h *Handlers, authMiddleware func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/users/me", h.getMe)

		r.Route("/files", func(r chi.Router) {
			r.Post("/presign", h.presignUpload)
			r.Get("/presign-get", h.presignDownload)

			r.Route("/resumes", func(r chi.Router) {
				r.Post("/", h.createFile(models.FileKindResume))
				r.Get("/", h.listFiles(models.FileKindResume))
				r.Delete("/{id}", h.deleteFile(models.FileKindResume))
			})
			r.Route("/cv", func(r chi.Router) {
				r.Post("/", h.createFile(models.FileKindCV))
				r.Get("/", h.listFiles(models.FileKindCV))
				r.Delete("/{id}", h.deleteFile(models.FileKindCV))
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.Post("/", h.createApplication)
			r.Get("/", h.listApplications)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getApplication)
				r.Put("/", h.updateApplication)
				r.Patch("/", h.updateApplication)
				r.Delete("/", h.deleteApplication)

				r.Route("/notes", func(r chi.Router) {
					r.Post("/", h.createNote)
					r.Get("/", h.listNotes)
					r.Delete("/{noteID}", h.deleteNote)
				})
			})
		})
	})

	return r
}

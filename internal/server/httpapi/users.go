package httpapi

import (
	"net/http"
	"time"

	"github.com/jobdeck/jobdeck/internal/server/auth"
)

type userResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Premium       bool      `json:"premium"`
	CreatedAt     time.Time `json:"created_at"`
}

// getMe returns the profile of the authenticated identity.
func (h *Handlers) getMe(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, userResponse{
		ID:            ident.ID,
		Email:         ident.Email,
		EmailVerified: ident.EmailVerified,
		Premium:       ident.Premium,
		CreatedAt:     ident.CreatedAt,
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jobdeck/jobdeck/internal/server/auth"
	"github.com/jobdeck/jobdeck/internal/server/models"
	"github.com/jobdeck/jobdeck/internal/server/services"
)

const dateLayout = "2006-01-02"

type applicationRequest struct {
	Company        *string `json:"company"`
	JobTitle       *string `json:"job_title"`
	JobDescription *string `json:"job_description"`
	Status         *string `json:"status"`
	ResumeID       *string `json:"resume_id"`
	CVID           *string `json:"cv_id"`
	AppliedDate    *string `json:"applied_date"`
}

type applicationResponse struct {
	ID             string    `json:"id"`
	Company        string    `json:"company"`
	JobTitle       string    `json:"job_title"`
	JobDescription string    `json:"job_description"`
	Status         string    `json:"status"`
	ResumeID       string    `json:"resume_id,omitempty"`
	CVID           string    `json:"cv_id,omitempty"`
	AppliedDate    string    `json:"applied_date,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toApplicationResponse(a *models.Application) applicationResponse {
	resp := applicationResponse{
		ID:             a.ID,
		Company:        a.Company,
		JobTitle:       a.JobTitle,
		JobDescription: a.JobDescription,
		Status:         a.Status,
		ResumeID:       a.ResumeID,
		CVID:           a.CVID,
		CreatedAt:      a.CreatedAt,
	}
	if a.AppliedDate != nil {
		resp.AppliedDate = a.AppliedDate.Format(dateLayout)
	}
	return resp
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handlers) createApplication(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	var req applicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	in := services.ApplicationInput{}
	if req.Company != nil {
		in.Company = *req.Company
	}
	if req.JobTitle != nil {
		in.JobTitle = *req.JobTitle
	}
	if req.JobDescription != nil {
		in.JobDescription = *req.JobDescription
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.ResumeID != nil {
		in.ResumeID = *req.ResumeID
	}
	if req.CVID != nil {
		in.CVID = *req.CVID
	}
	if req.AppliedDate != nil {
		date, err := parseDate(*req.AppliedDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "applied_date must be YYYY-MM-DD"})
			return
		}
		in.AppliedDate = date
	}

	app, err := h.applications.Create(r.Context(), ident, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toApplicationResponse(app))
}

func (h *Handlers) listApplications(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	apps, err := h.applications.List(r.Context(), ident)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]applicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getApplication(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	app, err := h.applications.Get(r.Context(), ident, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handlers) updateApplication(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	var req applicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	patch := services.ApplicationPatch{
		Company:        req.Company,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		Status:         req.Status,
		ResumeID:       req.ResumeID,
		CVID:           req.CVID,
	}
	if req.AppliedDate != nil {
		date, err := parseDate(*req.AppliedDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "applied_date must be YYYY-MM-DD"})
			return
		}
		patch.AppliedDate = date
	}

	app, err := h.applications.Update(r.Context(), ident, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handlers) deleteApplication(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	if err := h.applications.Delete(r.Context(), ident, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

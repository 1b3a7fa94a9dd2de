package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skillshare/api/internal/application/file"
	"github.com/skillshare/api/internal/domain"
	"github.com/skillshare/api/internal/pkg/validate"
	"github.com/skillshare/api/internal/transport/http/middleware"
)

// FileHandler handles portfolio attachment endpoints.
type FileHandler struct {
	svc file.Service
}

func NewFileHandler(svc file.Service) *FileHandler { return &FileHandler{svc: svc} }

type uploadFileRequest struct {
	Filename  string  `json:"filename" validate:"required,max=255"`
	Data      string  `json:"data" validate:"required"`
	ProjectID *string `json:"project_id,omitempty"`
	IsPrivate bool    `json:"is_private"`
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req uploadFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := h.svc.UploadBase64(r.Context(), claims.UserID, file.UploadBase64Input{
		Filename:  req.Filename,
		Data:      req.Data,
		ProjectID: req.ProjectID,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	f, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), claims.UserID,
		claims.Role == domain.RoleAdmin)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FileHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.ListByProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: files})
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID,
		claims.Role == domain.RoleAdmin); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "file deleted"})
}

package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/one-time-unlock-service/internal/http/middleware"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/response"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"
	"github.com/sandeepkv93/one-time-unlock-service/internal/service"
)

type FilesHandler struct {
	gateway *service.ResourceGateway
}

func NewFilesHandler(gateway *service.ResourceGateway) *FilesHandler {
	return &FilesHandler{gateway: gateway}
}

func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	entries, err := h.gateway.List(r.Context(), session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"files": entries})
}

func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	name := chi.URLParam(r, "name")
	file, err := h.gateway.Open(r.Context(), session, name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer file.Close()

	observability.Audit(r, "file.download", "file", file.Entry.Name)
	response.Attachment(w, mime.TypeByExtension(filepath.Ext(file.Entry.Name)), file.Entry.Name)
	http.ServeContent(w, r, file.Entry.Name, file.Entry.ModTime, file)
}

func (h *FilesHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		response.Error(w, r, http.StatusForbidden, response.CodeAccessDenied, "redeem a code to access files", nil)
	case errors.Is(err, service.ErrFileNotFound):
		response.Error(w, r, http.StatusNotFound, response.CodeFileNotFound, "file not found", nil)
	default:
		slog.ErrorContext(r.Context(), "file access failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, response.CodeInternal, "unexpected error", nil)
	}
}

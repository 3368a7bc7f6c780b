package handlers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/vkarpovich/docvault/internal/docs"
	"github.com/vkarpovich/docvault/internal/files"
	"github.com/vkarpovich/docvault/internal/models"
	"github.com/vkarpovich/docvault/internal/storage"
	"github.com/vkarpovich/docvault/internal/validation"
)

// multipartMemory caps the in-memory portion of a parsed multipart
// form; larger parts spill to temp files.
const multipartMemory = 32 << 20

// DocumentHandler serves the document listing, upload, edit, delete
// and view routes. All of them sit behind the session middleware.
type DocumentHandler struct {
	logger         *slog.Logger
	service        *docs.Service
	files          *files.Store
	maxUploadBytes int64
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(logger *slog.Logger, service *docs.Service, fileStore *files.Store, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{
		logger:         logger,
		service:        service,
		files:          fileStore,
		maxUploadBytes: maxUploadBytes,
	}
}

// DashboardResponse is the JSON body of GET /dashboard.
type DashboardResponse struct {
	Documents []*models.Document `json:"documents"`
	Notice    string             `json:"notice,omitempty"`
}

// Dashboard handles GET /dashboard
// Lists all documents, newest signed date first.
func (h *DocumentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	documents, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list documents", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := DashboardResponse{
		Documents: documents,
		// error notices arrive via redirect, e.g. from an oversized upload
		Notice: r.URL.Query().Get("error"),
	}
	if resp.Documents == nil {
		resp.Documents = []*models.Document{}
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Upload handles POST /upload (multipart: file, name, purpose, date_signed)
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "user id not found in context")
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.handleParseError(w, r, err)
		return
	}

	up := docs.Upload{
		Fields: validation.DocumentFields{
			Name:       r.PostFormValue("name"),
			Purpose:    r.PostFormValue("purpose"),
			DateSigned: r.PostFormValue("date_signed"),
		},
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		up.File = file
		up.Filename = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		sendError(h.logger, w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	doc, err := h.service.Upload(ctx, userID, up)
	if err != nil {
		h.handleWorkflowError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "upload accepted", slog.String("document_id", doc.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// EditForm handles GET /edit/{docID}
// Returns the document as the data source for an edit form.
func (h *DocumentHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := h.service.Get(ctx, r.PathValue("docID"))
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			sendError(h.logger, w, "document not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get document", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, doc, http.StatusOK)
}

// Edit handles POST /edit/{docID} (multipart, file optional)
func (h *DocumentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.handleParseError(w, r, err)
		return
	}

	fields := validation.DocumentFields{
		Name:       r.PostFormValue("name"),
		Purpose:    r.PostFormValue("purpose"),
		DateSigned: r.PostFormValue("date_signed"),
	}

	var reader multipart.File
	filename := ""
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		reader = file
		filename = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		sendError(h.logger, w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	doc, err := h.service.Edit(ctx, r.PathValue("docID"), fields, reader, filename)
	if err != nil {
		h.handleWorkflowError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "edit accepted", slog.String("document_id", doc.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Delete handles POST /delete/{docID}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.Delete(ctx, r.PathValue("docID")); err != nil {
		h.handleWorkflowError(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// View handles GET /view/{filename}
// Streams a stored file. The file store rejects any name that could
// resolve outside the upload directory.
func (h *DocumentHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	path, err := h.files.Path(r.PathValue("filename"))
	if err != nil {
		if errors.Is(err, files.ErrFileNotFound) || errors.Is(err, files.ErrInvalidName) {
			sendError(h.logger, w, "file not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to resolve stored file", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.ServeFile(w, r, path)
}

// handleParseError distinguishes an oversized payload from a malformed
// one. Oversize redirects back to the dashboard with a notice.
func (h *DocumentHandler) handleParseError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.logger.WarnContext(r.Context(), "upload exceeds size limit",
			slog.Int64("limit_bytes", maxErr.Limit))
		http.Redirect(w, r, "/dashboard?error=file+too+large", http.StatusSeeOther)
		return
	}

	sendError(h.logger, w, "invalid multipart form", http.StatusBadRequest)
}

// handleWorkflowError maps workflow errors onto the HTTP surface.
func (h *DocumentHandler) handleWorkflowError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, docs.ErrValidation):
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrDocumentNotFound):
		sendError(h.logger, w, "document not found", http.StatusNotFound)
	default:
		h.logger.ErrorContext(ctx, "document workflow failed", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
	}
}

package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tikaparse/internal/domain"
	"tikaparse/internal/export"
	"tikaparse/internal/middleware"
	"tikaparse/internal/service"
	"tikaparse/internal/tika"
)

const exportFilePrefix = "documents"

// DocumentHandler handles stored document endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload handles POST /api/v1/documents
// @Summary Upload a document
// @Description Store a file and queue it for parsing
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to store"
// @Param mode formData string false "Service mode" Enums(all, meta, text) default(all)
// @Param xml formData bool false "Request XHTML content"
// @Success 201 {object} Response{data=domain.Document} "Document queued"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security BearerAuth
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	client, err := middleware.GetClient(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing client context")
		return
	}

	mode, err := tika.ParseServiceMode(formOrQuery(c, "mode"))
	if err != nil {
		HandleError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	doc, err := h.documentService.Upload(c.Request.Context(), service.UploadDocumentInput{
		FileName:   header.Filename,
		Size:       header.Size,
		Body:       file,
		Mode:       mode,
		XMLContent: parseBoolQuery(c, "xml"),
		UploadedBy: client,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Tags documents
// @Produce json
// @Param status query string false "Filter by status" Enums(queued, processing, parsed, failed)
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Document,meta=PagMeta} "List of documents"
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Security BearerAuth
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	status := domain.ParseStatus(c.Query("status"))
	if status != "" && !domain.ValidParseStatuses[status] {
		RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "invalid status; allowed: queued, processing, parsed, failed")
		return
	}
	offset, limit := parsePagination(c)

	docs, total, err := h.documentService.List(c.Request.Context(), status, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} Response{data=domain.Document} "Document"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Content handles GET /api/v1/documents/:id/content and returns the
// extracted text as text/plain.
// @Summary Get extracted text
// @Tags documents
// @Produce plain
// @Param id path string true "Document ID"
// @Success 200 {string} string "Extracted text"
// @Success 204 "Parsed without content"
// @Failure 409 {object} ErrorResponseBody "Not parsed yet"
// @Security BearerAuth
// @Router /documents/{id}/content [get]
func (h *DocumentHandler) Content(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	if doc.Status != domain.ParseStatusParsed {
		HandleError(c, domain.ErrDocumentNotParsed)
		return
	}
	if doc.Content == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(*doc.Content))
}

// Download handles GET /api/v1/documents/:id/download
// @Summary Get a presigned download URL
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} Response "Download URL"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	url, err := h.documentService.GetDownloadURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"download_url": url})
}

// Reparse handles POST /api/v1/documents/:id/reparse
// @Summary Queue a document for parsing again
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 202 {object} Response{data=domain.Document} "Queued"
// @Failure 409 {object} ErrorResponseBody "Parse in progress"
// @Security BearerAuth
// @Router /documents/{id}/reparse [post]
func (h *DocumentHandler) Reparse(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Reparse(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: doc})
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} Response "Deleted"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "document deleted"})
}

// Export handles GET /api/v1/documents/export?format=csv|xlsx
// @Summary Export all documents
// @Tags documents
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Export format" Enums(csv, xlsx) default(csv)
// @Success 200 {file} file "Export file"
// @Failure 400 {object} ErrorResponseBody "Invalid format"
// @Security BearerAuth
// @Router /documents/export [get]
func (h *DocumentHandler) Export(c *gin.Context) {
	format, err := domain.ParseExportFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.documentService.Export(c.Request.Context(), format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(exportFilePrefix, format, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return uuid.Nil, false
	}
	return id, true
}

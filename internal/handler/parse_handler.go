package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tikaparse/internal/domain"
	"tikaparse/internal/service"
	"tikaparse/internal/tika"
)

// ParseHandler parses uploaded files synchronously without storing them.
type ParseHandler struct {
	parseService service.ParseService
	maxBytes     int64
}

// NewParseHandler creates a new ParseHandler. Uploads larger than maxBytes
// are rejected before they are read; zero disables the check.
func NewParseHandler(parseService service.ParseService, maxBytes int64) *ParseHandler {
	return &ParseHandler{parseService: parseService, maxBytes: maxBytes}
}

// Parse handles POST /api/v1/parse
// @Summary Parse a file
// @Description Parse an uploaded file with Tika without storing it. The data is the normalized record, or {status, body} when raw is set.
// @Tags parse
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to parse"
// @Param mode query string false "Service mode" Enums(all, meta, text) default(all)
// @Param xml query bool false "Request XHTML content"
// @Param raw query bool false "Return the raw status and body"
// @Success 200 {object} Response "Normalized record or raw response"
// @Failure 400 {object} ErrorResponseBody "Missing file, empty file or invalid mode"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 502 {object} ErrorResponseBody "Tika unreachable or malformed reply"
// @Security BearerAuth
// @Router /parse [post]
func (h *ParseHandler) Parse(c *gin.Context) {
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

	if h.maxBytes > 0 && header.Size > h.maxBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	var r io.Reader = file
	if h.maxBytes > 0 {
		r = io.LimitReader(file, h.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}
	if h.maxBytes > 0 && int64(len(data)) > h.maxBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	out, err := h.parseService.ParseUpload(c.Request.Context(), service.ParseUploadInput{
		FileName:   header.Filename,
		Data:       data,
		Mode:       mode,
		XMLContent: parseBoolQuery(c, "xml"),
		Raw:        parseBoolQuery(c, "raw"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	if out.Raw != nil {
		RespondOK(c, out.Raw)
		return
	}
	RespondOK(c, out.Record)
}

func formOrQuery(c *gin.Context, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return c.PostForm(key)
}

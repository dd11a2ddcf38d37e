package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tikaparse/internal/domain"
	"tikaparse/internal/middleware"
	"tikaparse/internal/tika"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain and tika errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var transportErr *tika.TransportError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrEmptyFile), errors.Is(err, tika.ErrEmptySource):
		return http.StatusBadRequest, "EMPTY_FILE", "file is empty"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrDocumentNotParsed):
		return http.StatusConflict, "DOCUMENT_NOT_PARSED", "document has not been parsed yet"
	case errors.Is(err, domain.ErrDocumentProcessing):
		return http.StatusConflict, "DOCUMENT_PROCESSING", "document is being parsed; try again later"
	case errors.Is(err, domain.ErrInvalidExportFormat):
		return http.StatusBadRequest, "INVALID_EXPORT_FORMAT", "invalid export format; allowed: csv, xlsx"
	case errors.Is(err, tika.ErrInvalidServiceMode):
		return http.StatusBadRequest, "INVALID_SERVICE_MODE", "invalid mode; allowed: all, meta, text"
	case errors.Is(err, tika.ErrMalformedResponse):
		return http.StatusBadGateway, "MALFORMED_TIKA_RESPONSE", "tika returned a response that could not be decoded"
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, "TIKA_UNAVAILABLE", "tika server could not be reached"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		log.Error().Err(err).Interface("request_id", requestID).Str("path", c.FullPath()).Msg("handler: request failed")
	}
	RespondError(c, status, code, msg)
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// parseBoolQuery reads an optional boolean query or form value. Anything
// strconv.ParseBool rejects counts as false.
func parseBoolQuery(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(formOrQuery(c, key))
	return b
}

package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// Response is the documented success envelope.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody is the documented error envelope.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

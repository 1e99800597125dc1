// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON API
// responses. Every body leaves through the same envelope so clients can
// branch on "success" before looking at anything else.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// envelope is the wire shape shared by every /api response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building enveloped JSON
// responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       envelope
}

// NewJSONResponse creates a successful response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
		body:       envelope{Success: true},
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the payload.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.body.Data = v
	return b
}

// Count sets the number of items for list responses.
func (b *JSONResponseBuilder) Count(n int) *JSONResponseBuilder {
	b.body.Count = &n
	return b
}

// Message sets a human readable message.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	b.body.Message = msg
	return b
}

// Failed marks the envelope as unsuccessful.
func (b *JSONResponseBuilder) Failed() *JSONResponseBuilder {
	b.body.Success = false
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	payload, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode response", "error", err, "status", b.statusCode)
		payload = []byte(`{"success":false,"message":"Internal server error"}`)
		b.statusCode = http.StatusInternalServerError
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
}

// ListResponse wraps a collection, always encoding an array and its length.
func ListResponse[T any](items []T) *JSONResponseBuilder {
	if items == nil {
		items = []T{}
	}
	return NewJSONResponse().Data(items).Count(len(items))
}

// CreatedResponse wraps a newly created entity with a 201 status.
func CreatedResponse(v any) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusCreated).Data(v)
}

// DeletedResponse reports a successful delete of the named entity.
func DeletedResponse(label string) *JSONResponseBuilder {
	return NewJSONResponse().Message(label + " deleted successfully")
}

// ErrorResponse creates a standard error envelope.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Failed().Status(statusCode).Message(message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// TooManyRequestsError creates a 429 response for rate limited clients.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// Package http serves the attrition dashboard and its JSON endpoints.
//
// This file holds a small fluent builder so every handler sets status,
// headers and body the same way.

package http

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
)

// ResponseBuilder collects a response before anything is written, so a
// failure while producing the body never leaves a partial response.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       []byte
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the raw body and its content type.
func (b *ResponseBuilder) Body(contentType string, content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.body = content
	return b
}

// Text sets a plain text body.
func (b *ResponseBuilder) Text(content string) *ResponseBuilder {
	return b.Body("text/plain; charset=utf-8", []byte(content))
}

// JSON encodes v as the body. An encoding failure turns the response into
// a 500 with a JSON error body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		body = []byte(`{"error":"response encoding failed"}`)
	}
	return b.Body("application/json", append(body, '\n'))
}

// HTML executes the named template into the body.
func (b *ResponseBuilder) HTML(t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	b.Body("text/html; charset=utf-8", buf.Bytes())
	return nil
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// ErrorJSON creates a JSON error response.
func ErrorJSON(statusCode int, message string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		JSON(errorBody{Error: message, Status: statusCode})
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorJSON(http.StatusNotFound, message)
}

// ServiceUnavailableError creates a 503 error response.
func ServiceUnavailableError(message string) *ResponseBuilder {
	return ErrorJSON(http.StatusServiceUnavailable, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorJSON(http.StatusInternalServerError, message)
}

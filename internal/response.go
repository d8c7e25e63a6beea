package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response content types.
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Status is the outcome marker in the JSON envelope.
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)

// envelope is the canonical JSON wire shape for API responses.
type envelope struct {
	Status  Status `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Response is the normalized result of handling one request.
// Handlers build one via the constructors; the dispatcher serializes
// it according to its content type.
type Response struct {
	Status      Status
	Code        int // HTTP status code
	Message     string
	Data        any
	ContentType string
	Location    string // redirect target; empty for non-redirects
}

// OK creates a 200 JSON response carrying data.
func OK(data any) *Response {
	return &Response{
		Status:      StatusOK,
		Code:        http.StatusOK,
		Data:        data,
		ContentType: ContentTypeJSON,
	}
}

// OKMessage creates a 200 JSON response with a message and no payload.
func OKMessage(message string) *Response {
	return &Response{
		Status:      StatusOK,
		Code:        http.StatusOK,
		Message:     message,
		ContentType: ContentTypeJSON,
	}
}

// Fail creates an error JSON response with the given status code.
func Fail(code int, message string) *Response {
	return &Response{
		Status:      StatusError,
		Code:        code,
		Message:     message,
		ContentType: ContentTypeJSON,
	}
}

// HTML creates a response carrying a rendered HTML body.
func HTML(code int, body string) *Response {
	return &Response{
		Status:      StatusOK,
		Code:        code,
		Data:        body,
		ContentType: ContentTypeHTML,
	}
}

// Text creates a plain-text response.
func Text(code int, body string) *Response {
	return &Response{
		Status:      StatusOK,
		Code:        code,
		Data:        body,
		ContentType: ContentTypeText,
	}
}

// Redirect creates an HTTP redirect to location. Codes outside the
// 3xx range fall back to 302.
func Redirect(code int, location string) *Response {
	if code < 300 || code > 399 {
		code = http.StatusFound
	}
	return &Response{
		Status:   StatusOK,
		Code:     code,
		Location: location,
	}
}

// Write serializes the response onto w. JSON responses use the
// canonical envelope; HTML and text responses write their body
// as-is; redirects set the Location header and no body.
func (resp *Response) Write(w http.ResponseWriter) error {
	if resp.Location != "" {
		w.Header().Set("Location", resp.Location)
		w.WriteHeader(resp.Code)
		return nil
	}

	switch resp.ContentType {
	case ContentTypeJSON, "":
		w.Header().Set("Content-Type", ContentTypeJSON)
		w.WriteHeader(resp.Code)
		return json.NewEncoder(w).Encode(envelope{
			Status:  resp.Status,
			Data:    resp.Data,
			Message: resp.Message,
		})
	default:
		w.Header().Set("Content-Type", resp.ContentType)
		w.WriteHeader(resp.Code)
		_, err := fmt.Fprint(w, resp.Data)
		return err
	}
}

// Package api holds the JSON envelope every endpoint answers with.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	Meta      *Meta  `json:"meta,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Meta carries pagination for list responses.
type Meta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "status", status, "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Paged(w http.ResponseWriter, data any, meta Meta, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Meta: &meta, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

// Accepted acknowledges work handed to the background queue.
func Accepted(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusAccepted, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	FailWithDetails(w, status, code, message, nil, requestID)
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

type decodeOptions struct {
	allowEmpty bool
	useNumber  bool
}

type DecodeOption func(*decodeOptions)

// AllowEmpty treats a missing body as an empty object.
func AllowEmpty() DecodeOption { return func(o *decodeOptions) { o.allowEmpty = true } }

// UseNumber keeps numbers as json.Number so callers can validate precision.
func UseNumber() DecodeOption { return func(o *decodeOptions) { o.useNumber = true } }

// DecodeJSON reads the request body into dst. On failure it writes a 413 for
// bodies over the configured limit or a 400 otherwise, and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string, opts ...DecodeOption) bool {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	dec := json.NewDecoder(r.Body)
	if o.useNumber {
		dec.UseNumber()
	}

	err := dec.Decode(dst)
	if err == nil || (o.allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
		return false
	}
	Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
	return false
}

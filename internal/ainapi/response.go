// Package ainapi decodes response bodies produced by the AIngle node REST
// API. Success responses carry the payload directly; failure responses carry
// a JSON error envelope of the form {"error":{"code":...,"message":...}}.
package ainapi

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ErrorPayload is the error envelope an AIngle node attaches to non-success
// responses.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ExtractError parses the error envelope out of a failure response body.
// It returns nil when the body does not carry a recognizable envelope; the
// caller should then fall back to the raw body and HTTP status.
func ExtractError(body []byte) *ErrorPayload {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	var envelope struct {
		Error *ErrorPayload `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err == nil && envelope.Error != nil {
		if envelope.Error.Code != "" || envelope.Error.Message != "" {
			return envelope.Error
		}
		return nil
	}

	// Some node builds return a bare {"code":...,"message":...} object.
	var flat ErrorPayload
	if err := json.Unmarshal(trimmed, &flat); err == nil && flat.Code != "" {
		return &flat
	}
	return nil
}

// Decode unmarshals a success response body into out. Empty bodies decode as
// JSON null so optional payloads leave out untouched.
func Decode(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		trimmed = []byte("null")
	}
	return json.Unmarshal(trimmed, out)
}

// Summarize produces a short human-readable description of a failure body
// for use in error messages; JSON envelopes collapse to their message.
func Summarize(body []byte) string {
	if payload := ExtractError(body); payload != nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Code
	}
	s := strings.TrimSpace(string(body))
	const maxLen = 200
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}

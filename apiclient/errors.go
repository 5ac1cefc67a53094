package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// NetworkError means the backend could not be reached or the exchange was
// cut short. Nothing is known about whether the server acted on it.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the backend.
type APIError struct {
	Op         string
	StatusCode int
	// Detail is the server-provided explanation, when it sent one.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsNotFound reports whether the backend answered 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// IsValidation reports whether the backend rejected the payload.
func IsValidation(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) &&
		(ae.StatusCode == http.StatusBadRequest || ae.StatusCode == http.StatusUnprocessableEntity)
}

// Detail returns the server-provided detail text carried by err, if any.
func Detail(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Detail
	}
	return ""
}

// parseDetail pulls a human readable message out of an error body. The
// backend sends either {"detail": "text"} or {"detail": [{"msg": ...}]}.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			return text
		}
		var items []struct {
			Msg string        `json:"msg"`
			Loc []interface{} `json:"loc"`
		}
		if err := json.Unmarshal(envelope.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return envelope.Error
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthenticated marks a 401 anywhere except the profile probe. It is
// fatal to the session: callers surface the login view instead of an inline
// error. Match with errors.Is.
var ErrUnauthenticated = errors.New("not authenticated")

// ErrEmailTaken marks the register-with-known-email case, recognized by the
// service's 400 response whose message contains "already".
var ErrEmailTaken = errors.New("email already registered")

// Kind buckets an Error for presentation. Everything except KindNetwork
// came back from the service; KindNetwork never reached it.
type Kind int

const (
	// KindAPI is any non-2xx the other kinds don't claim.
	KindAPI Kind = iota
	// KindAuth is a 401 outside the profile probe.
	KindAuth
	// KindValidation is a 422-style structured field error.
	KindValidation
	// KindNetwork is a transport failure; the request may never have left.
	KindNetwork
)

// Error is the gateway's normalized failure. Fields is populated only for
// KindValidation, keyed by the offending field name.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Fields     map[string]string

	cause error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func netError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "cannot reach the server",
		cause:   err,
	}
}

// detailBody is FastAPI's error envelope. detail is either a plain string
// or an array of {loc, msg} objects for validation failures.
type detailBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// fieldName picks the deepest string segment of a validation loc, skipping
// the leading "body"/"query" markers.
func (v validationItem) fieldName() string {
	for i := len(v.Loc) - 1; i >= 0; i-- {
		if s, ok := v.Loc[i].(string); ok && s != "body" && s != "query" && s != "path" {
			return s
		}
	}
	return ""
}

// parseDetail extracts a human-readable message (and per-field details when
// the body is a validation array) from a FastAPI error payload.
func parseDetail(body []byte) (msg string, fields map[string]string) {
	var envelope detailBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var items []validationItem
	if err := json.Unmarshal(envelope.Detail, &items); err != nil || len(items) == 0 {
		return "", nil
	}
	fields = make(map[string]string, len(items))
	parts := make([]string, 0, len(items))
	for _, it := range items {
		m := strings.TrimSpace(it.Msg)
		if m == "" {
			continue
		}
		if name := it.fieldName(); name != "" {
			fields[name] = m
			parts = append(parts, name+": "+m)
		} else {
			parts = append(parts, m)
		}
	}
	return strings.Join(parts, "; "), fields
}

// apiError builds the Error for a non-2xx response body.
func apiError(status int, body []byte) *Error {
	msg, fields := parseDetail(body)
	kind := KindAPI
	if len(fields) > 0 {
		kind = KindValidation
	}
	if msg == "" {
		if status >= 500 {
			msg = "the server had a problem handling the request"
		} else {
			msg = strings.ToLower(http.StatusText(status))
		}
	}
	return &Error{Kind: kind, StatusCode: status, Message: msg, Fields: fields}
}

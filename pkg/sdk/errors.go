package sdk

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethanbaker/docchat/pkg/errs"
)

// Kind classifies a failed Remote API call
type Kind int

const (
	KindUnauthorized Kind = iota + 1 // credential missing or rejected
	KindClient                       // 4xx other than 401
	KindServer                       // 5xx or a malformed 2xx body
	KindNetwork                      // no response
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// sentinel maps a kind to the shared sentinel error
func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return errs.ErrUnauthorized
	case KindClient:
		return errs.ErrClient
	case KindNetwork:
		return errs.ErrNetwork
	default:
		return errs.ErrServer
	}
}

// Error is returned by every failed Remote API call. errors.Is matches it
// against the sentinel for its kind (errs.ErrUnauthorized, errs.ErrClient,
// errs.ErrServer, errs.ErrNetwork) and against the wrapped cause.
type Error struct {
	Kind    Kind
	Method  string
	Path    string
	Status  int    // 0 when no response was received
	Message string // server-provided message, safe to show to the user
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[BACKEND]: '%s %s' failed (%s)", e.Method, e.Path, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": %d", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// maxMessageLen bounds how much of an unstructured error body is surfaced
const maxMessageLen = 512

// serverMessage extracts a human-readable message from an error body. The
// backend reports errors as {"detail": ...}, {"message": ...} or {"error": ...};
// anything else is returned as trimmed text.
func serverMessage(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := detailMessage(payload.Detail); msg != "" {
			return msg
		}
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen] + "..."
	}
	return msg
}

// detailMessage handles both string details and validation error lists
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

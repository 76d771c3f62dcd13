package orchestrator

import (
	"errors"
	"strings"

	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/ethanbaker/docchat/pkg/sdk"
)

// Notice resolves a failure into the single message shown to the user. A
// stale response is discarded silently and yields "".
func Notice(err error) string {
	if err == nil || errors.Is(err, errs.ErrStale) {
		return ""
	}

	var apiErr *sdk.Error
	switch {
	case errors.Is(err, errs.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), errs.ErrValidation.Error()+": ")
		return capitalize(msg) + "."
	case errors.Is(err, errs.ErrBusy):
		return "Please wait for the current answer before asking another question."
	case errors.Is(err, errs.ErrNotBound):
		return "Upload a document or add a video first."
	case errors.Is(err, errs.ErrUnauthorized):
		return "Your session has ended. Please sign in again."
	case errors.As(err, &apiErr) && apiErr.Kind == sdk.KindClient:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "The request was rejected."
	case errors.Is(err, errs.ErrNetwork):
		return "Could not reach the server. Check your connection and try again."
	case errors.Is(err, errs.ErrServer):
		return "The server could not complete the request. Please try again."
	default:
		return "Something went wrong: " + err.Error()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

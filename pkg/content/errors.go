package content

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

// UpstreamError describes a non-2xx response from the content backend.
type UpstreamError struct {
	Status  int
	Name    string
	Message string
	Details json.RawMessage
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("content backend status %d", e.Status)
	}
	return fmt.Sprintf("content backend status %d: %s", e.Status, e.Message)
}

// StatusCode exposes the upstream status for error dumps.
func (e *UpstreamError) StatusCode() int {
	return e.Status
}

type errorEnvelope struct {
	Error struct {
		Status  int             `json:"status"`
		Name    string          `json:"name"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func parseUpstreamError(status int, body []byte) *UpstreamError {
	upstream := &UpstreamError{Status: status}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		upstream.Name = env.Error.Name
		upstream.Message = env.Error.Message
		upstream.Details = env.Error.Details
		return upstream
	}
	upstream.Message = strings.TrimSpace(string(body))
	return upstream
}

// classify maps an upstream failure onto the API's typed error codes.
func classify(upstream *UpstreamError, action string) *pkgerrors.Error {
	switch upstream.Status {
	case http.StatusBadRequest:
		msg := action
		if upstream.Message != "" {
			msg = upstream.Message
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, upstream, msg)
	case http.StatusUnauthorized:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, upstream, action)
	case http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, upstream, action)
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, upstream, action)
	case http.StatusConflict:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, upstream, action)
	case http.StatusTooManyRequests:
		return pkgerrors.Wrap(pkgerrors.CodeRateLimit, upstream, action)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, upstream, action)
	}
}

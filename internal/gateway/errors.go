package gateway

import (
	"fmt"
	"net/http"

	"resource2code/internal/command"
	"resource2code/model"
)

// RemoteError is a failure reported by the backend through the error
// envelope.
type RemoteError struct {
	Status  int
	Kind    command.Kind
	Message string
}

func (e *RemoteError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("remote call failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets callers test a not_found failure with errors.Is(err,
// model.ErrNotFound).
func (e *RemoteError) Unwrap() error {
	if e.Kind == command.KindNotFound {
		return model.ErrNotFound
	}
	return nil
}

func statusFor(kind command.Kind) int {
	switch kind {
	case command.KindNotFound:
		return http.StatusNotFound
	case command.KindInvalidInput:
		return http.StatusBadRequest
	case command.KindDatabase:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func remoteError(err error) *RemoteError {
	kind := command.Classify(err)
	return &RemoteError{Status: statusFor(kind), Kind: kind, Message: err.Error()}
}

package command

import (
	"errors"

	dbconnector "resource2code"
	"resource2code/internal/connections"
	"resource2code/internal/llm"
	"resource2code/internal/storage"
	"resource2code/internal/task"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidArgs    = errors.New("invalid arguments")
)

// Kind is the error category carried in the gateway error envelope.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindDatabase     Kind = "database"
	KindOther        Kind = "other"
)

// Error tags err with an explicit kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Classify maps err onto the gateway taxonomy.
func Classify(err error) Kind {
	var tagged *Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &tagged):
		return tagged.Kind
	case errors.Is(err, ErrUnknownCommand),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, connections.ErrNotFound),
		errors.Is(err, dbconnector.ErrTableNotFound),
		errors.Is(err, task.ErrTaskNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidArgs),
		errors.Is(err, connections.ErrInvalidInput),
		errors.Is(err, dbconnector.ErrInvalidConfig),
		errors.Is(err, llm.ErrProviderNotConfigured):
		return KindInvalidInput
	default:
		return KindOther
	}
}

// databaseError tags unclassified err as a database failure.
func databaseError(err error) error {
	if err == nil || Classify(err) != KindOther {
		return err
	}
	return &Error{Kind: KindDatabase, Err: err}
}

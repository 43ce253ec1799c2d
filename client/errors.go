package client

import (
	"errors"
	"fmt"
)

var errEmptyID = errors.New("backend returned an empty id")

// CallError is returned by every service operation whose remote call
// failed. Err is the underlying gateway error.
type CallError struct {
	Op      string
	Command string
	Err     error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Command, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

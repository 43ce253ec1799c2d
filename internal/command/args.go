package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"resource2code/model"
)

// decodeArgs decodes the named arguments strictly: unknown fields and
// trailing data are rejected. An empty payload decodes as {}.
func decodeArgs(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("%w: trailing data after arguments", ErrInvalidArgs)
		}
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgs, name)
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgs, msg)
}

type idArgs struct {
	ID model.ID `json:"id"`
}

type keyArgs struct {
	Key string `json:"key"`
}

type setConfigArgs struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type taskArgs struct {
	TaskID string `json:"taskId"`
}

package client

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Notifier shows a user-facing message. It never fails towards the caller.
type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type NopNotifier struct{}

func (NopNotifier) Notify(string) {}

// LogNotifier reports messages as zap warnings.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(message string) {
	if n.Logger == nil {
		return
	}
	n.Logger.Warn("notification", zap.String("message", message))
}

// WriterNotifier prints one line per message, e.g. to stderr.
type WriterNotifier struct {
	mu sync.Mutex
	W  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{W: w}
}

func (n *WriterNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.W, "error: %s\n", message)
}

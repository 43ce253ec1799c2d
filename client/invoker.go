// Package client is the Go API over the backend commands. Every call is a
// single round trip through an Invoker; failures are reported once to an
// injected Notifier and returned as *CallError.
package client

import "context"

// Invoker performs one remote command call. args is encoded as a JSON
// object of named arguments and the result is decoded into out when out is
// non-nil. gateway.HTTPInvoker and gateway.LocalInvoker implement it.
type Invoker interface {
	Invoke(ctx context.Context, command string, args any, out any) error
}

type caller struct {
	inv    Invoker
	notify Notifier
}

func newCaller(inv Invoker, notify Notifier) caller {
	if notify == nil {
		notify = NopNotifier{}
	}
	return caller{inv: inv, notify: notify}
}

// call runs command and, on failure, notifies once with prefix and returns
// a *CallError.
func (c caller) call(ctx context.Context, op, prefix, command string, args, out any) error {
	if err := c.inv.Invoke(ctx, command, args, out); err != nil {
		return c.fail(op, prefix, command, err)
	}
	return nil
}

func (c caller) fail(op, prefix, command string, err error) error {
	c.notify.Notify(prefix + ": " + err.Error())
	return &CallError{Op: op, Command: command, Err: err}
}

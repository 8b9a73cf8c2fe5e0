// Package dashboard is the status-synchronization and control-dispatch core.
//
// All components are owned by a Session and are mutated only on its actor
// goroutine. Network calls are handed to a Runner, which executes them off
// the actor and queues their completion back onto it.
package dashboard

import (
	"context"

	"github.com/soundseeker/seekerctl/internal/utils"
)

// Runner executes call away from the actor and runs the completion it
// returns back on the actor. A nil completion is allowed.
type Runner interface {
	Run(call func(ctx context.Context) func())
}

// InlineRunner runs the call and its completion synchronously on the
// caller's goroutine. One-shot CLI commands and tests use it.
type InlineRunner struct {
	Context context.Context
}

func (r InlineRunner) Run(call func(ctx context.Context) func()) {
	ctx := r.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if done := call(ctx); done != nil {
		done()
	}
}

// ErrorSink receives failures that are not shown to the operator.
type ErrorSink func(format string, args ...any)

func (e ErrorSink) orDefault() ErrorSink {
	if e == nil {
		return utils.Debug
	}
	return e
}

// Outcome labels for command and mutation metrics.
const (
	resultOK       = "ok"
	resultRejected = "rejected"
	resultError    = "error"
)

// Package progress carries an optional status callback through a context so
// long runs can drive a spinner without the pipeline knowing about it.
package progress

import (
	"context"
	"fmt"
)

// Func receives human-readable status lines.
type Func func(msg string)

type key struct{}

// With returns a context carrying fn.
func With(ctx context.Context, fn Func) context.Context {
	return context.WithValue(ctx, key{}, fn)
}

// Report formats and forwards a status line; a context without a callback
// makes it a no-op.
func Report(ctx context.Context, format string, args ...any) {
	if fn, ok := ctx.Value(key{}).(Func); ok && fn != nil {
		fn(fmt.Sprintf(format, args...))
	}
}

// Package logging is the structured logger every MyNote component receives
// at construction. Records carry key-value pairs plus any attributes stored
// in the context with ContextWith.
package logging

import "context"

// Logger is a context-aware, structured logger. args are key-value pairs:
//
//	log.Warn(ctx, "login failed", "account_id", id, "attempts", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn is used for security events: failed logins, lockouts, values that
	// no longer decrypt, forced session clears.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes args.
	With(args ...any) Logger
}

type ctxAttrsKey struct{}

// ContextWith returns a copy of ctx whose records also carry args. Pairs
// added by an outer call are kept.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev, _ := ctx.Value(ctxAttrsKey{}).([]any)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, ctxAttrsKey{}, merged)
}

func attrsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	args, _ := ctx.Value(ctxAttrsKey{}).([]any)
	return args
}

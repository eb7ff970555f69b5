// Package ctxutil carries per-invocation metadata, one HTTP request or one
// dashctl command, through contexts so logs from every layer line up.
package ctxutil

import "context"

type Origin string

const (
	OriginHTTP Origin = "http"
	OriginCLI  Origin = "cli"
)

type Invocation struct {
	Origin    Origin
	TraceID   string
	RequestID string
	// Operation is the route template or the command path.
	Operation string
}

type invocationKey struct{}

func WithInvocation(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

func InvocationFrom(ctx context.Context) (Invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(Invocation)
	return inv, ok
}

// LogFields returns the invocation as logger key/value pairs. Empty ids are
// omitted; a context without an invocation yields nil.
func LogFields(ctx context.Context) []any {
	inv, ok := InvocationFrom(ctx)
	if !ok {
		return nil
	}
	fields := []any{"origin", string(inv.Origin)}
	for _, kv := range [][2]string{
		{"trace_id", inv.TraceID},
		{"request_id", inv.RequestID},
		{"operation", inv.Operation},
	} {
		if kv[1] != "" {
			fields = append(fields, kv[0], kv[1])
		}
	}
	return fields
}

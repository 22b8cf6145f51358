// Package logging provides a slog.Handler wrapper that injects
// request-scoped identifiers carried on a context.Context into every log
// record, so handlers and services deep in a call chain don't need to
// thread an operation ID through every log call by hand.
package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	operationIDKey ctxKey = iota
	sessionTokenKey
)

// WithOperationID returns a context carrying operationID for later
// extraction by ContextHandler.
func WithOperationID(ctx context.Context, operationID string) context.Context {
	return context.WithValue(ctx, operationIDKey, operationID)
}

// WithSessionToken returns a context carrying a session identifier, logged
// as session_id rather than the raw token.
func WithSessionToken(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionTokenKey, sessionID)
}

// ContextHandler wraps a slog.Handler, adding attributes pulled from the
// logged context.Context to every record.
type ContextHandler struct {
	next slog.Handler
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

// Enabled delegates to the wrapped handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle adds context-carried attributes and delegates to the wrapped
// handler.
func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if opID, ok := ctx.Value(operationIDKey).(string); ok && opID != "" {
		record.AddAttrs(slog.String("operation_id", opID))
	}
	if sessionID, ok := ctx.Value(sessionTokenKey).(string); ok && sessionID != "" {
		record.AddAttrs(slog.String("session_id", sessionID))
	}
	return h.next.Handle(ctx, record)
}

// WithAttrs returns a new ContextHandler whose wrapped handler has attrs
// added.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler whose wrapped handler has the
// given group pushed.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}

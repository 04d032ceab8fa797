package core

import "context"

type contextKey string

const ctxKeySession contextKey = "session"

// ContextWithSession attaches s to ctx for handlers further down the chain.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKeySession).(*Session)
	return s, ok && s != nil
}

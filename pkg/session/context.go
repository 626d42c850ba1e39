package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/summarist/pkg/logger"
)

type sessionContextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext returns the session placed by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}

// LoggerExtractor adds "session_id" to records logged within a request.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if s, ok := FromContext(ctx); ok {
			return logger.SessionID(s.ID), true
		}
		return slog.Attr{}, false
	}
}

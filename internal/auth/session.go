package auth

import (
	"context"
	"errors"
)

// Session is the authenticated caller, attached to the request context by
// the JWT middleware and passed explicitly to services from there.
type Session struct {
	UserID         int64
	ExternalUserID string
}

type sessionKey struct{}

var ErrNoSession = errors.New("no authenticated session")

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, error) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || s.UserID == 0 {
		return Session{}, ErrNoSession
	}
	return s, nil
}

package core

import (
	"errors"
	"testing"
)

func TestUserService(t *testing.T) {
	ts := newTestServices(t)
	ts.user(t, "alice")

	if _, err := ts.users.Signup("alice", "another-pass"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate signup err = %v", err)
	}
	if _, err := ts.users.Signup("bob", "short"); !errors.Is(err, ErrValidation) {
		t.Errorf("short password err = %v", err)
	}

	if _, err := ts.users.Login("alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	token, err := ts.users.Login("alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	sess, err := ts.users.Authenticate(token)
	if err != nil || sess.ExternalUserID != "alice" || sess.UserID == 0 {
		t.Errorf("Authenticate = %+v, %v", sess, err)
	}
	if _, err := ts.users.Authenticate("garbage"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("garbage token err = %v", err)
	}
}

package core

import (
	"errors"
	"fmt"
	"strings"

	"carouselcraft.io/carousel-studio/internal/auth"
	"carouselcraft.io/carousel-studio/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLength = 8

type UserService struct {
	dbStore *store.SQLiteStore
}

func NewUserService(db *store.SQLiteStore) *UserService {
	return &UserService{dbStore: db}
}

func (s *UserService) Signup(externalUserID, password string) (*store.User, error) {
	externalUserID = strings.TrimSpace(externalUserID)
	if externalUserID == "" || len(externalUserID) > 100 {
		return nil, invalid("user_id", "must be between 1 and 100 characters")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", "must be at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := s.dbStore.CreateUser(externalUserID, hash)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("user %s: %w", externalUserID, ErrConflict)
	}
	return user, err
}

// Login returns a signed token for valid credentials.
func (s *UserService) Login(externalUserID, password string) (string, error) {
	user, err := s.dbStore.GetUserByExternalID(strings.TrimSpace(externalUserID))
	if err != nil {
		return "", err
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return auth.GenerateJWT(user.ExternalUserID)
}

// Authenticate resolves a bearer token to a session.
func (s *UserService) Authenticate(token string) (auth.Session, error) {
	externalUserID, err := auth.ValidateJWT(token)
	if err != nil {
		return auth.Session{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	user, err := s.dbStore.GetUserByExternalID(externalUserID)
	if err != nil {
		return auth.Session{}, err
	}
	if user == nil {
		return auth.Session{}, ErrInvalidCredentials
	}
	return auth.Session{UserID: user.ID, ExternalUserID: user.ExternalUserID}, nil
}

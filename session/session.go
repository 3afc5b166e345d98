package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"friendcircle/models"
	"friendcircle/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	VerifyPassword(user *models.User, plaintext string) bool
}

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type Session struct {
	ID        string       `json:"-"`
	Token     string       `json:"token"`
	User      *models.User `json:"-"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Manager issues and checks sessions. The signed token names the session,
// and the store decides whether it is still alive.
type Manager struct {
	users  UserFinder
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(users UserFinder, store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{
		users:  users,
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login does not tell an unknown username apart from a wrong password.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := m.users.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !m.users.VerifyPassword(user, password) {
		return nil, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	now := m.now()
	expiresAt := now.Add(m.ttl)

	token, err := m.sign(sessionID, user.ID, now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	if err := m.store.Save(ctx, sessionID, user.ID, m.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &Session{
		ID:        sessionID,
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt,
	}, nil
}

// Authenticate returns the user bound to token, or ErrUnauthorized.
func (m *Manager) Authenticate(ctx context.Context, token string) (int64, error) {
	claims, err := m.parse(token)
	if err != nil {
		return 0, ErrUnauthorized
	}

	userID, err := m.store.Lookup(ctx, claims.ID)
	if errors.Is(err, ErrUnauthorized) {
		return 0, ErrUnauthorized
	}
	if err != nil {
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	if userID != claims.UserID {
		return 0, ErrUnauthorized
	}
	return userID, nil
}

func (m *Manager) Logout(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return ErrUnauthorized
	}
	return m.store.Delete(ctx, claims.ID)
}

func (m *Manager) sign(sessionID string, userID int64, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

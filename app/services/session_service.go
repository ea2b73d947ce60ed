package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultSessionTTL is used when no TTL is configured.
	DefaultSessionTTL = 7 * 24 * time.Hour
	// sessionIDLength is the number of random bytes in a session id.
	sessionIDLength = 32
)

// SessionService issues and resolves login sessions. The server keeps the
// session record; the client holds a signed token naming it.
type SessionService struct {
	sessions repositories.SessionRepository
	users    repositories.UserRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewSessionService creates a SessionService signing tokens with secret.
func NewSessionService(sessions repositories.SessionRepository, users repositories.UserRepository, secret string, ttl time.Duration, logger *slog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		sessions: sessions,
		users:    users,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Login starts a session for user and returns the token to hand to the
// client together with its expiry.
func (s *SessionService) Login(ctx context.Context, user *models.User) (string, time.Time, error) {
	id, err := newSessionID()
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	session := &models.Session{
		ID:        id,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("create session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   strconv.Itoa(user.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Debug("session started", slog.Int("user_id", user.ID))
	return token, session.ExpiresAt, nil
}

// Logout ends the session named by token. Tokens that do not parse are
// ignored.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, claims.ID)
}

// ResolveCurrentActor maps a token to the acting user. Missing, malformed,
// expired and revoked tokens all resolve to models.Anonymous. A live
// session whose user no longer exists yields repositories.ErrNotFound.
func (s *SessionService) ResolveCurrentActor(ctx context.Context, token string) (models.Actor, error) {
	if token == "" {
		return models.Anonymous, nil
	}

	claims, err := s.parse(token)
	if err != nil {
		s.logger.Debug("rejected session token", slog.String("error", err.Error()))
		return models.Anonymous, nil
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Anonymous, nil
		}
		return models.Anonymous, fmt.Errorf("load session: %w", err)
	}
	if strconv.Itoa(session.UserID) != claims.Subject {
		return models.Anonymous, nil
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return models.Anonymous, fmt.Errorf("load session user: %w", err)
	}
	return models.Actor{User: user}, nil
}

func (s *SessionService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("token without session")
	}
	return claims, nil
}

func newSessionID() (string, error) {
	buf := make([]byte, sessionIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

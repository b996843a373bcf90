package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"tietotesti/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "tietotesti"

// MinPasswordLen applies to newly registered teachers.
const MinPasswordLen = 8

// IdentityStore keeps login sessions as opaque id -> identity.
// Get returns domain.ErrUnauthenticated for unknown or expired ids.
type IdentityStore interface {
	Set(ctx context.Context, sessionID string, identity domain.Identity, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (domain.Identity, error)
	Clear(ctx context.Context, sessionID string) error
}

// AuthConfig configures token signing and password hashing.
type AuthConfig struct {
	Secret     []byte
	SessionTTL time.Duration
	BcryptCost int
}

// AuthService verifies teacher credentials and manages login sessions.
type AuthService struct {
	teachers  TeacherRepository
	sessions  IdentityStore
	cfg       AuthConfig
	dummyHash []byte
	now       func() time.Time
	log       logrus.FieldLogger
}

func NewAuthService(teachers TeacherRepository, sessions IdentityStore, cfg AuthConfig, log logrus.FieldLogger) (*AuthService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: jwt secret not configured")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	// Compared against when the username is unknown so both paths cost a bcrypt round.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		teachers:  teachers,
		sessions:  sessions,
		cfg:       cfg,
		dummyHash: dummy,
		now:       time.Now,
		log:       log,
	}, nil
}

// Register creates a teacher account with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, username, password string) (domain.Teacher, error) {
	if len(password) < MinPasswordLen {
		return domain.Teacher{}, domain.NewValidationError("password", "must be at least %d characters", MinPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return domain.Teacher{}, domain.NewValidationError("password", "is too long")
		}
		return domain.Teacher{}, err
	}
	t, err := domain.NormalizeTeacher(domain.Teacher{Username: username, PasswordHash: string(hash)})
	if err != nil {
		return domain.Teacher{}, err
	}
	created, err := s.teachers.CreateTeacher(ctx, t)
	if err != nil {
		return domain.Teacher{}, err
	}
	s.log.WithField("teacher_id", created.ID).Info("teacher registered")
	return created, nil
}

// Token is a signed bearer token for one login session.
type Token struct {
	AccessToken string          `json:"token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Identity    domain.Identity `json:"identity"`
}

// Login verifies the password and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (Token, error) {
	teacher, err := s.teachers.TeacherByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return Token{}, domain.ErrInvalidCredentials
		}
		return Token{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(password)); err != nil {
		s.log.WithField("teacher_id", teacher.ID).Warn("login rejected")
		return Token{}, domain.ErrInvalidCredentials
	}

	identity := domain.Identity{TeacherID: teacher.ID, Username: teacher.Username}
	sessionID := uuid.NewString()
	now := s.now()
	expires := now.Add(s.cfg.SessionTTL)

	if err := s.sessions.Set(ctx, sessionID, identity, s.cfg.SessionTTL); err != nil {
		return Token{}, err
	}

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(teacher.ID, 10),
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return Token{}, err
	}
	s.log.WithField("teacher_id", teacher.ID).Info("teacher logged in")
	return Token{AccessToken: signed, ExpiresAt: expires, Identity: identity}, nil
}

// Authenticate resolves a bearer token to the identity of a live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return domain.Identity{}, err
	}
	identity, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return domain.Identity{}, err
	}
	if strconv.FormatInt(identity.TeacherID, 10) != claims.Subject {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return identity, nil
}

// Logout revokes the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	return s.sessions.Clear(ctx, claims.ID)
}

func (s *AuthService) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}

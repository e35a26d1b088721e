package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"partnersearch/internal/platform/metrics"
	id "partnersearch/pkg/domain"
	dErrors "partnersearch/pkg/domain-errors"
	"partnersearch/pkg/platform/sentinel"
)

const tokenTypeBearer = "bearer"

var (
	errMissingCredentials = dErrors.New(dErrors.CodeValidation, "username and password are required")
	errInvalidCredentials = dErrors.New(dErrors.CodeInvalidCredentials, "Incorrect username or password")
	errInvalidSession     = dErrors.New(dErrors.CodeUnauthorized, "Could not validate credentials")
	errInactiveUser       = dErrors.New(dErrors.CodeInactiveUser, "Inactive user")
)

// dummyHash is compared against when the username is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("partnersearch-unknown-user"), bcrypt.DefaultCost)
	return h
})

type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, username string, expiresIn time.Duration) (string, error)
}

type Service struct {
	users   UserStore
	tokens  TokenIssuer
	expiry  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(users UserStore, tokens TokenIssuer, expiry time.Duration, opts ...Option) *Service {
	s := &Service{
		users:  users,
		tokens: tokens,
		expiry: expiry,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeedUser stores a user with a bcrypt hash of password.
func (s *Service) SeedUser(ctx context.Context, username, password, email, fullName string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	u := &User{
		ID:           id.UserID(uuid.New()),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	var hash []byte
	if user == nil {
		hash = dummyHash()
	} else {
		hash = user.PasswordHash
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil || user == nil {
		s.metrics.IncrementLogin("invalid_credentials")
		s.logger.WarnContext(ctx, "login rejected", "username", req.Username)
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(uuid.UUID(user.ID), user.Username, s.expiry)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementLogin("success")
	s.logger.InfoContext(ctx, "user logged in", "username", user.Username)
	return &TokenResponse{AccessToken: token, TokenType: tokenTypeBearer}, nil
}

// ActiveUser loads the token subject and rejects disabled accounts.
func (s *Service) ActiveUser(ctx context.Context, username string) (*User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errInvalidSession
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if user.Disabled {
		s.metrics.IncrementLogin("inactive")
		return nil, errInactiveUser
	}
	return user, nil
}

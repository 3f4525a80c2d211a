// Package services contains server-side business logic. UserService handles
// registration, login, bearer token verification and the password reset flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/cryptox"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/auth"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// resetCodeBytes random bytes make a 6 character hex reset code.
const resetCodeBytes = 3

// UserService provides the account operations:
//   - Register: create users
//   - Login: verify credentials and mint a token
//   - Authenticate: verify a bearer token
//   - RequestResetCode / ResetPassword: the reset code flow
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	logger                      logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	resetCodeValidityDuration   time.Duration
	now                         func() time.Time
}

// Option customizes a UserService.
type Option func(*UserService)

// WithClock replaces time.Now, e.g. to simulate reset code expiry.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger, opts ...Option) *UserService {
	s := &UserService{
		db:                          db,
		repomanager:                 m,
		logger:                      l.With("module", "user_service"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		resetCodeValidityDuration:   cfg.ResetCodeValidityDuration,
		now:                         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register hashes the password and stores a new user. Duplicate usernames or
// emails yield common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{UserName: username, Email: email, Password: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "creating user failed", "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}

// Login checks the credentials and returns a signed token. Unknown users and
// wrong passwords are indistinguishable (common.ErrorUnauthorized).
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "login lookup failed", "error", err)
		return "", common.ErrorInternal
	}

	if !cryptox.CheckPassword(password, user.Password) {
		return "", common.ErrorUnauthorized
	}

	return s.generateToken(user)
}

// Authenticate verifies a bearer token and returns its claims.
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return claims, nil
}

// RequestResetCode stores a fresh reset code for the account with the given
// email and reports whether such an account exists. The code is only logged.
func (s *UserService) RequestResetCode(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, common.ErrorValidation
	}

	code, err := newResetCode()
	if err != nil {
		s.logger.Error(ctx, "reset code generation failed", "error", err)
		return false, common.ErrorInternal
	}
	expires := s.now().Add(s.resetCodeValidityDuration)

	repo := s.repomanager.Users(s.db)
	n, err := repo.SetResetCode(ctx, email, code, expires)
	if err != nil {
		s.logger.Error(ctx, "storing reset code failed", "error", err)
		return false, common.ErrorInternal
	}
	if n == 0 {
		return false, nil
	}

	s.logger.Info(ctx, "reset code generated", "email", email, "code", code, "expires", expires)
	return true, nil
}

// ResetPassword replaces the password when code matches the stored, unexpired
// reset code (case-insensitively) and returns a fresh token. Absent, wrong and
// expired codes all yield common.ErrInvalidResetCode.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) (string, error) {
	if email == "" || code == "" || newPassword == "" {
		return "", common.ErrorValidation
	}
	code = strings.ToUpper(code)

	user, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		state, err := repo.GetResetState(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrInvalidResetCode
			}
			return nil, fmt.Errorf("error reading reset code: %w", err)
		}
		if !state.HasValidResetCode(code, s.now()) {
			return nil, common.ErrInvalidResetCode
		}

		hash, err := s.hashPassword(newPassword)
		if err != nil {
			return nil, err
		}
		if _, err := repo.ResetPassword(ctx, email, hash); err != nil {
			return nil, fmt.Errorf("error updating password: %w", err)
		}

		return repo.GetUserByEmail(ctx, email)
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidResetCode),
			errors.Is(err, common.ErrorNotFound),
			errors.Is(err, common.ErrorValidation):
			return "", err
		}
		s.logger.Error(ctx, "password reset failed", "error", err)
		return "", common.ErrorInternal
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return s.generateToken(user)
}

// --- helpers below ---

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return hash, nil
}

func (s *UserService) generateToken(user *models.User) (string, error) {
	token, err := auth.GenerateToken(user.ID, user.UserName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

func newResetCode() (string, error) {
	code, err := common.MakeRandHexString(resetCodeBytes)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(code), nil
}

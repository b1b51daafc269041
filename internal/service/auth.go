// Package service contains application services for authentication and refunds.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/chungyifen/tax-refund/internal/crypto"
	"github.com/chungyifen/tax-refund/internal/errs"
	"github.com/chungyifen/tax-refund/internal/limiter"
	"github.com/chungyifen/tax-refund/internal/model"
	"github.com/chungyifen/tax-refund/internal/repository"
)

// defaultAvatar is served until per-user avatars exist.
const defaultAvatar = "/static/avatar-default.png"

// AuthService defines authentication and account operations.
type AuthService interface {
	// LoginWithIP applies rate limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, error)
	// Profile resolves the whoami payload for an authenticated user.
	Profile(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	// ListUsers returns all accounts.
	ListUsers(ctx context.Context) ([]model.UserSummary, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// LoginWithIP authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Tokens{}, err
	}
	if !allowed {
		return model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !u.Enabled || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Tokens{}, errs.ErrRateLimited
		}
		// wrong password, unknown or disabled user all look the same
		return model.Tokens{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, username, ipHash) // best-effort

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, TokenType: "Bearer", ExpiresAt: exp}, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// Profile resolves display data and the authority union for a user.
// Disabled accounts are unauthorized; a user with no authorities yields a
// profile with an empty role set, which clients must treat as unresolved.
func (s *AuthServiceImpl) Profile(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Profile{}, errs.ErrUnauthorized
		}
		return model.Profile{}, err
	}
	if !u.Enabled {
		return model.Profile{}, errs.ErrUnauthorized
	}
	roles, err := s.users.Authorities(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{Name: u.Username, Avatar: defaultAvatar, Roles: roles}, nil
}

// ListUsers returns all accounts with role names.
func (s *AuthServiceImpl) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	return s.users.List(ctx)
}

// EnsureAdmin creates the administrator account with ROLE_ADMIN when it
// does not yet exist. Called once on server startup.
func (s *AuthServiceImpl) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("empty admin username/password")
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return err
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return err
	}
	u := &model.User{
		ID:       uid,
		Username: username,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
		Enabled:  true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if err := s.users.AssignRole(ctx, uid, "ROLE_ADMIN"); err != nil {
		return fmt.Errorf("assign admin role: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
)

const minPasswordLen = 6

type AuthService struct {
	Accounts AccountRepository
	Sessions session.Store
	Hasher   hash.Hasher
	Limiter  ratelimit.Limiter
	Events   EventPublisher

	validate *validator.Validate
}

func NewAuthService(accounts AccountRepository, sessions session.Store, hasher hash.Hasher, limiter ratelimit.Limiter, events EventPublisher) *AuthService {
	return &AuthService{
		Accounts: accounts,
		Sessions: sessions,
		Hasher:   hasher,
		Limiter:  limiter,
		Events:   events,
		validate: validator.New(),
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	AccountID uuid.UUID
	Name      string
	IsAdmin   bool
}

type SessionInfo struct {
	AccountID *uuid.UUID
	IsAdmin   bool
}

func (s *AuthService) validEmail(email string) bool {
	return s.validate.Var(email, "required,email") == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "auth")

	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	password := strings.TrimSpace(in.Password)

	if name == "" {
		return nil, invalid(MsgNameRequired)
	}
	if !s.validEmail(email) {
		return nil, invalid(MsgInvalidEmail)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, invalid(MsgPasswordTooShort)
	}

	_, err := s.Accounts.FindAccountByEmail(ctx, email)
	switch {
	case err == nil:
		l.Info("signup", "status", "rejected", "reason", "exists")
		return nil, apperr.New(apperr.ErrConflict, MsgUserExists)
	case !errors.Is(err, repo.ErrNotFound):
		return nil, internal(ctx, "auth", "signup", err)
	}

	digest, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, internal(ctx, "auth", "signup", err)
	}

	account := &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: digest,
	}
	if err := s.Accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Info("signup", "status", "rejected", "reason", "exists")
			return nil, apperr.New(apperr.ErrConflict, MsgUserExists)
		}
		return nil, internal(ctx, "auth", "signup", err)
	}

	l.Info("signup", "status", "ok", "user_id", account.ID)
	publish(ctx, s.Events, "auth", mykafka.TopicUserEvents, account.ID.String(), UserRegistered{
		Type:   "user_registered",
		UserID: account.ID.String(),
		Email:  account.Email,
	})
	return account, nil
}

// Login throttles by client before looking at the credentials.
// Throttle records one login attempt for client. It fails open when the
// limiter is unavailable.
func (s *AuthService) Throttle(ctx context.Context, client string) error {
	if s.Limiter == nil {
		return nil
	}
	l := logging.FromContext(ctx).With("svc", "auth")

	ok, err := s.Limiter.Allow(ctx, client)
	if err != nil {
		l.Warn("login_rate_limit_unavailable", "error", err)
		return nil
	}
	if !ok {
		l.Warn("login", "status", "rejected", "reason", "rate_limited")
		return apperr.New(apperr.ErrRateLimited, MsgTooManyLogins)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, client, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth")

	if err := s.Throttle(ctx, client); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	if !s.validEmail(email) {
		return nil, invalid(MsgEnterValidEmail)
	}
	if password == "" {
		return nil, invalid(MsgPasswordRequired)
	}

	account, err := s.Accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Info("login", "status", "rejected", "reason", "invalid_credentials")
			return nil, apperr.New(apperr.ErrAuthentication, MsgInvalidCredentials)
		}
		return nil, internal(ctx, "auth", "login", err)
	}

	if !s.Hasher.Check(password, account.PasswordHash) {
		l.Info("login", "status", "rejected", "reason", "invalid_credentials")
		return nil, apperr.New(apperr.ErrAuthentication, MsgInvalidCredentials)
	}

	rec, err := s.Sessions.Create(ctx, account.ID, account.Name, account.IsAdmin)
	if err != nil {
		return nil, internal(ctx, "auth", "login", err)
	}

	l.Info("login", "status", "ok", "user_id", account.ID)
	return &LoginResult{
		Token:     rec.Token,
		ExpiresAt: rec.ExpiresAt,
		AccountID: account.ID,
		Name:      account.Name,
		IsAdmin:   account.IsAdmin,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.Sessions.Destroy(ctx, token); err != nil {
		return internal(ctx, "auth", "logout", err)
	}
	return nil
}

// SessionInfo never fails; anything but a live session reads as anonymous.
func (s *AuthService) SessionInfo(ctx context.Context, token string) SessionInfo {
	rec := s.lookup(ctx, token)
	if rec == nil {
		return SessionInfo{}
	}
	id := rec.AccountID
	return SessionInfo{AccountID: &id, IsAdmin: rec.IsAdmin}
}

// UserInfo returns the account name behind a live session, or nil.
func (s *AuthService) UserInfo(ctx context.Context, token string) *string {
	rec := s.lookup(ctx, token)
	if rec == nil {
		return nil
	}

	account, err := s.Accounts.FindAccountByID(ctx, rec.AccountID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			logging.FromContext(ctx).With("svc", "auth").Warn("user_info", "status", "failed", "error", err)
		}
		return nil
	}
	return &account.Name
}

func (s *AuthService) lookup(ctx context.Context, token string) *session.Record {
	if token == "" {
		return nil
	}
	rec, err := s.Sessions.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			logging.FromContext(ctx).With("svc", "auth").Warn("session_lookup", "status", "failed", "error", err)
		}
		return nil
	}
	return rec
}

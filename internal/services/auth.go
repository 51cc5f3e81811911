package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nailsxlauren/internal/config"
	"nailsxlauren/internal/domain"
	"nailsxlauren/internal/metrics"
	"nailsxlauren/internal/util"
	apperrors "nailsxlauren/pkg/errors"

	"github.com/rs/zerolog"
)

// MsgInvalidPassword is the only login failure message clients see.
const MsgInvalidPassword = "Invalid password"

// UserStore is the admin account lookup used by login and the identifier session mode.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	TouchLastLogin(ctx context.Context, user *domain.User) error
}

// LoginPayload is the admin login form. Username is optional.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Principal is the verified admin behind a session
type Principal struct {
	Subject string
	Role    string
}

// Session is a freshly issued admin session
type Session struct {
	Value  string
	MaxAge time.Duration
	Principal
}

// AuthService implements admin login and session verification
type AuthService struct {
	users  UserStore
	tokens *util.TokenIssuer
	cfg    config.SessionConfig
	log    zerolog.Logger
}

// NewAuthService creates a new auth service. users may be nil when no
// account store is available; then only the shared admin password works.
func NewAuthService(users UserStore, tokens *util.TokenIssuer, cfg config.SessionConfig, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, cfg: cfg, log: log}
}

// CookieName returns the session cookie name for the configured mode
func (s *AuthService) CookieName() string {
	if s.cfg.CookieName != "" {
		return s.cfg.CookieName
	}
	return config.DefaultCookieName(s.cfg.Mode)
}

// Login checks credentials and issues a session
func (s *AuthService) Login(ctx context.Context, p *LoginPayload) (*Session, error) {
	if p == nil {
		p = &LoginPayload{}
	}
	username := strings.TrimSpace(p.Username)
	s.log.Info().Str("username", username).Msg("login attempt")

	var (
		principal Principal
		user      *domain.User
		err       error
	)
	if username != "" {
		user, err = s.checkAccount(ctx, username, p.Password)
		if err != nil {
			metrics.RecordAuthAttempt(false)
			return nil, err
		}
		principal = Principal{Subject: user.Username, Role: util.RoleAdmin}
	} else {
		if !util.ConstantTimeEqual(p.Password, s.cfg.AdminPassword) {
			s.log.Info().Msg("login failed: wrong admin password")
			metrics.RecordAuthAttempt(false)
			return nil, Unauthorized(MsgInvalidPassword)
		}
		if s.cfg.Mode == config.SessionModeIdentifier {
			s.log.Warn().Msg("login failed: identifier sessions need an admin account")
			metrics.RecordAuthAttempt(false)
			return nil, Unauthorized(MsgInvalidPassword)
		}
		principal = Principal{Subject: util.RoleAdmin, Role: util.RoleAdmin}
	}

	value, err := s.issue(principal, user)
	if err != nil {
		s.log.Error().Err(err).Str("subject", principal.Subject).Msg("login failed: session issue error")
		return nil, Internal("Login failed", err)
	}

	if user != nil && s.users != nil {
		if err := s.users.TouchLastLogin(ctx, user); err != nil {
			s.log.Warn().Err(err).Str("username", user.Username).Msg("failed to record last login")
		}
	}

	s.log.Info().Str("subject", principal.Subject).Str("mode", s.cfg.Mode).Msg("login successful")
	metrics.RecordAuthAttempt(true)
	return &Session{Value: value, MaxAge: s.cfg.TTL, Principal: principal}, nil
}

func (s *AuthService) checkAccount(ctx context.Context, username, password string) (*domain.User, error) {
	if s.users == nil {
		s.log.Info().Str("username", username).Msg("login failed: no account store")
		return nil, Unauthorized(MsgInvalidPassword)
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.log.Info().Str("username", username).Msg("login failed: user not found")
			return nil, Unauthorized(MsgInvalidPassword)
		}
		s.log.Error().Err(err).Str("username", username).Msg("login failed: database error")
		return nil, Internal("Login failed", err)
	}
	if !util.CheckPasswordHash(password, user.HashedPassword) {
		s.log.Info().Str("username", username).Msg("login failed: invalid password")
		return nil, Unauthorized(MsgInvalidPassword)
	}
	if !user.IsActive {
		s.log.Info().Str("username", username).Msg("login failed: user is inactive")
		return nil, Unauthorized(MsgInvalidPassword)
	}
	return user, nil
}

func (s *AuthService) issue(p Principal, user *domain.User) (string, error) {
	if s.cfg.Mode == config.SessionModeIdentifier {
		if user == nil {
			return "", fmt.Errorf("identifier session without account")
		}
		return strconv.FormatUint(uint64(user.ID), 10), nil
	}
	return s.tokens.Generate(p.Subject)
}

// Verify resolves a session cookie value to its admin
func (s *AuthService) Verify(ctx context.Context, value string) (*Principal, error) {
	if value == "" {
		return nil, util.ErrInvalidToken
	}
	if s.cfg.Mode == config.SessionModeIdentifier {
		return s.verifyIdentifier(ctx, value)
	}
	claims, err := s.tokens.Validate(value)
	if err != nil {
		return nil, err
	}
	return &Principal{Subject: claims.Subject, Role: claims.Role}, nil
}

func (s *AuthService) verifyIdentifier(ctx context.Context, value string) (*Principal, error) {
	if s.users == nil {
		return nil, fmt.Errorf("no account store")
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return nil, util.ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, uint(id))
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user %d is inactive", user.ID)
	}
	return &Principal{Subject: user.Username, Role: util.RoleAdmin}, nil
}

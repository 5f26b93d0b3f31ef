package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lukinkratas/zapis-stavy/internal/model"
	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/jwt"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/password"
)

const TokenType = "bearer"

type AuthConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// AuthService registers accounts, checks credentials and resolves bearer tokens
// back to the stored user.
type AuthService struct {
	users  UserStore
	hasher *password.Hasher
	tokens *jwt.Issuer
	cache  *expirable.LRU[string, model.User]

	// digest verified when the email is unknown so that both failure paths hash once
	dummyDigest string
}

func NewAuthService(users UserStore, hasher *password.Hasher, tokens *jwt.Issuer, cfg AuthConfig) (*AuthService, error) {
	dummy, err := hasher.Hash("zapis-stavy-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy digest: %w", err)
	}
	s := &AuthService{users: users, hasher: hasher, tokens: tokens, dummyDigest: dummy}
	if cfg.CacheSize > 0 && cfg.CacheTTL > 0 {
		s.cache = expirable.NewLRU[string, model.User](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return s, nil
}

func (s *AuthService) HashPassword(plain string) (string, error) {
	return s.hasher.Hash(plain)
}

func (s *AuthService) Register(ctx context.Context, email, plainPassword string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || plainPassword == "" {
		return nil, fmt.Errorf("%w: email and password required", appErr.ErrInvalid)
	}
	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, email, hash)
	if err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Authenticate returns the same ErrUnauthorized for an unknown email and a wrong
// password.
func (s *AuthService) Authenticate(ctx context.Context, email, plainPassword string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !appErr.IsNotFound(err) {
			return nil, err
		}
		s.hasher.Verify(plainPassword, s.dummyDigest)
		return nil, fmt.Errorf("%w: bad credentials", appErr.ErrUnauthorized)
	}
	if !s.hasher.Verify(plainPassword, user.PasswordHash) {
		return nil, fmt.Errorf("%w: bad credentials", appErr.ErrUnauthorized)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (string, error) {
	user, err := s.Authenticate(ctx, email, plainPassword)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(user.Email, user.ID)
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// CurrentUser resolves a bearer token to the user it was issued for. The email in
// the token must still belong to the user id in the token; a deleted account, a
// changed email and an email since taken by someone else are all rejected.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(claims.UserID); ok && cached.Email == claims.Subject {
			return &cached, nil
		}
	}
	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, fmt.Errorf("%w: token subject no longer exists", appErr.ErrUnauthorized)
		}
		return nil, err
	}
	if user.ID != claims.UserID {
		logutil.GetLogger(ctx).Warn("token email now belongs to another user",
			zap.String("token_user_id", claims.UserID),
			zap.String("user_id", user.ID),
		)
		return nil, fmt.Errorf("%w: token subject reassigned", appErr.ErrUnauthorized)
	}
	if s.cache != nil {
		s.cache.Add(user.ID, *user)
	}
	return user, nil
}

// Evict drops a cached principal after its account changed.
func (s *AuthService) Evict(userID string) {
	if s.cache == nil || userID == "" {
		return
	}
	s.cache.Remove(userID)
}

package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"album-service/internal/config"
	"album-service/internal/metrics"
	"album-service/internal/models"
	"album-service/pkg/utils"

	"go.uber.org/zap"
)

// AuthService issues identity tokens for Google sign-in and the admin secret
type AuthService struct {
	cfg    *config.AuthConfig
	jwt    *JWTService
	oauth  OAuthProvider
	states StateStore
	users  UserStore
	log    *zap.Logger
}

// NewAuthService accepts a nil states to skip OAuth state checks
func NewAuthService(cfg *config.AuthConfig, jwtService *JWTService, oauth OAuthProvider, states StateStore, users UserStore, log *zap.Logger) *AuthService {
	return &AuthService{
		cfg:    cfg,
		jwt:    jwtService,
		oauth:  oauth,
		states: states,
		users:  users,
		log:    log,
	}
}

// AdminIdentity is synthetic and has no User record
func AdminIdentity(cfg *config.AuthConfig) models.Identity {
	return models.Identity{
		UserID: cfg.AdminID,
		Email:  cfg.AdminEmail,
		Name:   cfg.AdminName,
		Role:   models.RoleAdmin,
	}
}

// IssueAdminToken is a bootstrap path for trusted operators, not a boundary
// for untrusted clients.
func (s *AuthService) IssueAdminToken(secret string) (string, error) {
	expected := []byte(s.cfg.AdminSecret)
	if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(secret), expected) != 1 {
		metrics.AuthAttempts.WithLabelValues("admin", "failure").Inc()
		return "", newError(ErrUnauthenticated, "Invalid secret")
	}

	token, err := s.jwt.GenerateToken(AdminIdentity(s.cfg))
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("admin", "failure").Inc()
		return "", err
	}

	metrics.AuthAttempts.WithLabelValues("admin", "success").Inc()
	return token, nil
}

// AuthURL returns the Google consent URL with a fresh state
func (s *AuthService) AuthURL(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", err
	}

	if s.states != nil {
		if err := s.states.Save(ctx, state, s.cfg.StateTTL); err != nil {
			return "", err
		}
	}
	return s.oauth.AuthCodeURL(state), nil
}

// CompleteOAuth finishes Google sign-in. Provider errors are logged and never
// returned to the caller.
func (s *AuthService) CompleteOAuth(ctx context.Context, code, state string) (string, error) {
	token, err := s.completeOAuth(ctx, code, state)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("google", "failure").Inc()
		return "", err
	}
	metrics.AuthAttempts.WithLabelValues("google", "success").Inc()
	return token, nil
}

func (s *AuthService) completeOAuth(ctx context.Context, code, state string) (string, error) {
	if code == "" {
		return "", newError(ErrOAuth, "Authorization code is missing")
	}

	if s.states != nil {
		ok, err := s.states.Consume(ctx, state)
		if err != nil {
			return "", wrapError(ErrOAuth, "Authentication with Google failed", err)
		}
		if !ok {
			return "", newError(ErrOAuth, "Invalid state")
		}
	}

	profile, err := s.oauth.FetchProfile(ctx, code)
	if err != nil {
		s.log.Error("Google OAuth exchange failed", zap.Error(err))
		return "", wrapError(ErrOAuth, "Authentication with Google failed", err)
	}

	user, err := s.users.Upsert(ctx, &models.User{
		Email:   utils.NormalizeEmail(profile.Email),
		Name:    profile.Name,
		Picture: profile.Picture,
	})
	if err != nil {
		return "", fmt.Errorf("error saving user: %w", err)
	}

	return s.jwt.GenerateToken(models.Identity{
		UserID:  user.UserID,
		Email:   user.Email,
		Name:    user.Name,
		Picture: user.Picture,
	})
}

// Verify resolves a bearer token to the caller's identity
func (s *AuthService) Verify(token string) (models.Identity, error) {
	claims, err := s.jwt.VerifyToken(token)
	if err != nil {
		return models.Identity{}, err
	}
	return claims.Identity(), nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

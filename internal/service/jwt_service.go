package service

import (
	"fmt"
	"time"

	"album-service/internal/config"
	"album-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type JWTService struct {
	secretKey []byte
	expiry    time.Duration
	issuer    string
	now       func() time.Time
}

func NewJWTService(cfg *config.AuthConfig) *JWTService {
	return &JWTService{
		secretKey: []byte(cfg.JWTSecret),
		expiry:    cfg.TokenExpiry,
		issuer:    cfg.Issuer,
		now:       time.Now,
	}
}

// WithClock replaces the time source used to issue and check tokens
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

func (s *JWTService) GenerateToken(identity models.Identity) (string, error) {
	issuedAt := s.now()
	claims := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.expiry)),
		},
		UserID:  identity.UserID,
		Email:   identity.Email,
		Name:    identity.Name,
		Picture: identity.Picture,
		Role:    identity.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return tokenString, nil
}

func (s *JWTService) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&models.Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		return nil, wrapError(ErrUnauthenticated, "Invalid or expired token", err)
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, newError(ErrUnauthenticated, "Invalid token claims")
	}
	return claims, nil
}

package models

import "github.com/golang-jwt/jwt/v5"

const RoleAdmin = "admin"

// Identity is the caller resolved from a verified token
type Identity struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role,omitempty"`
}

// IsAdmin reports whether the identity is the synthetic admin. The admin has
// no User record.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role,omitempty"`
}

func (c *Claims) Identity() Identity {
	return Identity{
		UserID:  c.UserID,
		Email:   c.Email,
		Name:    c.Name,
		Picture: c.Picture,
		Role:    c.Role,
	}
}

type AdminLoginRequest struct {
	Secret string `json:"secret"`
}

package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the two actor roles the alumni store distinguishes.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleGuest UserRole = "guest"
)

// IsAdmin reports whether the role may perform privileged operations.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// Session is the signed-in identity. It is stored apart from the alumni collection.
type Session struct {
	Role  UserRole `json:"role"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
}

// LoginRequest selects a role template; credentials are only checked for admin.
type LoginRequest struct {
	Role     UserRole `json:"role" validate:"required,oneof=admin guest"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Password string   `json:"password"`
}

// LoginResponse returns the access token and the session it represents.
type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   int64   `json:"expires_in"`
	Session     Session `json:"session"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Role  UserRole `json:"role"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	jwt.RegisteredClaims
}

package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// FitledgerClaims represents the JWT claims issued by the identity service
type FitledgerClaims struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name,omitempty"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Role constants
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

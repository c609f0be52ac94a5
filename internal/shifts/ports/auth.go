package ports

import "github.com/google/uuid"

type AuthClaims struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

type TokenVerifier interface {
	ParseAndValidate(raw string) (AuthClaims, error)
}

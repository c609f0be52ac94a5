package ports

import "github.com/google/uuid"

type AuthClaims struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// TokenVerifier validates bearer tokens minted by the identity service.
type TokenVerifier interface {
	ParseAndValidate(raw string) (AuthClaims, error)
}

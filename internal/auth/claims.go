package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// Claims are the only supported JWT claims shape for this service.
// Subject carries the user id; ID (jti) makes every issued token unique.
// Workspace and role are deliberately absent: membership is resolved per request.
type Claims struct {
	jwt.RegisteredClaims

	TokenType TokenType `json:"token_type"`
}

package models

import (
	"time"
)

// TokenType distinguishes the two token kinds inside the signed payload.
// They are not interchangeable: a refresh token must never pass where an
// access token is expected and vice versa.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Token issued by the token service
type IssuedToken struct {
	Type      TokenType
	Value     string
	ExpiresAt time.Time
}

// Access and refresh tokens issued together at login or refresh time
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

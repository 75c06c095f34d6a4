// Package token issues and verifies signed bearer tokens.
//
// The service is stateless: it holds key material only, never a database
// handle. Nothing issued here can be revoked before its natural expiry, so
// logout only clears the client held cookie. Known limitation.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/accounts/internal/apperrors"
	"github.com/nkiryanov/accounts/internal/models"
)

const (
	defaultSigningMethod   = "HS256"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 24 * time.Hour
)

// Claims signed into every token. Type makes access and refresh tokens
// distinguishable inside the payload itself.
type Claims struct {
	jwt.RegisteredClaims
	Type models.TokenType `json:"typ"`
}

type Config struct {
	// JWT signing algorithm name, e.g. HS256 or RS256
	// If not set the default is used
	Alg string

	// Signing key. Shared secret for the HMAC family, PEM encoded private
	// key for RSA/ECDSA/EdDSA.
	// Required to be set
	SecretKey string

	// Verification key for asymmetric algorithms, PEM encoded public key.
	// Ignored for the HMAC family.
	PublicKey string

	// Access and refresh token lifetimes
	// If not set the default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service issues and verifies tokens. The algorithm and keys are fixed at
// construction for the process lifetime, there is no per call negotiation.
// Safe for concurrent use: all fields are immutable after New.
type Service struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*Service, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTokenTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = defaultRefreshTokenTTL
	}

	method := jwt.GetSigningMethod(cfg.Alg)
	if method == nil {
		return nil, fmt.Errorf("unknown signing method: %q", cfg.Alg)
	}

	signKey, verifyKey, err := parseKeys(method, cfg.SecretKey, cfg.PublicKey)
	if err != nil {
		return nil, err
	}

	return &Service{
		method:     method,
		signKey:    signKey,
		verifyKey:  verifyKey,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func parseKeys(method jwt.SigningMethod, secret string, public string) (signKey any, verifyKey any, err error) {
	switch method.(type) {
	case *jwt.SigningMethodHMAC:
		key := []byte(secret)
		return key, key, nil

	case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
		priv, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(secret))
		if err != nil {
			return nil, nil, fmt.Errorf("error while parsing rsa private key. Err: %w", err)
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(public))
		if err != nil {
			return nil, nil, fmt.Errorf("error while parsing rsa public key. Err: %w", err)
		}
		return priv, pub, nil

	case *jwt.SigningMethodECDSA:
		priv, err := jwt.ParseECPrivateKeyFromPEM([]byte(secret))
		if err != nil {
			return nil, nil, fmt.Errorf("error while parsing ec private key. Err: %w", err)
		}
		pub, err := jwt.ParseECPublicKeyFromPEM([]byte(public))
		if err != nil {
			return nil, nil, fmt.Errorf("error while parsing ec public key. Err: %w", err)
		}
		return priv, pub, nil

	case *jwt.SigningMethodEd25519:
		priv, err := jwt.ParseEdPrivateKeyFromPEM([]byte(secret))
		if err != nil {
			return nil, nil, fmt.Errorf("error while parsing ed25519 private key. Err: %w", err)
		}
		pub, err := jwt.ParseEdPublicKeyFromPEM([]byte(public))
		if err != nil {
			return nil, nil, fmt.Errorf("error while parsing ed25519 public key. Err: %w", err)
		}
		return priv, pub, nil

	default:
		return nil, nil, fmt.Errorf("unsupported signing method: %q", method.Alg())
	}
}

// Create issues a signed token for the subject. Zero override means the
// configured lifetime for the token type. The expiry must land strictly
// after the issue time, validated here and not left to the verifier.
func (s *Service) Create(subject string, typ models.TokenType, override time.Duration) (models.IssuedToken, error) {
	var issued models.IssuedToken

	ttl := override
	if ttl == 0 {
		switch typ {
		case models.TokenTypeAccess:
			ttl = s.accessTTL
		case models.TokenTypeRefresh:
			ttl = s.refreshTTL
		default:
			return issued, fmt.Errorf("unknown token type: %q", typ)
		}
	}

	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	if !expiresAt.After(now) {
		return issued, apperrors.New(apperrors.KindNotImplemented, "Invalid expiration delta was provided")
	}

	token := jwt.NewWithClaims(
		s.method,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   subject,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Type: typ,
		},
	)

	signed, err := token.SignedString(s.signKey)
	if err != nil {
		return issued, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Type: typ, Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature and expiry and returns the claims.
// Malformed token, signature mismatch and expiry all fail with the same
// Unauthorized error so a caller can't use it as an oracle.
func (s *Service) Verify(tokenString string) (Claims, error) {
	claims := Claims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (any, error) { return s.verifyKey, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, apperrors.ErrInvalidToken.Wrap(err)
	}

	return claims, nil
}

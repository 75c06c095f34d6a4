// Package auth implements the session protocol: password login and the
// refresh rotation over stateless tokens issued by the token service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/accounts/internal/apperrors"
	"github.com/nkiryanov/accounts/internal/models"
	"github.com/nkiryanov/accounts/internal/repository"
	"github.com/nkiryanov/accounts/internal/service/token"
)

// TokenService is the part of the token service the session protocol needs
type TokenService interface {
	Create(subject string, typ models.TokenType, override time.Duration) (models.IssuedToken, error)
	Verify(tokenString string) (token.Claims, error)
}

type Service struct {
	tokens  TokenService
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(tokens TokenService, hasher PasswordHasher, storage repository.Storage) (*Service, error) {
	if tokens == nil || storage == nil {
		return nil, errors.New("tokens and storage must not be nil")
	}

	if hasher == nil {
		hasher = DefaultHasher
	}

	return &Service{
		tokens:  tokens,
		hasher:  hasher,
		storage: storage,
	}, nil
}

// Login checks the password against the stored hash and issues a fresh pair.
// Returns apperrors.ErrUserNotFound for unknown login and
// apperrors.ErrInvalidPassword on hash mismatch.
func (s *Service) Login(ctx context.Context, login string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetByLogin(ctx, login)
	if err != nil {
		return pair, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return pair, apperrors.ErrInvalidPassword
	}

	return s.issuePair(user.ID.String())
}

// Refresh implements full rotation: the presented refresh token is verified
// and a brand new access and refresh pair is issued for the same subject.
// The superseded token stays valid until its expiry, consistent with the
// stateless token design.
func (s *Service) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	claims, err := s.tokens.Verify(refresh)
	if err != nil {
		return pair, err
	}

	if claims.Type != models.TokenTypeRefresh {
		return pair, apperrors.ErrInvalidToken
	}

	return s.issuePair(claims.Subject)
}

func (s *Service) issuePair(subject string) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := s.tokens.Create(subject, models.TokenTypeAccess, 0)
	if err != nil {
		return pair, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	refresh, err := s.tokens.Create(subject, models.TokenTypeRefresh, 0)
	if err != nil {
		return pair, fmt.Errorf("error while issuing refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

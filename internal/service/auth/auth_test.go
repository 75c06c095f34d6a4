package auth

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/accounts/internal/apperrors"
	"github.com/nkiryanov/accounts/internal/models"
	"github.com/nkiryanov/accounts/internal/repository/postgres"
	"github.com/nkiryanov/accounts/internal/service/token"
	"github.com/nkiryanov/accounts/internal/testutil"
)

func Test_AuthService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	tokens, err := token.New(token.Config{SecretKey: "test-secret-key"})
	require.NoError(t, err)

	// Run fn with auth service bound to a rolled back transaction.
	// A user with known password is precreated for login tests.
	inTx := func(t *testing.T, fn func(s *Service, user models.User)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			s, err := NewService(tokens, DefaultHasher, storage)
			require.NoError(t, err)

			hash, err := DefaultHasher.Hash("password123")
			require.NoError(t, err)
			user, err := storage.User().Create(t.Context(), "test-user", hash)
			require.NoError(t, err)

			fn(s, user)
		})
	}

	t.Run("NewService", func(t *testing.T) {
		t.Run("nil tokens fail", func(t *testing.T) {
			_, err := NewService(nil, DefaultHasher, postgres.NewStorage(pg.Pool))
			require.Error(t, err)
		})

		t.Run("nil storage fail", func(t *testing.T) {
			_, err := NewService(tokens, DefaultHasher, nil)
			require.Error(t, err)
		})

		t.Run("nil hasher defaults", func(t *testing.T) {
			s, err := NewService(tokens, nil, postgres.NewStorage(pg.Pool))
			require.NoError(t, err)
			require.Equal(t, DefaultHasher, s.hasher)
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("login ok", func(t *testing.T) {
			inTx(t, func(s *Service, user models.User) {
				pair, err := s.Login(t.Context(), "test-user", "password123")

				require.NoError(t, err, "login with correct credentials should succeed")
				assert.NotEmpty(t, pair.Access.Value)
				assert.NotEmpty(t, pair.Refresh.Value)
				assert.Equal(t, models.TokenTypeAccess, pair.Access.Type)
				assert.Equal(t, models.TokenTypeRefresh, pair.Refresh.Type)

				claims, err := tokens.Verify(pair.Access.Value)
				require.NoError(t, err)
				assert.Equal(t, user.ID.String(), claims.Subject, "token subject must be the user id")
			})
		})

		t.Run("login case insensitive", func(t *testing.T) {
			inTx(t, func(s *Service, _ models.User) {
				_, err := s.Login(t.Context(), "Test-User", "password123")

				require.NoError(t, err, "login lookup must ignore case")
			})
		})

		t.Run("wrong password fail", func(t *testing.T) {
			inTx(t, func(s *Service, _ models.User) {
				_, err := s.Login(t.Context(), "test-user", "wrong-password")

				require.ErrorIs(t, err, apperrors.ErrInvalidPassword)
			})
		})

		t.Run("unknown user fail", func(t *testing.T) {
			inTx(t, func(s *Service, _ models.User) {
				_, err := s.Login(t.Context(), "nobody", "password123")

				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("rotates the pair", func(t *testing.T) {
			inTx(t, func(s *Service, user models.User) {
				pair, err := s.Login(t.Context(), "test-user", "password123")
				require.NoError(t, err)

				rotated, err := s.Refresh(t.Context(), pair.Refresh.Value)

				require.NoError(t, err, "refresh with valid token should succeed")
				assert.NotEqual(t, pair.Access.Value, rotated.Access.Value, "access token must be new")
				assert.NotEqual(t, pair.Refresh.Value, rotated.Refresh.Value, "refresh token must be new")

				claims, err := tokens.Verify(rotated.Refresh.Value)
				require.NoError(t, err)
				assert.Equal(t, user.ID.String(), claims.Subject, "subject must survive rotation")
			})
		})

		t.Run("access token rejected", func(t *testing.T) {
			inTx(t, func(s *Service, _ models.User) {
				pair, err := s.Login(t.Context(), "test-user", "password123")
				require.NoError(t, err)

				_, err = s.Refresh(t.Context(), pair.Access.Value)

				require.ErrorIs(t, err, apperrors.ErrInvalidToken, "access token must not refresh a session")
			})
		})

		t.Run("garbage token rejected", func(t *testing.T) {
			inTx(t, func(s *Service, _ models.User) {
				_, err := s.Refresh(t.Context(), "not-a-token")

				require.ErrorIs(t, err, apperrors.ErrInvalidToken)
			})
		})

		t.Run("expired token rejected", func(t *testing.T) {
			inTx(t, func(s *Service, user models.User) {
				shortLived, err := tokens.Create(user.ID.String(), models.TokenTypeRefresh, time.Second)
				require.NoError(t, err)

				time.Sleep(2 * time.Second)

				_, err = s.Refresh(t.Context(), shortLived.Value)
				require.ErrorIs(t, err, apperrors.ErrInvalidToken)
			})
		})
	})
}

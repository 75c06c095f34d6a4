package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/accounts/internal/db"
	"github.com/nkiryanov/accounts/internal/handlers"
	"github.com/nkiryanov/accounts/internal/handlers/middleware"
	"github.com/nkiryanov/accounts/internal/logger"
	"github.com/nkiryanov/accounts/internal/repository/postgres"
	"github.com/nkiryanov/accounts/internal/service/auth"
	"github.com/nkiryanov/accounts/internal/service/token"
	"github.com/nkiryanov/accounts/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenService, err := token.New(token.Config{
		Alg:        c.TokenAlg,
		SecretKey:  c.SecretKey,
		PublicKey:  c.PublicKey,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token service. Err: %w", err)
	}

	userService := user.NewService(auth.DefaultHasher, storage)
	authService, err := auth.NewService(tokenService, auth.DefaultHasher, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	mux := handlers.NewRouter(
		authService,
		userService,
		middleware.Auth(tokenService, userService),
		l,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     l,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/accounts/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultTokenAlg     = "HS256"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the accounts service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Signing key for tokens. Shared secret for HMAC algorithms or PEM
	// encoded private key for the asymmetric ones
	SecretKey string

	// PEM encoded public key, required for asymmetric token algorithms only
	PublicKey string

	// Token signing algorithm, e.g. HS256 or RS256
	TokenAlg string

	// Token lifetimes. Zero means the service defaults
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		TokenAlg:    defaultTokenAlg,
		Environment: defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}

	setDuration := func(o *time.Duration, key string) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			parsed, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("error while parsing %s duration. Err: %w", key, err)
			}
			*o = parsed
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":       setString(&c.ListenAddr),
		"DATABASE_URI":      setString(&c.DatabaseDSN),
		"SECRET_KEY":        setString(&c.SecretKey),
		"PUBLIC_KEY":        setString(&c.PublicKey),
		"TOKEN_ALGORITHM":   setString(&c.TokenAlg),
		"ACCESS_TOKEN_TTL":  setDuration(&c.AccessTokenTTL, "ACCESS_TOKEN_TTL"),
		"REFRESH_TOKEN_TTL": setDuration(&c.RefreshTokenTTL, "REFRESH_TOKEN_TTL"),
		"LOG_LEVEL":         setString(&c.LogLevel),
		"ENVIRONMENT":       setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("accounts", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Token signing key")
	fs.StringVarP(&c.PublicKey, "public-key", "p", c.PublicKey, "Token verification key (asymmetric algorithms)")
	fs.StringVarP(&c.TokenAlg, "token-alg", "t", c.TokenAlg, "Token signing algorithm (HS256, RS256, ES256, EdDSA, ...)")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "Refresh token lifetime")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}

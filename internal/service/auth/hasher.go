package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

// Argon2id parameters
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonSaltLen = 16
	argonKeyLen  = 32
)

var ErrPasswordNotMatch = errors.New("password does not match hash")

// Argon2id password hasher producing PHC formatted strings like
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
// Will be used as the default if caller does not provide its own
type Argon2Hasher struct{}

var DefaultHasher PasswordHasher = Argon2Hasher{}

func (h Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("error while generating salt. Err: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

func (h Argon2Hasher) Compare(hashedPassword string, password string) error {
	memory, time, threads, salt, key, err := decodeHash(hashedPassword)
	if err != nil {
		return err
	}

	other := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(key)))

	if subtle.ConstantTimeCompare(key, other) != 1 {
		return ErrPasswordNotMatch
	}

	return nil
}

func decodeHash(encoded string) (memory uint32, time uint32, threads uint8, salt []byte, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, errors.New("not an argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed argon2id hash: %w", err)
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, fmt.Errorf("unsupported argon2 version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed argon2id hash: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed argon2id salt: %w", err)
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed argon2id key: %w", err)
	}

	return memory, time, threads, salt, key, nil
}

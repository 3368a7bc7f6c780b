package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for password hashing
const (
	// Argon2Time - number of iterations (time cost)
	Argon2Time = 1
	// Argon2Memory - memory in KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - number of parallel threads
	Argon2Threads = 4
	// Argon2KeyLen - derived key length in bytes
	Argon2KeyLen = 32
	// SaltSize - salt size in bytes
	SaltSize = 16
)

// HashPassword derives an argon2id digest from the password with a
// fresh random salt and encodes both as "base64(salt)$base64(key)".
// The plaintext password is never stored.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)

	return base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(key), nil
}

// VerifyPassword checks the password against a stored digest produced
// by HashPassword. The comparison is constant-time.
func VerifyPassword(password, encoded string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	saltPart, keyPart, ok := strings.Cut(encoded, "$")
	if !ok {
		return fmt.Errorf("malformed password hash")
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltPart)
	if err != nil {
		return fmt.Errorf("failed to decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(keyPart)
	if err != nil {
		return fmt.Errorf("failed to decode key: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)

	if subtle.ConstantTimeCompare(computed, key) != 1 {
		return fmt.Errorf("invalid password")
	}

	return nil
}

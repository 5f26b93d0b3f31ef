// Package password hashes and verifies account passwords.
//
// New digests are argon2id in PHC string format unless the hasher is configured for
// bcrypt. Verify accepts either form so existing digests keep working after the
// algorithm is switched.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// Argon2id parameters (OWASP recommended minimum).
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

var (
	ErrUnknownAlgorithm = errors.New("unknown password algorithm")
	errInvalidHash      = errors.New("invalid hash format")
)

type Hasher struct {
	algorithm  string
	bcryptCost int
}

func NewHasher(algorithm string) (*Hasher, error) {
	switch algorithm {
	case "", AlgorithmArgon2id:
		return &Hasher{algorithm: AlgorithmArgon2id}, nil
	case AlgorithmBcrypt:
		return &Hasher{algorithm: AlgorithmBcrypt, bcryptCost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
	}
}

func (h *Hasher) Algorithm() string {
	return h.algorithm
}

func (h *Hasher) Hash(plain string) (string, error) {
	if h.algorithm == AlgorithmBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
		if err != nil {
			return "", err
		}
		return string(hashed), nil
	}
	return hashArgon2id(plain)
}

// Verify never returns an error: a malformed digest simply does not match.
func (h *Hasher) Verify(plain, digest string) bool {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		ok, err := verifyArgon2id(plain, digest)
		return err == nil && ok
	case strings.HasPrefix(digest, "$2a$"), strings.HasPrefix(digest, "$2b$"), strings.HasPrefix(digest, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
	default:
		return false
	}
}

func hashArgon2id(plain string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(plain), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(plain, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != AlgorithmArgon2id {
		return false, errInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, errInvalidHash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, errInvalidHash
	}
	if memory == 0 || time == 0 || threads == 0 {
		return false, errInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, errInvalidHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, errInvalidHash
	}

	computed := argon2.IDKey([]byte(plain), salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// Package auth provides password hashing, session tokens and the
// authenticator that binds identities to request scopes.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// Params are the Argon2id cost parameters.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns the OWASP 2024 recommended minimum for Argon2id.
func DefaultParams() Params {
	return Params{
		MemoryKiB:   64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Upper bounds accepted when decoding a stored hash. Hash strings come from
// the database, but a tampered row must not pin the CPU or exhaust memory.
const (
	maxMemoryKiB   = 1024 * 1024
	maxIterations  = 16
	maxParallelism = 32
	maxKeyLength   = 128
)

const dummyPassword = "pubdocs-timing-equalizer"

// Hasher hashes and verifies passwords with salted Argon2id.
// It is the only place password hashes are produced.
type Hasher struct {
	params Params

	dummyOnce sync.Once
	dummy     string
}

// NewHasher creates a Hasher. Zero fields in p fall back to DefaultParams.
func NewHasher(p Params) *Hasher {
	def := DefaultParams()
	if p.MemoryKiB == 0 {
		p.MemoryKiB = def.MemoryKiB
	}
	if p.Iterations == 0 {
		p.Iterations = def.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = def.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = def.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = def.KeyLength
	}
	return &Hasher{params: p}
}

// Params returns the cost parameters new hashes are produced with.
func (h *Hasher) Params() Params {
	return h.params
}

// Hash creates an Argon2id hash of the plaintext with a fresh random salt.
// Returns the hash in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		h.params.Iterations,
		h.params.MemoryKiB,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches the encoded hash.
// A malformed or unsupported hash is a mismatch, never an error.
func (h *Hasher) Verify(plaintext, encodedHash string) bool {
	p, salt, expected, err := decodeHash(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(plaintext),
		salt,
		p.Iterations,
		p.MemoryKiB,
		p.Parallelism,
		uint32(len(expected)), // #nosec G115 -- bounded by decodeHash
	)

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// DummyHash returns a valid hash of a throwaway password produced with the
// hasher's own parameters. Verifying against it costs the same as verifying
// a real user's hash.
func (h *Hasher) DummyHash() string {
	h.dummyOnce.Do(func() {
		dummy, err := h.Hash(dummyPassword)
		if err != nil {
			// Verification against a malformed hash is still a mismatch.
			dummy = "$argon2id$invalid"
		}
		h.dummy = dummy
	})
	return h.dummy
}

// decodeHash parses a PHC string produced by Hash.
func decodeHash(encodedHash string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return p, nil, nil, ErrInvalidHash
	}

	if parts[1] != "argon2id" {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatibleVersion
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if p.MemoryKiB == 0 || p.MemoryKiB > maxMemoryKiB ||
		p.Iterations == 0 || p.Iterations > maxIterations ||
		p.Parallelism == 0 || p.Parallelism > maxParallelism {
		return p, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrInvalidHash
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxKeyLength {
		return p, nil, nil, ErrInvalidHash
	}

	p.SaltLength = uint32(len(salt)) // #nosec G115 -- decoded from a short string
	p.KeyLength = uint32(len(key))   // #nosec G115 -- bounded above

	return p, salt, key, nil
}

// QuickHash returns a SHA256 hash of the input for log correlation.
// This is NOT for password storage.
func QuickHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16]) // Use first 16 bytes (32 hex chars)
}

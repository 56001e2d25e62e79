package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Scheme     = "pbkdf2-sha256"
	pbkdf2Iterations = 29000
	pbkdf2SaltLen    = 16
	pbkdf2KeyLen     = 32

	MinPasswordLength = 8
	MaxPasswordLength = 100
)

// PasswordHasher hashes and verifies plaintext passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// PBKDF2Hasher produces modular-crypt strings of the form
// $pbkdf2-sha256$<rounds>$<salt>$<checksum>, with salt and checksum in
// the adapted base64 alphabet ('.' for '+', no padding). Rounds are read
// back from the stored string, so older hashes keep verifying when the
// default iteration count changes.
type PBKDF2Hasher struct {
	iterations int
}

func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{iterations: pbkdf2Iterations}
}

// NewPBKDF2HasherWithIterations is meant for tests that cannot afford the
// production work factor.
func NewPBKDF2HasherWithIterations(iterations int) *PBKDF2Hasher {
	if iterations <= 0 {
		iterations = pbkdf2Iterations
	}
	return &PBKDF2Hasher{iterations: iterations}
}

func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, h.iterations, pbkdf2KeyLen, sha256.New)
	return fmt.Sprintf("$%s$%d$%s$%s", pbkdf2Scheme, h.iterations, ab64Encode(salt), ab64Encode(key)), nil
}

// Verify never fails loudly: any malformed stored value is a mismatch.
func (h *PBKDF2Hasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != pbkdf2Scheme {
		return false
	}
	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return false
	}
	salt, err := ab64Decode(parts[3])
	if err != nil {
		return false
	}
	want, err := ab64Decode(parts[4])
	if err != nil || len(want) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(password), salt, rounds, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func ab64Encode(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}

// ValidatePasswordStrength enforces length and character class rules.
func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters long", MaxPasswordLength)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}
	return nil
}

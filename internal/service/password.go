package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const legacyPrefix = "$pbkdf2-sha256$"

// maxPasswordBytes is bcrypt's input limit. Validator tags count runes, so
// multibyte passwords are checked here as well.
const maxPasswordBytes = 72

func checkPasswordLength(field, plain string) error {
	if len(plain) > maxPasswordBytes {
		return invalidField(field, "password must be at most 72 bytes")
	}
	return nil
}

// PasswordHasher hashes new credentials with bcrypt and still verifies the
// PBKDF2-SHA256 credentials imported from the previous system.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher builds a hasher. Out of range costs fall back to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt credential.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches stored. Malformed credentials never match.
func (h *PasswordHasher) Verify(plain, stored string) bool {
	if strings.HasPrefix(stored, legacyPrefix) {
		return verifyLegacy(plain, stored)
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

// NeedsRehash reports whether stored should be replaced by a fresh bcrypt hash.
func (h *PasswordHasher) NeedsRehash(stored string) bool {
	cost, err := bcrypt.Cost([]byte(stored))
	if err != nil {
		return true
	}
	return cost != h.cost
}

// verifyLegacy checks "$pbkdf2-sha256$<rounds>$<salt>$<checksum>" where salt
// and checksum use the dot-for-plus base64 alphabet without padding.
func verifyLegacy(plain, stored string) bool {
	parts := strings.Split(strings.TrimPrefix(stored, legacyPrefix), "$")
	if len(parts) != 3 {
		return false
	}
	rounds, err := strconv.Atoi(parts[0])
	if err != nil || rounds < 1 {
		return false
	}
	salt, err := decodeAB64(parts[1])
	if err != nil {
		return false
	}
	checksum, err := decodeAB64(parts[2])
	if err != nil || len(checksum) == 0 {
		return false
	}
	derived := pbkdf2.Key([]byte(plain), salt, rounds, len(checksum), sha256.New)
	return subtle.ConstantTimeCompare(derived, checksum) == 1
}

func decodeAB64(value string) ([]byte, error) {
	value = strings.TrimRight(strings.ReplaceAll(value, ".", "+"), "=")
	return base64.RawStdEncoding.DecodeString(value)
}

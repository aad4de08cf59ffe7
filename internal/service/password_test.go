package service

import (
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func legacyCredential(plain string, salt []byte, rounds int) string {
	ab64 := func(b []byte) string {
		return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
	}
	checksum := pbkdf2.Key([]byte(plain), salt, rounds, 32, sha256.New)
	return "$pbkdf2-sha256$" + strconv.Itoa(rounds) + "$" + ab64(salt) + "$" + ab64(checksum)
}

func TestPasswordHasherHashAndVerify(t *testing.T) {
	h := testHasher()

	first, err := h.Hash("s3cret!")
	require.NoError(t, err)
	second, err := h.Hash("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "every hash carries a fresh salt")
	assert.True(t, h.Verify("s3cret!", first))
	assert.False(t, h.Verify("wrong", first))
	assert.False(t, h.NeedsRehash(first))
}

func TestPasswordHasherMalformedCredentials(t *testing.T) {
	h := testHasher()
	for _, stored := range []string{
		"",
		"plaintext",
		"$2a$04$short",
		"$pbkdf2-sha256$",
		"$pbkdf2-sha256$abc$c2FsdA$c2FsdA",
		"$pbkdf2-sha256$1000$***$c2FsdA",
		"$pbkdf2-sha256$1000$c2FsdA",
	} {
		assert.False(t, h.Verify("anything", stored), stored)
		assert.True(t, h.NeedsRehash(stored), stored)
	}
}

func TestPasswordHasherVerifiesLegacyCredential(t *testing.T) {
	h := testHasher()
	salt := []byte{0xfb, 0xef, 0xbe, 0x01, 0x02, 0x03, 0xfa, 0xfb, 0xfc, 0xfd, 0xfe, 0xff, 0x10, 0x20, 0x30, 0x40}
	stored := legacyCredential("legacy-pass", salt, 1000)
	require.True(t, strings.HasPrefix(stored, "$pbkdf2-sha256$1000$"))
	require.Contains(t, stored, ".", "salt exercises the dot alphabet")

	assert.True(t, h.Verify("legacy-pass", stored))
	assert.False(t, h.Verify("legacy-pass ", stored))
	assert.True(t, h.NeedsRehash(stored))
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	assert.Equal(t, 10, NewPasswordHasher(0).cost)
	assert.Equal(t, 10, NewPasswordHasher(99).cost)
	assert.Equal(t, 12, NewPasswordHasher(12).cost)
}

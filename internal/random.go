package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
)

const refreshTokenRawSize = 32

// NewRefreshToken returns an opaque refresh token: 32 random bytes,
// base64url without padding. Clients must treat it as an uninterpreted
// string; the server stores only its digest.
func NewRefreshToken() (string, error) {
	var raw [refreshTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// TokenDigest is the storage key for a refresh token. Raw token strings
// never reach Redis.
func TokenDigest(token string) [32]byte {
	return sha256.Sum256([]byte(token))
}

// DigestString renders a digest in the fixed-width form used in Redis keys
// and replaced-by references.
func DigestString(digest [32]byte) string {
	return base64.RawURLEncoding.EncodeToString(digest[:])
}

// HashCode hashes a one-time code for storage and comparison.
func HashCode(code string) [32]byte {
	return sha256.Sum256([]byte(code))
}

// NewOTP generates a numeric one-time code with uniform digits.
func NewOTP(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid otp digits")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

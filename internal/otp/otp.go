// Package otp generates and checks the short-lived numeric codes used for
// email verification and password resets.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	min  = 100000
	span = 900000
)

// Generate returns a 6-digit code drawn uniformly from [100000, 999999] using
// a cryptographically secure source.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+min), nil
}

// ExpiryFrom returns the expiry timestamp for a code issued at now.
func ExpiryFrom(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl)
}

// Expired reports whether a code's expiry has passed. The comparison is
// strict: a code checked exactly at its expiry instant is still valid.
func Expired(now, expiry time.Time) bool {
	return now.After(expiry)
}

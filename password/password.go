// Package password wraps bcrypt hashing and verification for user credentials.
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a bcrypt hash of a random value. Login compares against it when
// the phone number is unknown, so unknown-phone and wrong-password attempts
// take the same amount of work.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Hash returns the bcrypt hash of a plaintext password.
func Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches the stored bcrypt hash.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// VerifyDummy burns the same work as a real comparison and always fails.
func VerifyDummy(plain string) bool {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plain))
	return false
}

package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrCorruptHash signals that a stored password hash is not a valid bcrypt
// string. Callers treat it as a verification failure, not a crash.
var ErrCorruptHash = errors.New("corrupt password hash")

// HashPassword returns a bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash and a plain password. A mismatch
// returns (false, nil); a malformed stored hash returns (false,
// ErrCorruptHash).
func VerifyPassword(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrCorruptHash
	}
}

package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPinTooShort is returned by HashPin for PINs under MinPinLength.
var ErrPinTooShort = errors.New("pin too short")

// MinPinLength is the shortest PIN accepted before hashing.
const MinPinLength = 4

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashPin hashes a quick-login PIN.  bcrypt salts every call, so the PIN
// hash is independent from the password hash even for equal inputs.  An
// empty PIN yields a nil hash: clearing, not hashing "".
func HashPin(pin string, cost int) (*string, error) {
	if pin == "" {
		return nil, nil
	}
	if len([]rune(pin)) < MinPinLength {
		return nil, ErrPinTooShort
	}
	h, err := HashPassword(pin, cost)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

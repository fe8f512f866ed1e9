package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt work factor; matches the cost the rest of the system was
// provisioned with, raising it invalidates no stored hashes but slows
// every login.
const bcryptCost = 10

// HashPassword returns a salted bcrypt hash of plain. Equal inputs
// produce different hashes across calls.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches hash. A malformed hash is
// treated as a mismatch, never an error.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

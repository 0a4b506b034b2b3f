package services

import (
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashSecret hashes a password or raw key with bcrypt. The salt is embedded
// in the returned hash.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifySecret reports whether secret matches hash. bcrypt's comparison is
// constant-time with respect to the secret.
func VerifySecret(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

package utils

import "golang.org/x/crypto/bcrypt"

// HashPIN hashes a patron's library-card PIN for storage.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPIN(hash, pin string) bool {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return false
	}
	return true
}

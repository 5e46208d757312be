package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// GenerateCode returns a random lowercase hex string of 2n characters,
// used for record ids and payment reference codes.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return hex.EncodeToString(byt), nil
}

// GenerateDigits returns a random string of n decimal digits, used for
// patron card numbers.
func GenerateDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}

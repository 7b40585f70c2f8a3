package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// GenerateRandomDigits returns a string of n cryptographically random decimal digits,
// keeping leading zeros (e.g. "0427" for n=4).
func GenerateRandomDigits(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("digit count must be positive")
	}
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to read random digit: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

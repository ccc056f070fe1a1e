package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const digits = "0123456789"

// GenerateNumericCode returns a uniformly random decimal string of the given length.
// Leading zeros are allowed.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	max := big.NewInt(int64(len(digits)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		result[i] = digits[n.Int64()]
	}
	return string(result), nil
}

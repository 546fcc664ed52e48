package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	referenceChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	referenceLength = 8
)

// generateReference creates a human-readable reference in the format
// "BK-XXXXXXXX" from a cryptographic source.
func generateReference() (string, error) {
	result := make([]byte, referenceLength)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		result[i] = referenceChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

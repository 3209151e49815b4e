package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// SecretLength is the fixed length of generated one-time secrets.
const SecretLength = 8

const (
	letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	digits  = "23456789"
)

// GeneratePlaintext produces a one-time secret: fixed length, mixed
// alphanumeric with at least one letter and one digit, drawn from
// crypto/rand. Ambiguous glyphs (0/O, 1/l/I) are excluded because the secret
// is read back to a person exactly once.
func GeneratePlaintext() (string, error) {
	alphabet := letters + digits
	buf := make([]byte, SecretLength)

	c, err := pick(letters)
	if err != nil {
		return "", err
	}
	buf[0] = c
	if buf[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < SecretLength; i++ {
		if buf[i], err = pick(alphabet); err != nil {
			return "", err
		}
	}

	// Fisher-Yates so the guaranteed letter/digit are not positional.
	for i := SecretLength - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("shuffle secret: %w", err)
		}
		j := n.Int64()
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

func pick(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, fmt.Errorf("generate secret: %w", err)
	}
	return alphabet[n.Int64()], nil
}

package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlaintext(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		secret, err := GeneratePlaintext()
		require.NoError(t, err)
		assert.Len(t, secret, SecretLength)

		var hasLetter, hasDigit bool
		for _, r := range secret {
			switch {
			case strings.ContainsRune(letters, r):
				hasLetter = true
			case strings.ContainsRune(digits, r):
				hasDigit = true
			default:
				t.Fatalf("secret %q contains byte outside alphabet: %q", secret, r)
			}
		}
		assert.True(t, hasLetter, "secret %q has no letter", secret)
		assert.True(t, hasDigit, "secret %q has no digit", secret)
		seen[secret] = true
	}
	// 200 draws from a 62^8-scale space should never collide.
	assert.Len(t, seen, 200)
}

func TestGeneratePlaintextExcludesAmbiguousGlyphs(t *testing.T) {
	for i := 0; i < 100; i++ {
		secret, err := GeneratePlaintext()
		require.NoError(t, err)
		assert.NotContains(t, secret, "0")
		assert.NotContains(t, secret, "O")
		assert.NotContains(t, secret, "1")
		assert.NotContains(t, secret, "l")
		assert.NotContains(t, secret, "I")
	}
}

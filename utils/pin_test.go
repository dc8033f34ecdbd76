package authUtils

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePin(t *testing.T) {
	pinPattern := regexp.MustCompile(`^\d{4}$`)

	for i := 0; i < 1000; i++ {
		pin := GeneratePin()
		require.Regexp(t, pinPattern, pin)

		n, err := strconv.Atoi(pin)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestGeneratePinVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[GeneratePin()] = true
	}
	// 200 draws from 9000 values collapsing to a handful would mean a broken generator
	assert.Greater(t, len(seen), 50)
}

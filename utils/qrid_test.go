package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidQRID(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"valid lowercase hex", "0b66003c", true},
		{"all digits", "12345678", true},
		{"all letters", "abcdefab", true},
		{"uppercase rejected", "0B66003C", false},
		{"too short", "0b66003", false},
		{"too long", "0b66003c1", false},
		{"empty", "", false},
		{"non-hex letter", "0b66003g", false},
		{"legacy form rejected", "b123456", false},
		{"whitespace", "0b66003 ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidQRID(tt.candidate))
		})
	}
}

func TestGenerateQRID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateQRID()
		require.True(t, IsValidQRID(id), "generated id %q must be valid", id)
		seen[id] = true
	}
	// Random ids collide with negligible probability at this volume.
	assert.Greater(t, len(seen), 90)
}

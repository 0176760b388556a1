package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		code     string
		expected string
	}{
		{"plain base", "https://orca.dev", "KX7P2M3Q", "https://orca.dev/cli/verify?userCode=KX7P2M3Q"},
		{"trailing slashes trimmed", "https://orca.dev//", "KX7P2M3Q", "https://orca.dev/cli/verify?userCode=KX7P2M3Q"},
		{"code escaped", "http://localhost:3000", "AB CD", "http://localhost:3000/cli/verify?userCode=AB+CD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VerificationURL(tt.base, tt.code))
		})
	}
}

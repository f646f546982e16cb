package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		endpoint string
		want     string
	}{
		{"bare domain", "grants.example.org", "/api/exports", "https://grants.example.org/api/exports"},
		{"trailing slash", "https://grants.example.org/", "/api/exports", "https://grants.example.org/api/exports"},
		{"no leading slash", "https://grants.example.org", "api/exports", "https://grants.example.org/api/exports"},
		{"explicit scheme kept", "http://localhost:3000", "/api/exports", "http://localhost:3000/api/exports"},
		{"base path kept", "https://example.org/app", "/api/exports", "https://example.org/app/api/exports"},
		{"query dropped", "https://example.org/?x=1#frag", "/api/exports?y=2", "https://example.org/api/exports"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildURL(tc.base, tc.endpoint)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildURLRejectsEmptyBase(t *testing.T) {
	_, err := BuildURL("  ", "/api")
	assert.Error(t, err)
}

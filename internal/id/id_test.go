package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(PrefixWorkspace)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixWorkspace, PrefixSSEClient, "x"} {
		t.Run(prefix, func(t *testing.T) {
			id := MustGenerate(prefix)
			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			assert.Len(t, id, len(prefix)+1+size)
			assert.True(t, Valid(prefix, id))
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"good", "ws-0123456789abcdef", true},
		{"wrong prefix", "sse-0123456789abcdef", false},
		{"too short", "ws-0123", false},
		{"uppercase", "ws-0123456789ABCDEF", false},
		{"path traversal", "ws-../../etc/passwd", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(PrefixWorkspace, tt.in))
		})
	}
}

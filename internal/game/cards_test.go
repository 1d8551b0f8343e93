package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollection(t *testing.T) {
	c := NewCollection()

	require.Len(t, c, 9)
	for _, name := range CardNames {
		owned, ok := c[name]
		assert.True(t, ok, "missing card %q", name)
		assert.False(t, owned, "card %q should default to not owned", name)
	}
}

func TestCollectionOwned(t *testing.T) {
	c := NewCollection()
	c["Daruma Fox"] = true
	c["Daruma Zama"] = true

	assert.Equal(t, []string{"Daruma Zama", "Daruma Fox"}, c.Owned())
}

func TestIsOwnedBadge(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"x1", true},
		{"x2", true},
		{"x10", true},
		{"X3", true},
		{"  x1  ", true},
		{"x", false},
		{"1x", false},
		{"x1.5", false},
		{"xx1", false},
		{"NEW", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsOwnedBadge(tt.text), "badge %q", tt.text)
	}
}

func TestColumnKey(t *testing.T) {
	assert.Equal(t, "daruma_fox", ColumnKey("Daruma Fox"))
	assert.Equal(t, "daruma_zama", ColumnKey("Daruma Zama"))
}

package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrefixFilter_Empty(t *testing.T) {
	_, err := NewPrefixFilter("  ")
	assert.ErrorIs(t, err, ErrEmptyPrefix)
}

func TestFilter_Matches(t *testing.T) {
	f, err := NewPrefixFilter("area-")
	require.NoError(t, err)

	tests := []struct {
		name  string
		label string
		want  bool
	}{
		{"exact prefix match", "area-foo", true},
		{"case insensitive", "Area-System.Net", true},
		{"upper case", "AREA-X", true},
		{"prefix only", "area-", true},
		{"different label", "bug", false},
		{"prefix in middle", "needs-area-label", false},
		{"shorter than prefix", "area", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Matches(tt.label))
		})
	}
}

func TestFilter_Select(t *testing.T) {
	f, err := NewPrefixFilter("AREA-")
	require.NoError(t, err)

	assert.Equal(t, []string{"area-foo", "Area-Bar"}, f.Select([]string{"bug", "area-foo", "Area-Bar"}))
	assert.Empty(t, f.Select([]string{"bug", "enhancement"}))
	assert.Equal(t, "AREA-", f.Prefix())
}

func TestFilter_MatchesNonASCII(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		label  string
		want   bool
	}{
		{"dotted capital I", "İ-", "İ-foo", true},
		{"kelvin sign prefix", "\u212a-", "k-net", true},
		{"kelvin sign label", "k-", "\u212a-net", true},
		{"accented folding", "ÉQUIPE/", "équipe/docs", true},
		{"multibyte shorter than prefix", "área-", "ár", false},
		{"different rune", "área-", "area-x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewPrefixFilter(tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Matches(tt.label))
		})
	}
}

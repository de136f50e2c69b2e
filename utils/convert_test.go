package utils

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNano(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"1", 1_000_000_000},
		{"0.05", 50_000_000},
		{"1.015", 1_015_000_000},
		{".5", 500_000_000},
		{"0.000000001", 1},
		{"007", 7_000_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToNano(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Uint64())
		})
	}

	for _, bad := range []string{"", "1.", "0.0000000001", "-1", "abc", "1.2.3"} {
		_, err := ToNano(bad)
		assert.Error(t, err, bad)
	}
}

func TestFromNano(t *testing.T) {
	assert.Equal(t, "0", FromNano(nil))
	assert.Equal(t, "0", FromNano(new(uint256.Int)))
	assert.Equal(t, "1", FromNano(uint256.NewInt(1_000_000_000)))
	assert.Equal(t, "0.05", FromNano(uint256.NewInt(50_000_000)))
	assert.Equal(t, "1.015", FromNano(uint256.NewInt(1_015_000_000)))
	assert.Equal(t, "0.000000001", FromNano(uint256.NewInt(1)))
	assert.Equal(t, "12.3", FromNano(MustToNano("12.3")))
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abc", ShortHash("abc"))
	assert.Equal(t, "0123456789abcde", ShortHash("0123456789abcde"))
	assert.Equal(t, "012345...abcdef", ShortHash("0123456789abcdef0123456789abcdef"))
}

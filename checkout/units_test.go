package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_toBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		exponent int32
		want     string
	}{
		{
			name:     "whole amount",
			amount:   42,
			exponent: 6,
			want:     "42000000",
		}, {
			name:     "fractional amount",
			amount:   84210.526999,
			exponent: 6,
			want:     "84210526999",
		}, {
			name:     "sub-precision digits truncated",
			amount:   0.0000019,
			exponent: 6,
			want:     "1",
		}, {
			name:     "zero",
			amount:   0,
			exponent: 6,
			want:     "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toBaseUnits(tt.amount, tt.exponent))
		})
	}
}

func Test_fromBaseUnits(t *testing.T) {
	got, err := fromBaseUnits("84210526999", 6)
	require.NoError(t, err)
	assert.InDelta(t, 84210.526999, got, 1e-9)

	got, err = fromBaseUnits("0", 6)
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = fromBaseUnits("not-a-number", 6)
	require.Error(t, err)
}

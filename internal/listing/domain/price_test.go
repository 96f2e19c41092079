package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *float64
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "blank", raw: "   ", want: nil},
		{name: "zero", raw: "0", want: nil},
		{name: "negative", raw: "-5", want: nil},
		{name: "plain", raw: "12500", want: ptr(12500)},
		{name: "thousands separator", raw: "12.500", want: ptr(12500)},
		{name: "decimal comma", raw: "1.250.000,50", want: ptr(1250000.5)},
		{name: "garbage", raw: "abc", wantErr: true},
		{name: "not a number", raw: "NaN", wantErr: true},
		{name: "infinity", raw: "Inf", wantErr: true},
		{name: "spelled infinity", raw: "Infinity", wantErr: true},
		{name: "negative infinity", raw: "-Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePrice(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidationFailed))
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.0001)
		})
	}
}

func TestParseNumber_RejectsNonFinite(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "-Infinity"} {
		_, ok := ParseNumber(raw)
		assert.False(t, ok, raw)
	}
	v, ok := ParseNumber("1,6")
	assert.True(t, ok)
	assert.InDelta(t, 1.6, v, 1e-9)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 5, TotalPages(47, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 3, TotalPages(201, 100))
}

func TestListingQuerySkip(t *testing.T) {
	assert.Equal(t, int64(0), ListingQuery{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, int64(50), ListingQuery{Page: 6, Limit: 10}.Skip())
	assert.Equal(t, int64(0), ListingQuery{Page: 0, Limit: 10}.Skip())
}

func TestKindCounterName(t *testing.T) {
	assert.Equal(t, "car", KindVehicle.CounterName())
	assert.Equal(t, "sparepart", KindSparePart.CounterName())
}

func ptr(v float64) *float64 { return &v }

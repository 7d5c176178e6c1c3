package provider_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calvinalkan/shelter/internal/provider"
	"github.com/calvinalkan/shelter/internal/schema"
)

func Test_ToInt_Converts_Integer_Like_Values(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{in: 7, want: 7, ok: true},
		{in: int8(-3), want: -3, ok: true},
		{in: uint32(9), want: 9, ok: true},
		{in: uint64(math.MaxInt64), want: math.MaxInt64, ok: true},
		{in: uint64(math.MaxInt64) + 1},
		{in: 4.0, want: 4, ok: true},
		{in: float32(2), want: 2, ok: true},
		{in: 4.5},
		{in: math.Inf(1)},
		{in: float64(math.MaxInt64)},
		{in: json.Number("12"), want: 12, ok: true},
		{in: json.Number("1.5")},
		{in: " 42 ", want: 42, ok: true},
		{in: "forty"},
		{in: schema.GenderFemale, want: 2, ok: true},
		{in: true},
		{in: nil},
	}

	for _, tc := range cases {
		got, ok := provider.ToInt(tc.in)
		assert.Equal(t, tc.ok, ok, "ok for %#v", tc.in)

		if tc.ok {
			assert.Equal(t, tc.want, got, "value for %#v", tc.in)
		}
	}
}

package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlexIntUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int64
	}{
		{"number", `1200`, 1200},
		{"negative number", `-7`, -7},
		{"float truncates", `12.9`, 12},
		{"numeric string", `"1200"`, 1200},
		{"string with unit suffix", `"1200 users"`, 1200},
		{"float string", `"3.5"`, 3},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"garbage string", `"n/a"`, 0},
		{"boolean", `true`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f flexInt
			require.NoError(t, json.Unmarshal([]byte(tc.in), &f))
			require.Equal(t, tc.want, int64(f))
		})
	}
}

func TestFlexIntInsidePayload(t *testing.T) {
	var p reportPayload
	require.NoError(t, json.Unmarshal([]byte(`{"total_posts": "7", "total_reach": 900.4}`), &p))
	require.Equal(t, flexInt(7), p.TotalPosts)
	require.Equal(t, flexInt(900), p.TotalReach)
	require.Equal(t, flexInt(0), p.TotalEngagement)
}

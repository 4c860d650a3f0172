package preload

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Variable
		ok   bool
	}{
		{
			name: "plain id",
			line: "sim.preload_variable(7, Point(3, 4), 0)",
			want: Variable{ID: "7", X: "3", Y: "4"},
			ok:   true,
		},
		{
			name: "agent keyword",
			line: "sim.preload_variable(agent 7, Point(3, 4), 0)",
			want: Variable{ID: "7", X: "3", Y: "4"},
			ok:   true,
		},
		{
			name: "embedded in log line",
			line: "[setup] 0.000 sim.preload_variable(120, Point(45, 9), 0);",
			want: Variable{ID: "120", X: "45", Y: "9"},
			ok:   true,
		},
		{
			name: "non-zero owner",
			line: "sim.preload_variable(7, Point(3, 4), 2)",
		},
		{
			name: "negative coordinate",
			line: "sim.preload_variable(7, Point(-3, 4), 0)",
		},
		{
			name: "any character after sim",
			line: "sim_preload_variable(7, Point(3, 4), 0)",
			want: Variable{ID: "7", X: "3", Y: "4"},
			ok:   true,
		},
		{
			name: "unrelated",
			line: "sim.run()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tt.line)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestVariableText(t *testing.T) {
	for _, line := range []string{
		"sim.preload_variable(7, Point(3, 4), 0)",
		"sim.preload_variable(agent 7, Point(3, 4), 0)",
	} {
		v, ok := Match(line)
		require.True(t, ok)
		require.Equal(t, "0,7,3,4", v.Text())
	}
}

func TestVariablePoint(t *testing.T) {
	v := Variable{ID: "1", X: "12", Y: "30"}
	require.Equal(t, orb.Point{12, 30}, v.Point())
}

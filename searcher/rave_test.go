package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRaveTableSimpleMean(t *testing.T) {
	a := mockAction{id: 1}

	t.Run("keeps the running mean of credited results", func(t *testing.T) {
		table := NewRaveTable(SimpleMean)

		table.update(a, 1, 1)
		table.update(a, 0, 2)
		table.update(a, 2, 3)

		require.InDelta(t, 1.0, table.Value(a, -1), 1e-12)
		require.Equal(t, 3.0, table.Count(a, -1))
	})

	t.Run("absent actions read through the fallback", func(t *testing.T) {
		table := NewRaveTable(SimpleMean)

		require.Equal(t, 1.0, table.Value(a, 1))
		require.Equal(t, 0.0, table.Count(a, 0))
		require.InDelta(t, 0.0, table.blend(a, DefaultEpsilon), 1e-12)
		require.InDelta(t, 1.0, table.bias(a, DefaultEpsilon), 1e-5)
	})

	t.Run("promotion is ignored", func(t *testing.T) {
		table := NewRaveTable(SimpleMean)
		table.update(a, 4, 1)

		table.promote(a)

		require.Empty(t, table.promoted)
	})
}

func TestRaveTableDecayedMean(t *testing.T) {
	a := mockAction{id: 1}

	t.Run("discounts by the crediting node's visits", func(t *testing.T) {
		table := NewRaveTable(DecayedMean)

		table.update(a, 4, 1) // (1 + 3/1) * 0 = 0
		require.InDelta(t, 0.0, table.Value(a, -1), 1e-12)

		table.update(a, 4, 1) // (0 + 4/2) * 1/2 = 1
		require.InDelta(t, 1.0, table.Value(a, -1), 1e-12)

		table.update(a, 4, 1) // (1 + 3/3) * 2/3 = 4/3
		require.InDelta(t, 4.0/3, table.Value(a, -1), 1e-12)
		require.Equal(t, 3.0, table.Count(a, -1))
	})

	t.Run("promoted actions use the snapshot count", func(t *testing.T) {
		table := NewRaveTable(DecayedMean)
		for i := 0; i < 3; i++ {
			table.update(a, 4, 1)
		}

		table.promote(a)
		table.update(a, 4, 1) // (4/3 + (4-4/3)/3) * 2/3 = 40/27

		require.InDelta(t, 40.0/27, table.Value(a, -1), 1e-12)
		require.Equal(t, 4.0, table.Count(a, -1), "Count should keep growing after promotion")
	})

	t.Run("visits beyond the count zero the value", func(t *testing.T) {
		table := NewRaveTable(DecayedMean)

		table.update(a, 10, 5)

		require.Equal(t, 0.0, table.Value(a, -1))
	})

	t.Run("uncredited actions are not promoted", func(t *testing.T) {
		table := NewRaveTable(DecayedMean)

		table.promote(a)

		require.Empty(t, table.promoted)
	})
}

func TestRaveTableReset(t *testing.T) {
	table := NewRaveTable(DecayedMean)
	table.update(mockAction{id: 1}, 1, 1)
	table.update(mockAction{id: 2}, 1, 1)
	table.promote(mockAction{id: 1})
	require.Equal(t, 2, table.Len())

	table.Reset()

	require.Zero(t, table.Len())
	require.Empty(t, table.promoted)
	require.Equal(t, DecayedMean, table.Rule(), "Reset should keep the rule")
}

func TestParseUpdateRule(t *testing.T) {
	cases := []struct {
		in   string
		want UpdateRule
	}{
		{"simple", SimpleMean},
		{"", SimpleMean},
		{"Decayed", DecayedMean},
	}
	for _, c := range cases {
		got, err := ParseUpdateRule(c.in)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
		require.Equal(t, got, mustParseUpdateRule(t, got.String()))
	}

	_, err := ParseUpdateRule("median")
	require.ErrorIs(t, err, ErrInvalidParams)
}

func mustParseUpdateRule(t *testing.T, s string) UpdateRule {
	t.Helper()
	rule, err := ParseUpdateRule(s)
	require.NoError(t, err)
	return rule
}

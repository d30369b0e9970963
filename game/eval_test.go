package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func liveState() *State {
	return &State{
		Hands:    [][]Card{{maki(1), tempura}, {sashimi, sashimi}},
		Tableaus: [][]Card{{tempura, tempura}, {nigiri(3)}},
	}
}

func TestScoreHeuristic(t *testing.T) {
	t.Run("live state adds set and hand bonuses", func(t *testing.T) {
		// score 5 + tempura history 2 + own hand (2+3)*0.8 + opponent hand 6*0.2
		require.InDelta(t, 12.2, ScoreHeuristic{}.Evaluate(liveState(), 0), 1e-9)
	})

	t.Run("winner gets a bonus and loser is halved", func(t *testing.T) {
		s := stateWithTableaus(repeat(tempura, 2), []Card{nigiri(3)})

		require.InDelta(t, 7.5, ScoreHeuristic{}.Evaluate(s, 0), 1e-9)
		require.InDelta(t, 1.5, ScoreHeuristic{}.Evaluate(s, 1), 1e-9)
	})

	t.Run("draw keeps the raw score", func(t *testing.T) {
		s := stateWithTableaus([]Card{nigiri(2)}, []Card{nigiri(2)})

		require.InDelta(t, 2.0, ScoreHeuristic{}.Evaluate(s, 1), 1e-9)
	})

	t.Run("bounds are unbounded sentinels", func(t *testing.T) {
		lo, hi := ScoreHeuristic{}.Bounds()
		require.True(t, math.IsInf(lo, -1))
		require.True(t, math.IsInf(hi, 1))
	})
}

func TestAdjustedScoreHeuristic(t *testing.T) {
	t.Run("adds half the played set bonus", func(t *testing.T) {
		require.InDelta(t, 12.2+2.5, AdjustedScoreHeuristic{}.Evaluate(liveState(), 0), 1e-9)
	})

	t.Run("terminal states score like the plain heuristic", func(t *testing.T) {
		s := stateWithTableaus(repeat(tempura, 2), []Card{nigiri(3)})

		require.Equal(t, ScoreHeuristic{}.Evaluate(s, 0), AdjustedScoreHeuristic{}.Evaluate(s, 0))
	})
}

func TestNewHeuristic(t *testing.T) {
	h, err := NewHeuristic("score")
	require.NoError(t, err)
	require.IsType(t, ScoreHeuristic{}, h)

	h, err = NewHeuristic("Adjusted")
	require.NoError(t, err)
	require.IsType(t, AdjustedScoreHeuristic{}, h)

	_, err = NewHeuristic("territory")
	require.Error(t, err)
}

package game

import (
	"math"
	"strings"

	"mcrave/searcher"

	"github.com/pkg/errors"
)

const (
	winMultiplier  = 1.5
	lossMultiplier = 0.5
	ownHandWeight  = 0.8
	opponentWeight = 0.2
	playedWeight   = 0.5
)

// ScoreHeuristic cares mostly about the raw game score, treating a win as a
// 50% bonus and a loss as halving it. Live states add bonuses for card sets
// that are already paying off or that the hands could still complete.
type ScoreHeuristic struct{}

func (ScoreHeuristic) Evaluate(state searcher.State, seat int) float64 {
	s := mustState(state)
	value, done := scoreOrResult(s, seat)
	if done {
		return value
	}
	return value + historicalBonus(s, seat) +
		handBonus(s.Hands[seat])*ownHandWeight +
		opponentsHandBonus(s, seat)*opponentWeight
}

func (ScoreHeuristic) Bounds() (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}

// AdjustedScoreHeuristic is ScoreHeuristic plus a weighted evaluation of the
// sets on the seat's tableau.
type AdjustedScoreHeuristic struct{}

func (AdjustedScoreHeuristic) Evaluate(state searcher.State, seat int) float64 {
	s := mustState(state)
	value, done := scoreOrResult(s, seat)
	if done {
		return value
	}
	return value + historicalBonus(s, seat) +
		handBonus(s.Hands[seat])*ownHandWeight +
		opponentsHandBonus(s, seat)*opponentWeight +
		playedBonus(s.Tableaus[seat])*playedWeight
}

func (AdjustedScoreHeuristic) Bounds() (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}

// NewHeuristic returns the heuristic registered under name.
func NewHeuristic(name string) (searcher.Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "score":
		return ScoreHeuristic{}, nil
	case "adjusted":
		return AdjustedScoreHeuristic{}, nil
	default:
		return nil, errors.Errorf("unknown heuristic %q", name)
	}
}

// scoreOrResult returns the seat's score and whether the game is decided, in
// which case the score already carries the win or loss multiplier.
func scoreOrResult(s *State, seat int) (float64, bool) {
	score := float64(s.Score(seat))
	switch s.Result(seat) {
	case Win:
		return score * winMultiplier, true
	case Loss:
		return score * lossMultiplier, true
	case Draw:
		return score, true
	default:
		return score, false
	}
}

// historicalBonus rewards card types that have already earned points.
func historicalBonus(s *State, seat int) float64 {
	tableau := s.Tableaus[seat]
	bonus := 0.0
	if s.makiPoints()[seat] >= 5 {
		bonus += 3
	}
	if countKind(tableau, Tempura)/2*TempuraSetPoints >= 5 {
		bonus += 2
	}
	if countKind(tableau, Sashimi)/3*SashimiSetPoints >= 10 {
		bonus += 5
	}
	if s.puddingPoints()[seat] >= 5 {
		bonus += 3
	}
	return bonus
}

func handBonus(hand []Card) float64 {
	bonus := 0.0
	if maki := countKind(hand, Maki); maki >= 1 {
		bonus += float64(maki) * 2
	}
	if countKind(hand, Tempura) == 1 {
		bonus += 3
	}
	if countKind(hand, Sashimi) == 2 {
		bonus += 6
	}
	return bonus
}

// opponentsHandBonus scores the pooled hands of every other seat.
func opponentsHandBonus(s *State, seat int) float64 {
	var pooled []Card
	for other, hand := range s.Hands {
		if other != seat {
			pooled = append(pooled, hand...)
		}
	}
	return handBonus(pooled)
}

func playedBonus(tableau []Card) float64 {
	bonus := 0.0
	if countKind(tableau, Tempura) >= 2 {
		bonus += 5
	}
	if countKind(tableau, Sashimi) >= 3 {
		bonus += 10
	}
	if maki := countKind(tableau, Maki); maki >= 3 {
		bonus += float64(maki) * 1.5
	}
	return bonus
}

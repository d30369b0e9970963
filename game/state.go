package game

import (
	"fmt"
	"strings"

	"mcrave/searcher"
	"mcrave/utils"
)

type Result int

const (
	Undecided Result = iota
	Win
	Draw
	Loss
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Loss:
		return "loss"
	default:
		return "undecided"
	}
}

// State is the full, perfect-information state of a game: every hand is
// visible to every seat.
type State struct {
	Seat     int      // The seat to act
	Hands    [][]Card // Cards each seat can still play, indexed by seat
	Tableaus [][]Card // Cards each seat has played, indexed by seat
	Deck     []Card   // Face-down cards left to draw
	Turn     int      // Number of cards played so far
}

func (s *State) Copy() searcher.State {
	return s.Clone()
}

// Clone is Copy with the concrete type.
func (s *State) Clone() *State {
	return &State{
		Seat:     s.Seat,
		Hands:    copyPiles(s.Hands),
		Tableaus: copyPiles(s.Tableaus),
		Deck:     append([]Card(nil), s.Deck...),
		Turn:     s.Turn,
	}
}

func copyPiles(piles [][]Card) [][]Card {
	copied := make([][]Card, len(piles))
	for i, pile := range piles {
		copied[i] = make([]Card, len(pile))
		copy(copied[i], pile)
	}
	return copied
}

func (s *State) CurrentSeat() int {
	return s.Seat
}

func (s *State) Seats() int {
	return len(s.Hands)
}

func (s *State) IsTerminal() bool {
	for _, hand := range s.Hands {
		if len(hand) > 0 {
			return false
		}
	}
	return true
}

// Scores returns the score of every seat as if the game ended now.
func (s *State) Scores() []int {
	scores := make([]int, s.Seats())
	for seat := range scores {
		scores[seat] = setScore(s.Tableaus[seat])
	}
	for seat, points := range s.makiPoints() {
		scores[seat] += points
	}
	for seat, points := range s.puddingPoints() {
		scores[seat] += points
	}
	return scores
}

func (s *State) Score(seat int) int {
	return s.Scores()[seat]
}

// Winners returns the seats sharing the top score, or nil while the game is on.
func (s *State) Winners() []int {
	if !s.IsTerminal() {
		return nil
	}
	scores := s.Scores()
	best := scores[0]
	for _, score := range scores[1:] {
		best = max(best, score)
	}
	var winners []int
	for seat, score := range scores {
		if score == best {
			winners = append(winners, seat)
		}
	}
	return winners
}

func (s *State) Result(seat int) Result {
	winners := s.Winners()
	switch {
	case winners == nil:
		return Undecided
	case len(winners) == 1 && winners[0] == seat:
		return Win
	case len(winners) > 1 && utils.FindIndex(winners, seat) >= 0:
		return Draw
	default:
		return Loss
	}
}

func (s *State) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "turn %d, seat %d to act, %d cards in deck\n", s.Turn, s.Seat, len(s.Deck))
	for seat := range s.Hands {
		fmt.Fprintf(&b, "  seat %d hand=%v tableau=%v\n", seat, s.Hands[seat], s.Tableaus[seat])
	}
	return b.String()
}

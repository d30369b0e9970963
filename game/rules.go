package game

import (
	"sort"

	"mcrave/searcher"
	"mcrave/utils"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

const (
	MinSeats          = 2
	MaxSeats          = 5
	DefaultSpareCards = 20
)

var ErrInvalidRules = errors.New("invalid game rules")

// handSizes maps the number of seats to the number of cards dealt per seat.
var handSizes = map[int]int{2: 10, 3: 9, 4: 8, 5: 7}

type RulesOption func(r *Rules)

// WithHandSize overrides the number of cards dealt to each seat.
func WithHandSize(size int) RulesOption {
	return func(r *Rules) {
		if size > 0 {
			r.handSize = size
		}
	}
}

// WithSpareCards sets how many cards stay in the deck after dealing.
func WithSpareCards(cards int) RulesOption {
	return func(r *Rules) {
		if cards >= 0 {
			r.spareCards = cards
		}
	}
}

// Rules deals and advances games. Draws use the rules' own generator, so a
// Rules value must not be shared between goroutines.
type Rules struct {
	seats      int
	handSize   int
	spareCards int
	rng        *rand.Rand
}

func NewRules(seats int, seed uint64, options ...RulesOption) (*Rules, error) {
	if seats < MinSeats || seats > MaxSeats {
		return nil, errors.Wrapf(ErrInvalidRules, "seats must be between %d and %d, got %d", MinSeats, MaxSeats, seats)
	}
	r := &Rules{
		seats:      seats,
		handSize:   handSizes[seats],
		spareCards: DefaultSpareCards,
		rng:        rand.New(rand.NewSource(seed)),
	}
	for _, option := range options {
		option(r)
	}
	if needed := r.seats*r.handSize + r.spareCards; needed > len(StandardDeck()) {
		return nil, errors.Wrapf(ErrInvalidRules, "game needs %d cards but the deck has %d", needed, len(StandardDeck()))
	}
	return r, nil
}

// Fork returns rules for the same game drawing from their own generator. A
// search simulating on a fork leaves the draws of the real game untouched.
func (r *Rules) Fork(seed uint64) *Rules {
	return &Rules{
		seats:      r.seats,
		handSize:   r.handSize,
		spareCards: r.spareCards,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (r *Rules) Seats() int {
	return r.seats
}

// NewState shuffles the deck, deals every hand and sets aside the spare cards.
// Seat 0 acts first.
func (r *Rules) NewState() *State {
	deck := StandardDeck()
	r.rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	s := &State{
		Hands:    make([][]Card, r.seats),
		Tableaus: make([][]Card, r.seats),
	}
	for seat := range s.Hands {
		s.Hands[seat] = append([]Card(nil), deck[:r.handSize]...)
		s.Tableaus[seat] = []Card{}
		deck = deck[r.handSize:]
	}
	s.Deck = append([]Card(nil), deck[:r.spareCards]...)
	return s
}

// LegalActions lists the distinct cards in the acting seat's hand, ordered by
// kind then value.
func (r *Rules) LegalActions(state searcher.State, mode searcher.ActionSpace) []searcher.Action {
	s := mustState(state)
	if s.IsTerminal() {
		return nil
	}

	hand := append([]Card(nil), s.Hands[s.Seat]...)
	sort.Slice(hand, func(i, j int) bool { return hand[i].less(hand[j]) })

	actions := make([]searcher.Action, 0, len(hand))
	for i, card := range hand {
		if i > 0 && hand[i-1] == card {
			continue
		}
		actions = append(actions, card)
	}
	return actions
}

func (r *Rules) IsLegal(state *State, action searcher.Action) bool {
	card, ok := action.(Card)
	return ok && !state.IsTerminal() && utils.FindIndex(state.Hands[state.Seat], card) >= 0
}

// Apply plays the card from the acting seat's hand, draws a random replacement
// while the deck lasts and passes the turn to the next seat holding cards.
func (r *Rules) Apply(state searcher.State, action searcher.Action) {
	s := mustState(state)
	card, ok := action.(Card)
	if !ok {
		panic("unexpected action type")
	}
	i := utils.FindIndex(s.Hands[s.Seat], card)
	if i < 0 {
		panic("card is not in the acting seat's hand")
	}

	s.Hands[s.Seat] = utils.RemoveAt(s.Hands[s.Seat], i)
	s.Tableaus[s.Seat] = append(s.Tableaus[s.Seat], card)
	if len(s.Deck) > 0 {
		d := r.rng.Intn(len(s.Deck))
		s.Hands[s.Seat] = append(s.Hands[s.Seat], s.Deck[d])
		s.Deck = utils.RemoveAt(s.Deck, d)
	}
	s.Turn++

	for next := 1; next <= s.Seats(); next++ {
		seat := (s.Seat + next) % s.Seats()
		if len(s.Hands[seat]) > 0 {
			s.Seat = seat
			return
		}
	}
}

func mustState(state searcher.State) *State {
	s, ok := state.(*State)
	if !ok {
		panic("unexpected state type")
	}
	return s
}

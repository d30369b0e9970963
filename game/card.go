package game

import "fmt"

type CardKind int

const (
	Maki     CardKind = iota // 0
	Tempura                  // 1
	Sashimi                  // 2
	Dumpling                 // 3
	Nigiri                   // 4
	Pudding                  // 5
)

var kindNames = [...]string{"Maki", "Tempura", "Sashimi", "Dumpling", "Nigiri", "Pudding"}

func (k CardKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("CardKind(%d)", int(k))
	}
	return kindNames[k]
}

// Card is both a component of the game and the action of playing it. Value
// is the number of maki rolls or the nigiri face value, 0 otherwise.
type Card struct {
	Kind  CardKind
	Value int
}

func (c Card) String() string {
	if c.Value > 0 {
		return fmt.Sprintf("%s(%d)", c.Kind, c.Value)
	}
	return c.Kind.String()
}

func (c Card) less(other Card) bool {
	if c.Kind != other.Kind {
		return c.Kind < other.Kind
	}
	return c.Value < other.Value
}

// StandardDeck returns the Sushi Go deck without wasabi and chopsticks.
func StandardDeck() []Card {
	counts := []struct {
		card  Card
		count int
	}{
		{Card{Kind: Maki, Value: 1}, 6},
		{Card{Kind: Maki, Value: 2}, 12},
		{Card{Kind: Maki, Value: 3}, 8},
		{Card{Kind: Tempura}, 14},
		{Card{Kind: Sashimi}, 14},
		{Card{Kind: Dumpling}, 14},
		{Card{Kind: Nigiri, Value: 1}, 5},
		{Card{Kind: Nigiri, Value: 2}, 10},
		{Card{Kind: Nigiri, Value: 3}, 5},
		{Card{Kind: Pudding}, 10},
	}

	deck := []Card{}
	for _, c := range counts {
		for i := 0; i < c.count; i++ {
			deck = append(deck, c.card)
		}
	}
	return deck
}

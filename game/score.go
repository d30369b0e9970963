package game

import "mcrave/utils"

const (
	TempuraSetPoints = 5
	SashimiSetPoints = 10
	MakiFirstPoints  = 6
	MakiSecondPoints = 3
	PuddingPoints    = 6
)

var dumplingPoints = [...]int{0, 1, 3, 6, 10, 15}

func countKind(cards []Card, kind CardKind) int {
	return utils.CountFunc(cards, func(c Card) bool { return c.Kind == kind })
}

func makiRolls(cards []Card) int {
	rolls := 0
	for _, c := range cards {
		if c.Kind == Maki {
			rolls += c.Value
		}
	}
	return rolls
}

// setScore scores the cards of one tableau that do not depend on other seats.
func setScore(tableau []Card) int {
	score := countKind(tableau, Tempura) / 2 * TempuraSetPoints
	score += countKind(tableau, Sashimi) / 3 * SashimiSetPoints
	score += dumplingPoints[min(countKind(tableau, Dumpling), len(dumplingPoints)-1)]
	for _, c := range tableau {
		if c.Kind == Nigiri {
			score += c.Value
		}
	}
	return score
}

// makiPoints awards the maki majorities, splitting points between tied seats.
func (s *State) makiPoints() map[int]int {
	rolls := make([]int, s.Seats())
	for seat, tableau := range s.Tableaus {
		rolls[seat] = makiRolls(tableau)
	}

	points := map[int]int{}
	first := topSeats(rolls, func(v int) bool { return v > 0 })
	if len(first) == 0 {
		return points
	}
	for _, seat := range first {
		points[seat] += MakiFirstPoints / len(first)
	}
	if len(first) > 1 {
		return points
	}

	top := rolls[first[0]]
	second := topSeats(rolls, func(v int) bool { return v > 0 && v < top })
	for _, seat := range second {
		points[seat] += MakiSecondPoints / len(second)
	}
	return points
}

// puddingPoints rewards the most puddings and, with more than two seats,
// penalises the fewest.
func (s *State) puddingPoints() map[int]int {
	puddings := make([]int, s.Seats())
	for seat, tableau := range s.Tableaus {
		puddings[seat] = countKind(tableau, Pudding)
	}

	points := map[int]int{}
	most := topSeats(puddings, func(int) bool { return true })
	if len(most) == len(puddings) { // Everybody tied
		return points
	}
	for _, seat := range most {
		points[seat] += PuddingPoints / len(most)
	}
	if len(puddings) <= 2 {
		return points
	}

	negated := make([]int, len(puddings))
	for i, p := range puddings {
		negated[i] = -p
	}
	least := topSeats(negated, func(int) bool { return true })
	for _, seat := range least {
		points[seat] -= PuddingPoints / len(least)
	}
	return points
}

// topSeats returns the seats holding the highest value among those accepted by eligible.
func topSeats(values []int, eligible func(int) bool) []int {
	var seats []int
	best := 0
	for seat, v := range values {
		if !eligible(v) {
			continue
		}
		switch {
		case len(seats) == 0 || v > best:
			seats, best = []int{seat}, v
		case v == best:
			seats = append(seats, seat)
		}
	}
	return seats
}

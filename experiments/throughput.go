package experiments

import (
	"slices"

	"mcrave/config"
	"mcrave/experiments/metrics"

	"gonum.org/v1/gonum/floats"
)

// Throughput is the search speed of one agent over all its moves.
type Throughput struct {
	Moves               int
	IterationsPerSecond float64
	FMCallsPerSecond    float64
}

func throughput(moves []metrics.MoveRecord) map[int]Throughput {
	type totals struct {
		moves      int
		iterations int
		fmCalls    int
		seconds    float64
	}
	byAgent := map[int]*totals{}
	for _, m := range moves {
		t, ok := byAgent[m.Agent]
		if !ok {
			t = &totals{}
			byAgent[m.Agent] = t
		}
		t.moves++
		t.iterations += m.Iterations
		t.fmCalls += m.FMCalls
		t.seconds += m.Duration.Seconds()
	}

	result := make(map[int]Throughput, len(byAgent))
	for id, t := range byAgent {
		tp := Throughput{Moves: t.moves}
		if t.seconds > 0 {
			tp.IterationsPerSecond = float64(t.iterations) / t.seconds
			tp.FMCallsPerSecond = float64(t.fmCalls) / t.seconds
		}
		result[id] = tp
	}
	return result
}

func summarize(agents []config.AgentConfig, games []metrics.GameRecord, moves []metrics.MoveRecord) *Summary {
	summary := &Summary{Games: len(games)}
	speeds := throughput(moves)

	for _, a := range agents {
		s := AgentSummary{ID: a.ID, Kind: a.Kind}
		scores := []float64{}
		for _, g := range games {
			for seat, id := range g.Agents {
				if id != a.ID {
					continue
				}
				s.Seats++
				if seat < len(g.Scores) {
					scores = append(scores, float64(g.Scores[seat]))
				}
				switch {
				case g.Truncated:
				case !slices.Contains(g.Winners, seat):
					s.Losses++
				case len(g.Winners) == 1:
					s.Wins++
				default:
					s.Draws++
				}
			}
		}
		if len(scores) > 0 {
			s.MeanScore = floats.Sum(scores) / float64(len(scores))
		}
		s.IterationsPerSecond = speeds[a.ID].IterationsPerSecond
		s.FMCallsPerSecond = speeds[a.ID].FMCallsPerSecond
		summary.Agents = append(summary.Agents, s)
	}

	for _, g := range games {
		if g.Truncated {
			summary.Truncated++
		}
	}
	return summary
}

package experiments

import (
	"context"
	"fmt"
	"math"

	"mcrave/config"
	"mcrave/engine"
	"mcrave/experiments/metrics"
	"mcrave/game"
	"mcrave/searcher"
	"mcrave/searcher/agent"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"
)

type AgentSummary struct {
	ID                  int     `yaml:"id"`
	Kind                string  `yaml:"kind"`
	Seats               int     `yaml:"seats"` // Seats taken over all games
	Wins                int     `yaml:"wins"`
	Draws               int     `yaml:"draws"`
	Losses              int     `yaml:"losses"`
	MeanScore           float64 `yaml:"mean_score"`
	IterationsPerSecond float64 `yaml:"iterations_per_second"`
	FMCallsPerSecond    float64 `yaml:"fm_calls_per_second"`
}

type Summary struct {
	Name      string         `yaml:"name"`
	Dir       string         `yaml:"dir"`
	Games     int            `yaml:"games"`
	Truncated int            `yaml:"truncated"`
	Agents    []AgentSummary `yaml:"agents"`
}

type pairing struct {
	index   int
	matchUp int
	seats   []int // Agent ids by seat
}

type result struct {
	game  metrics.GameRecord
	moves []metrics.MoveRecord
}

// Run plays every matchup of the experiment the configured number of times and
// stores the records and a summary under the output directory.
func Run(ctx context.Context, cfg *config.Config) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exp := cfg.Experiment
	agents := exp.Agents
	if len(agents) == 0 {
		agents = []config.AgentConfig{
			{ID: 1, Kind: config.AgentMCRave, Search: cfg.Search},
			{ID: 2, Kind: config.AgentRandom},
		}
	}
	matchUps := exp.MatchUps
	if len(matchUps) == 0 {
		matchUps = defaultMatchUps(agents, cfg.Match.Seats)
	}
	byID := make(map[int]config.AgentConfig, len(agents))
	for _, a := range agents {
		byID[a.ID] = a
	}

	games := []pairing{}
	for mi, matchUp := range matchUps {
		for i := 0; i < exp.Games; i++ {
			games = append(games, pairing{index: len(games), matchUp: mi, seats: rotate(matchUp, i)})
		}
	}

	log.Info().Str("experiment", exp.Name).Msgf("starting %d games over %d matchups...", len(games), len(matchUps))

	results := make([]result, len(games))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(exp.Parallel)
	for _, gm := range games {
		gm := gm
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := runGame(cfg, gm, byID)
			if err != nil {
				return errors.WithMessagef(err, "game %d", gm.index+1)
			}
			results[gm.index] = r
			log.Info().Str("experiment", exp.Name).Msgf("completed game %d of %d with winners %v",
				gm.index+1, len(games), r.game.Winners)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().Str("experiment", exp.Name).Msg("completed experiment")

	gameRecords := make([]metrics.GameRecord, 0, len(results))
	moveRecords := []metrics.MoveRecord{}
	for _, r := range results {
		gameRecords = append(gameRecords, r.game)
		moveRecords = append(moveRecords, r.moves...)
	}

	writer, err := metrics.NewWriter(exp.OutputDir, exp.Name)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteAgentRecords(agentRecords(agents)); err != nil {
		return nil, err
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return nil, err
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return nil, err
	}

	summary := summarize(agents, gameRecords, moveRecords)
	summary.Name = exp.Name
	summary.Dir = writer.Dir()
	if err := writer.WriteSummary(summary); err != nil {
		return nil, err
	}

	for _, a := range summary.Agents {
		log.Info().Str("experiment", exp.Name).Int("agent", a.ID).
			Msgf("%s: %d wins, %d draws, %d losses, mean score %.2f", a.Kind, a.Wins, a.Draws, a.Losses, a.MeanScore)
	}
	log.Info().Str("experiment", exp.Name).Msgf("stored results in %s", writer.Dir())
	return summary, nil
}

// defaultMatchUps seats the first agent against every other agent, the
// other agent filling the remaining seats.
func defaultMatchUps(agents []config.AgentConfig, seats int) [][]int {
	if len(agents) == 1 {
		matchUp := make([]int, seats)
		for i := range matchUp {
			matchUp[i] = agents[0].ID
		}
		return [][]int{matchUp}
	}

	matchUps := [][]int{}
	for _, other := range agents[1:] {
		matchUp := make([]int, seats)
		matchUp[0] = agents[0].ID
		for i := 1; i < seats; i++ {
			matchUp[i] = other.ID
		}
		matchUps = append(matchUps, matchUp)
	}
	return matchUps
}

// rotate shifts the seating by one seat per game so every agent starts in turn.
func rotate(matchUp []int, n int) []int {
	seats := make([]int, len(matchUp))
	for i := range seats {
		seats[i] = matchUp[(i+n)%len(matchUp)]
	}
	return seats
}

func gameSeed(cfg *config.Config, index int) uint64 {
	if cfg.Match.Seed == 0 {
		return frand.Uint64n(math.MaxUint64)
	}
	return cfg.Match.Seed + uint64(index)
}

func runGame(cfg *config.Config, gm pairing, byID map[int]config.AgentConfig) (result, error) {
	seed := gameSeed(cfg, gm.index)
	rules, err := game.NewRules(cfg.Match.Seats, seed, cfg.Match.RulesOptions()...)
	if err != nil {
		return result{}, err
	}

	agents := make([]agent.Agent, len(gm.seats))
	for seat, id := range gm.seats {
		a, err := newAgent(cfg, byID[id], rules, seat, seed)
		if err != nil {
			return result{}, errors.WithMessagef(err, "agent %d", id)
		}
		agents[seat] = a
	}

	var e engine.Engine
	e, err = engine.LocalEngine(rules, agents,
		engine.WithMaxTurns(cfg.Match.MaxTurns),
		engine.WithID(fmt.Sprintf("%s-%d", cfg.Experiment.Name, gm.index+1)))
	if err != nil {
		return result{}, err
	}

	_, gameMetric, moveMetrics, err := e.Run()
	if err != nil {
		return result{}, err
	}

	r := result{
		game: metrics.GameRecord{
			Game:       gm.index + 1,
			MatchUp:    gm.matchUp,
			Agents:     gm.seats,
			GameMetric: gameMetric,
		},
		moves: make([]metrics.MoveRecord, 0, len(moveMetrics)),
	}
	for _, mm := range moveMetrics {
		r.moves = append(r.moves, metrics.MoveRecord{
			Game:       gm.index + 1,
			Agent:      gm.seats[mm.Seat],
			MoveMetric: mm,
		})
	}
	return r, nil
}

func newAgent(cfg *config.Config, ac config.AgentConfig, rules *game.Rules, seat int, seed uint64) (agent.Agent, error) {
	if ac.Kind == config.AgentRandom {
		return agent.NewRandomAgent(rules, searcher.ActionSpaceDefault, seed+uint64(seat)+1), nil
	}

	evaluator, err := game.NewHeuristic(cfg.Match.Heuristic)
	if err != nil {
		return nil, err
	}
	options, err := ac.Search.Options()
	if err != nil {
		return nil, err
	}
	if ac.Search.Seed != 0 {
		// Seats sharing a configuration still search independently
		options = append(options, searcher.WithSeed(ac.Search.Seed+seed+uint64(seat)))
	}
	options = append(options, searcher.WithMetrics())

	agentOptions, err := ac.AgentOptions()
	if err != nil {
		return nil, err
	}

	mcts, err := searcher.NewMCTS(rules.Fork(seed^uint64(seat+1)), evaluator, options...)
	if err != nil {
		return nil, err
	}
	return agent.NewEvaluationAgent(seat, mcts, agentOptions...), nil
}

func agentRecords(agents []config.AgentConfig) []metrics.AgentRecord {
	records := make([]metrics.AgentRecord, 0, len(agents))
	for _, a := range agents {
		record := metrics.AgentRecord{ID: a.ID, Kind: a.Kind}
		if a.Kind == config.AgentMCRave {
			s := a.Search
			record.Exploration = s.Exploration
			record.RaveWeight = s.RaveWeight
			record.UpdateRule = s.UpdateRule
			record.RolloutLength = s.RolloutLength
			record.DelayThreshold = s.DelayThreshold
			record.Budget = fmt.Sprintf("%s:%d", s.Budget.Kind, s.Budget.Amount)
			record.RaveTable = a.RaveTable
		}
		records = append(records, record)
	}
	return records
}

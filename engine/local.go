package engine

import (
	"time"

	"mcrave/experiments/metrics"
	"mcrave/game"
	"mcrave/searcher"
	"mcrave/searcher/agent"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ Engine = (*Local)(nil)

type Option func(e *Local)

func WithMaxTurns(turns int) Option {
	return func(e *Local) {
		if turns > 0 {
			e.maxTurns = turns
		}
	}
}

// WithID names the game in logs and records. A random id is used otherwise.
func WithID(id string) Option {
	return func(e *Local) {
		if id != "" {
			e.id = id
		}
	}
}

// Local plays one game between in-process agents, one per seat.
type Local struct {
	id       string
	rules    *game.Rules
	state    *game.State
	agents   []agent.Agent
	maxTurns int
}

func LocalEngine(rules *game.Rules, agents []agent.Agent, options ...Option) (*Local, error) {
	if len(agents) != rules.Seats() {
		return nil, errors.Errorf("number of agents %d does not match number of seats %d", len(agents), rules.Seats())
	}

	e := &Local{
		id:       uuid.NewString(),
		rules:    rules,
		state:    rules.NewState(),
		agents:   agents,
		maxTurns: MaxTurns,
	}
	for _, option := range options {
		option(e)
	}
	return e, nil
}

func (e *Local) State() *game.State {
	return e.state
}

// Run executes the entire game loop until the game ends or the turn limit is hit.
func (e *Local) Run() ([]int, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		ID:           e.id,
		Seats:        e.state.Seats(),
		StartingSeat: e.state.CurrentSeat(),
		StartTime:    time.Now(),
	}
	moveMetrics := []metrics.MoveMetric{}

	log.Info().Str("game", e.id).Msgf("seat %d is starting", e.state.CurrentSeat())

	turn := 1
	for !e.state.IsTerminal() && turn <= e.maxTurns {
		seat := e.state.CurrentSeat()

		action, searchMetric, err := e.agents[seat].FindMove(e.state.Clone())
		if err != nil {
			return nil, gameMetric, moveMetrics, errors.Wrapf(err, "seat %d failed to move on turn %d", seat, turn)
		}
		if !e.rules.IsLegal(e.state, action) {
			fallback := e.rules.LegalActions(e.state, searcher.ActionSpaceDefault)
			log.Warn().Str("game", e.id).Msgf("seat %d chose illegal action %v, playing %v instead", seat, action, fallback[0])
			action = fallback[0]
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         turn,
			Seat:         seat,
			Action:       action.String(),
			SearchMetric: searchMetric,
		})
		log.Debug().Str("game", e.id).Msgf("turn %d: seat %d plays %v", turn, seat, action)

		e.rules.Apply(e.state, action)
		turn++
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	gameMetric.Scores = e.state.Scores()

	if !e.state.IsTerminal() {
		gameMetric.Truncated = true
		log.Info().Str("game", e.id).Msgf("stopped after %d turns without a winner", e.maxTurns)
		return nil, gameMetric, moveMetrics, nil
	}

	gameMetric.Winners = e.state.Winners()
	log.Info().Str("game", e.id).Msgf("game over after %d turns, winners %v with scores %v",
		gameMetric.TotalMoves, gameMetric.Winners, gameMetric.Scores)
	return gameMetric.Winners, gameMetric, moveMetrics, nil
}

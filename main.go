package main

import (
	"context"
	"flag"
	"math"
	"os"
	"os/signal"

	"mcrave/config"
	"mcrave/engine"
	"mcrave/experiments"
	"mcrave/game"
	"mcrave/searcher"
	"mcrave/searcher/agent"

	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"
)

func main() {
	path := flag.String("config", "", "Path to a YAML config file, defaults are used if empty")
	mode := flag.String("mode", "match", "match | experiment")
	seed := flag.Uint64("seed", 0, "Seed for the game and the searches, 0 keeps the configured seeds")
	level := flag.String("log-level", "", "Overrides the configured log level")
	flag.Parse()

	cfg, err := load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if *seed != 0 {
		cfg.Match.Seed = *seed
		cfg.Search.Seed = *seed
	}
	if err := setupLogger(cfg.Log.Level); err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch *mode {
	case "match":
		err = runMatch(cfg)
	case "experiment":
		_, err = experiments.Run(ctx, cfg)
	default:
		err = errors.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

func load(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func setupLogger(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: termenv.EnvColorProfile() == termenv.Ascii,
	})
	return nil
}

// runMatch plays one game with a search agent on every seat.
func runMatch(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	seed := cfg.Match.Seed
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	rules, err := game.NewRules(cfg.Match.Seats, seed, cfg.Match.RulesOptions()...)
	if err != nil {
		return err
	}
	evaluator, err := game.NewHeuristic(cfg.Match.Heuristic)
	if err != nil {
		return err
	}

	agents := make([]agent.Agent, rules.Seats())
	for seat := range agents {
		options, err := cfg.Search.Options()
		if err != nil {
			return err
		}
		if cfg.Search.Seed != 0 {
			options = append(options, searcher.WithSeed(cfg.Search.Seed+uint64(seat)))
		}
		mcts, err := searcher.NewMCTS(rules.Fork(seed^uint64(seat+1)), evaluator, append(options, searcher.WithMetrics())...)
		if err != nil {
			return err
		}
		agents[seat] = agent.NewEvaluationAgent(seat, mcts)
	}

	e, err := engine.LocalEngine(rules, agents, engine.WithMaxTurns(cfg.Match.MaxTurns))
	if err != nil {
		return err
	}
	winners, gameMetric, _, err := e.Run()
	if err != nil {
		return err
	}

	log.Info().Msgf("final scores %v, winners %v", gameMetric.Scores, winners)
	log.Info().Msg(e.State().String())
	return nil
}

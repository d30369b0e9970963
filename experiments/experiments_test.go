package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mcrave/config"
	"mcrave/experiments/metrics"

	"github.com/stretchr/testify/require"
)

func tinyConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Match.Seats = 2
	cfg.Match.HandSize = 3
	cfg.Match.SpareCards = 2
	cfg.Match.Seed = 11

	search := config.DefaultSearch()
	search.Budget = config.BudgetConfig{Kind: "iterations", Amount: 15}
	search.Seed = 3

	cfg.Experiment = config.ExperimentConfig{
		Name:      "tiny",
		Games:     2,
		Parallel:  2,
		OutputDir: t.TempDir(),
		Agents: []config.AgentConfig{
			{ID: 1, Kind: config.AgentMCRave, RaveTable: config.RaveTableReset, Search: search},
			{ID: 2, Kind: config.AgentRandom},
		},
	}
	return cfg
}

func TestRun(t *testing.T) {
	t.Run("plays every game and stores the results", func(t *testing.T) {
		cfg := tinyConfig(t)

		summary, err := Run(context.Background(), cfg)

		require.NoError(t, err)
		require.Equal(t, "tiny", summary.Name)
		require.Equal(t, 2, summary.Games)
		require.Zero(t, summary.Truncated)
		require.Len(t, summary.Agents, 2)
		for _, a := range summary.Agents {
			require.Equal(t, 2, a.Seats)
			require.Equal(t, a.Seats, a.Wins+a.Draws+a.Losses)
		}
		require.Positive(t, summary.Agents[0].IterationsPerSecond)
		require.Zero(t, summary.Agents[1].IterationsPerSecond, "Random agents do not search")

		for _, file := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv", "summary.yaml"} {
			_, err := os.Stat(filepath.Join(summary.Dir, file))
			require.NoError(t, err, file)
		}
	})

	t.Run("rejects an invalid configuration", func(t *testing.T) {
		cfg := tinyConfig(t)
		cfg.Experiment.Parallel = 0

		_, err := Run(context.Background(), cfg)

		require.Error(t, err)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		cfg := tinyConfig(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Run(ctx, cfg)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDefaultMatchUps(t *testing.T) {
	agents := []config.AgentConfig{{ID: 4}, {ID: 5}, {ID: 6}}

	require.Equal(t, [][]int{{4, 5, 5}, {4, 6, 6}}, defaultMatchUps(agents, 3))
	require.Equal(t, [][]int{{4, 4}}, defaultMatchUps(agents[:1], 2))
}

func TestRotate(t *testing.T) {
	require.Equal(t, []int{1, 2, 3}, rotate([]int{1, 2, 3}, 0))
	require.Equal(t, []int{2, 3, 1}, rotate([]int{1, 2, 3}, 1))
	require.Equal(t, []int{1, 2, 3}, rotate([]int{1, 2, 3}, 3))
}

func TestSummarize(t *testing.T) {
	agents := []config.AgentConfig{{ID: 1, Kind: config.AgentMCRave}, {ID: 2, Kind: config.AgentRandom}}
	games := []metrics.GameRecord{
		{Agents: []int{1, 2}, GameMetric: metrics.GameMetric{Winners: []int{0}, Scores: []int{10, 4}}},
		{Agents: []int{2, 1}, GameMetric: metrics.GameMetric{Winners: []int{0, 1}, Scores: []int{6, 6}}},
		{Agents: []int{1, 2}, GameMetric: metrics.GameMetric{Truncated: true, Scores: []int{2, 3}}},
	}
	moves := []metrics.MoveRecord{
		{Agent: 1, MoveMetric: metrics.MoveMetric{SearchMetric: metrics.SearchMetric{Iterations: 100, FMCalls: 400, Duration: 500 * time.Millisecond}}},
		{Agent: 1, MoveMetric: metrics.MoveMetric{SearchMetric: metrics.SearchMetric{Iterations: 100, FMCalls: 400, Duration: 500 * time.Millisecond}}},
		{Agent: 2},
	}

	summary := summarize(agents, games, moves)

	require.Equal(t, 3, summary.Games)
	require.Equal(t, 1, summary.Truncated)
	require.Equal(t, AgentSummary{ID: 1, Kind: config.AgentMCRave, Seats: 3, Wins: 1, Draws: 1, MeanScore: 6,
		IterationsPerSecond: 200, FMCallsPerSecond: 800}, summary.Agents[0])
	require.Equal(t, AgentSummary{ID: 2, Kind: config.AgentRandom, Seats: 3, Draws: 1, Losses: 1, MeanScore: 13.0 / 3}, summary.Agents[1])
}

package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCollector(t *testing.T) {
	t.Run("collects the statistics of one search", func(t *testing.T) {
		c := NewCollector()
		c.Start("search-1")
		c.AddNode(0)
		c.AddNode(1)
		c.AddNode(3)
		c.AddNode(2)
		c.AddIteration()
		c.AddIteration()
		c.AddFMCall()
		c.AddFullPlayout()
		c.AddEmptyRollout()

		m := c.Complete(5, "iterations")

		require.Equal(t, "search-1", m.SearchID)
		require.Equal(t, 2, m.Iterations)
		require.Equal(t, 1, m.FMCalls)
		require.Equal(t, 1, m.FullPlayouts)
		require.Equal(t, 1, m.EmptyRollouts)
		require.Equal(t, 4, m.TreeSize)
		require.Equal(t, 3, m.MaxDepth)
		require.Equal(t, 5, m.RaveEntries)
		require.Equal(t, "iterations", m.StopReason)
	})

	t.Run("start clears the previous search", func(t *testing.T) {
		c := NewCollector()
		c.Start("first")
		c.AddIteration()
		c.AddNode(4)

		c.Start("second")
		m := c.Complete(0, "time")

		require.Zero(t, m.Iterations)
		require.Zero(t, m.MaxDepth)
	})

	t.Run("dummy collector only reports the stop reason", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start("ignored")
		c.AddIteration()

		require.Equal(t, SearchMetric{StopReason: "fm_calls"}, c.Complete(3, "fm_calls"))
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "unit")
	require.NoError(t, err)

	t.Run("agent configs", func(t *testing.T) {
		require.NoError(t, w.WriteAgentRecords([]AgentRecord{{ID: 1, Kind: "mcrave", RaveWeight: 0.5, Budget: "iterations:100", RaveTable: "reset"}}))

		rows := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, "id", rows[0][0])
		require.Equal(t, []string{"1", "mcrave", "0", "0.5", "", "0", "0", "iterations:100", "reset"}, rows[1])
	})

	t.Run("game records", func(t *testing.T) {
		start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		record := GameRecord{
			Game:    7,
			MatchUp: 1,
			Agents:  []int{2, 1},
			GameMetric: GameMetric{
				ID: "g", Winners: []int{0}, Scores: []int{12, 9},
				StartTime: start, EndTime: start.Add(time.Second), Duration: time.Second, TotalMoves: 20,
			},
		}
		require.NoError(t, w.WriteGameRecords([]GameRecord{record}))

		rows := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, []string{"7", "g", "1", "2 1", "0", "0", "12 9", "2024-01-02T03:04:05Z",
			"2024-01-02T03:04:06Z", "1s", "20", "false"}, rows[1])
	})

	t.Run("move records", func(t *testing.T) {
		record := MoveRecord{Game: 7, Agent: 2, MoveMetric: MoveMetric{Step: 1, Seat: 0, Action: "Tempura",
			SearchMetric: SearchMetric{Iterations: 10, StopReason: "iterations"}}}
		require.NoError(t, w.WriteMoveRecords([]MoveRecord{record}))

		rows := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, "Tempura", rows[1][4])
		require.Equal(t, "10", rows[1][7])
		require.Equal(t, "iterations", rows[1][14])
	})

	t.Run("summary", func(t *testing.T) {
		require.NoError(t, w.WriteSummary(map[string]int{"games": 3}))

		data, err := os.ReadFile(filepath.Join(w.Dir(), "summary.yaml"))
		require.NoError(t, err)
		var got map[string]int
		require.NoError(t, yaml.Unmarshal(data, &got))
		require.Equal(t, 3, got["games"])
	})
}

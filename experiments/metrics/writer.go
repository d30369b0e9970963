package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AgentRecord describes one agent configuration taking part in an experiment.
type AgentRecord struct {
	ID             int
	Kind           string
	Exploration    float64
	RaveWeight     float64
	UpdateRule     string
	RolloutLength  int
	DelayThreshold int
	Budget         string
	RaveTable      string
}

type GameRecord struct {
	Game    int
	MatchUp int
	Agents  []int // AgentRecord.ID by seat
	GameMetric
}

type MoveRecord struct {
	Game  int // GameRecord.Game
	Agent int // AgentRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped folder for the experiment under root.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentRecords(records []AgentRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			r.Kind,
			strconv.FormatFloat(r.Exploration, 'g', -1, 64),
			strconv.FormatFloat(r.RaveWeight, 'g', -1, 64),
			r.UpdateRule,
			strconv.Itoa(r.RolloutLength),
			strconv.Itoa(r.DelayThreshold),
			r.Budget,
			r.RaveTable,
		})
	}
	header := []string{"id", "kind", "exploration", "rave_weight", "update_rule", "rollout_length", "delay_threshold", "budget", "rave_table"}
	return w.writeCSV("agent_configs.csv", "agent configs", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Game),
			r.ID,
			strconv.Itoa(r.MatchUp),
			joinInts(r.Agents),
			strconv.Itoa(r.StartingSeat),
			joinInts(r.Winners),
			joinInts(r.Scores),
			r.StartTime.Format(time.RFC3339),
			r.EndTime.Format(time.RFC3339),
			r.Duration.String(),
			strconv.Itoa(r.TotalMoves),
			strconv.FormatBool(r.Truncated),
		})
	}
	header := []string{"game", "id", "matchup", "agents", "starting_seat", "winners", "scores",
		"start_time", "end_time", "duration", "total_moves", "truncated"}
	return w.writeCSV("game_records.csv", "game records", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Game),
			strconv.Itoa(r.Step),
			strconv.Itoa(r.Seat),
			strconv.Itoa(r.Agent),
			r.Action,
			r.SearchID,
			r.Duration.String(),
			strconv.Itoa(r.Iterations),
			strconv.Itoa(r.FMCalls),
			strconv.Itoa(r.FullPlayouts),
			strconv.Itoa(r.EmptyRollouts),
			strconv.Itoa(r.TreeSize),
			strconv.Itoa(r.MaxDepth),
			strconv.Itoa(r.RaveEntries),
			r.StopReason,
		})
	}
	header := []string{"game", "step", "seat", "agent", "action", "search", "duration", "iterations", "fm_calls",
		"full_playouts", "empty_rollouts", "tree_size", "max_depth", "rave_entries", "stop_reason"}
	return w.writeCSV("move_records.csv", "move records", header, rows)
}

// WriteSummary stores v as summary.yaml.
func (w *Writer) WriteSummary(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	err = os.WriteFile(filepath.Join(w.baseDir, "summary.yaml"), data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func (w *Writer) writeCSV(file, what string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(w.baseDir, file))
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", what, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", what, err)
	}
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", what, err)
		}
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", what, err)
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

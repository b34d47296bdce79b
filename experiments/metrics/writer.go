package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type AgentConfig struct {
	ID          int
	Goroutines  int
	Simulations int
	Depth       int
	Exploration float64
}

type EpisodeRecord struct {
	ID    int
	Agent int // AgentConfig.ID
	EpisodeMetric
}

type StepRecord struct {
	Episode int // EpisodeRecord.ID
	StepMetric
}

type Writer struct {
	baseDir string
}

func NewWriter(root, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp and a run id
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	run := uuid.NewString()[:8]
	baseDir := filepath.Join(root, name, timestamp+"-"+run)
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

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "goroutines", "simulations", "depth", "exploration"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Goroutines),
			strconv.Itoa(config.Simulations),
			strconv.Itoa(config.Depth),
			strconv.FormatFloat(config.Exploration, 'g', -1, 64),
		})
	}
	return w.write("agent_configs.csv", "agent config", header, rows)
}

func (w *Writer) WriteEpisodeRecords(records []EpisodeRecord) error {
	header := []string{"id", "agent", "start_time", "end_time", "duration", "steps", "return", "discounted_return"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.Steps),
			strconv.FormatFloat(record.Return, 'f', 4, 64),
			strconv.FormatFloat(record.DiscountedReturn, 'f', 4, 64),
		})
	}
	return w.write("episode_records.csv", "episode record", header, rows)
}

func (w *Writer) WriteStepRecords(records []StepRecord) error {
	header := []string{"episode", "step", "action", "reward", "duration", "simulations", "expansions", "max_depth", "is_tree_reused"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Episode),
			strconv.Itoa(record.Step),
			record.Action,
			strconv.FormatFloat(record.Reward, 'f', 4, 64),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Expansions),
			strconv.Itoa(record.MaxDepth),
			strconv.FormatBool(record.TreeReused),
		})
	}
	return w.write("step_records.csv", "step record", header, rows)
}

func (w *Writer) write(file, kind string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", kind, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	// Write header
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", kind, err)
	}

	// Write each row
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", kind, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s file: %w", kind, err)
	}
	return nil
}

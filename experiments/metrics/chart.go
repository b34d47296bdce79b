package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteReturnsChart renders one line per agent with the discounted return of
// each of its episodes, in the order they were played.
func (w *Writer) WriteReturnsChart(configs []AgentConfig, records []EpisodeRecord) error {
	byAgent := make(map[int][]float64, len(configs))
	longest := 0
	for _, record := range records {
		byAgent[record.Agent] = append(byAgent[record.Agent], record.DiscountedReturn)
		longest = max(longest, len(byAgent[record.Agent]))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Discounted return per episode",
			Subtitle: "one line per agent configuration",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	episodes := make([]string, 0, longest)
	for i := 1; i <= longest; i++ {
		episodes = append(episodes, fmt.Sprintf("%d", i))
	}
	line.SetXAxis(episodes)

	for _, config := range configs {
		items := make([]opts.LineData, 0, len(byAgent[config.ID]))
		for _, v := range byAgent[config.ID] {
			items = append(items, opts.LineData{Value: v})
		}
		name := fmt.Sprintf("agent %d (m=%d d=%d c=%g)", config.ID, config.Simulations, config.Depth, config.Exploration)
		line.AddSeries(name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(filepath.Join(w.baseDir, "returns.html"))
	if err != nil {
		return fmt.Errorf("failed to create returns chart: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render returns chart: %w", err)
	}
	return nil
}

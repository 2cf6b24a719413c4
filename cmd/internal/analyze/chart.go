package analyze

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/fen"
)

func writeChart(path string, p *chess.Position, res *mcts.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return renderChart(f, p, res)
}

// renderChart draws the visit count and mean value of each root move,
// most visited first.
func renderChart(w io.Writer, p *chess.Position, res *mcts.Result) error {
	stats := append([]mcts.MoveStats(nil), res.Children...)
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Visits > stats[j].Visits
	})

	var moves []string
	visits := make([]opts.BarData, 0, len(stats))
	values := make([]opts.BarData, 0, len(stats))
	for _, s := range stats {
		moves = append(moves, s.Move.String())
		visits = append(visits, opts.BarData{Value: s.Visits})
		values = append(values, opts.BarData{Value: fmt.Sprintf("%.3f", s.Value)})
	}

	visitBar := charts.NewBar()
	visitBar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("root visits (%d playouts)", res.Playouts),
			Subtitle: fen.FormatFEN(p),
		}),
	)
	visitBar.SetXAxis(moves).AddSeries("visits", visits)

	valueBar := charts.NewBar()
	valueBar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "root mean value",
		}),
	)
	valueBar.SetXAxis(moves).AddSeries("value", values)

	page := components.NewPage()
	page.AddCharts(visitBar, valueBar)
	return page.Render(w)
}

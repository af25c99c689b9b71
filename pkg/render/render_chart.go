// Render the prevalence timeline as a PNG

package render

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"

	"github.com/yumyai/mutlookup/logger"
	"github.com/yumyai/mutlookup/pkg/model"
)

var (
	ErrNothingToPlot   = errors.New("mutation not found in any source")
	ErrNotEnoughPoints = errors.New("a timeline needs at least two periods")
)

var (
	ChartWidth  = 1024
	ChartHeight = 480
)

const fillAlpha uint8 = 51 // 20% opacity

var sourceColors = map[model.Source]drawing.Color{
	model.SourceGISAID:  drawing.ColorFromHex("9400D3"), // darkviolet
	model.SourceGenBank: drawing.ColorFromHex("4682B4"), // steelblue
}

var gridStyle = chart.Style{
	StrokeColor: drawing.ColorFromHex("D3D3D3"),
	StrokeWidth: 1,
}

// RenderChart draws one line per source that matched. Sources that were not
// found are left out of the chart.
func RenderChart(w io.Writer, res *model.LookupResult) error {
	graph, err := buildChart(res)
	if err != nil {
		return err
	}
	logger.Debug("Rendering chart",
		zap.String(logger.FieldProtein, string(res.Protein)),
		zap.Strings(logger.FieldTokens, res.AdjustedTokens),
		zap.Int("series", len(graph.Series)),
	)
	return graph.Render(chart.PNG, w)
}

// Chartable reports whether RenderChart can draw res: some source matched
// and every matched series spans at least two periods.
func Chartable(res *model.LookupResult) bool {
	return chartError(res) == nil
}

func chartError(res *model.LookupResult) error {
	if res == nil || !res.AnyFound() {
		return ErrNothingToPlot
	}
	for _, r := range res.Results {
		if r.Found && len(r.Series) < 2 {
			return ErrNotEnoughPoints
		}
	}
	return nil
}

func buildChart(res *model.LookupResult) (*chart.Chart, error) {
	if err := chartError(res); err != nil {
		return nil, err
	}

	var (
		names  []string
		colors []drawing.Color
		xs     [][]time.Time
		ys     [][]float64
	)
	for _, r := range res.Results {
		if !r.Found {
			continue
		}
		x := make([]time.Time, len(r.Series))
		y := make([]float64, len(r.Series))
		for i, pc := range r.Series {
			x[i] = pc.Period.First
			y[i] = pc.Value(res.Mode)
		}
		names = append(names, r.Source.DisplayName())
		colors = append(colors, sourceColors[r.Source])
		xs = append(xs, x)
		ys = append(ys, y)
	}

	yAxis := chart.YAxis{
		Name:           yAxisName(res.Mode),
		GridMajorStyle: gridStyle,
	}
	if res.Scale == model.ScaleLog {
		lo, hi := toLog10(ys)
		yAxis.Range = &chart.ContinuousRange{Min: lo, Max: hi}
		yAxis.Ticks = logTicks(lo, hi)
	} else {
		yAxis.Range = &chart.ContinuousRange{Min: 0, Max: math.Max(maxOf(ys), 1)}
	}

	graph := &chart.Chart{
		Title:  chartTitle(res),
		Width:  ChartWidth,
		Height: ChartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat(axisLayout(res.Binning)),
			GridMajorStyle: gridStyle,
		},
		YAxis: yAxis,
	}
	for i := range names {
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    names[i],
			XValues: xs[i],
			YValues: ys[i],
			Style: chart.Style{
				StrokeColor: colors[i],
				StrokeWidth: 2,
				FillColor:   colors[i].WithAlpha(fillAlpha),
			},
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}

	return graph, nil
}

func chartTitle(res *model.LookupResult) string {
	binning := string(res.Binning)
	if binning != "" {
		binning = strings.ToUpper(binning[:1]) + binning[1:]
	}
	return "Timeline of " + strings.Join(res.AdjustedTokens, ", ") + " Occurrence (" + binning + ")"
}

func yAxisName(mode model.CountMode) string {
	if mode == model.ModeAbsolute {
		return "Number of Sequences"
	}
	return "Prevalence (%)"
}

func axisLayout(b model.Binning) string {
	if b == model.BinMonthly {
		return "2006-01"
	}
	return "2006-01-02"
}

func maxOf(ys [][]float64) float64 {
	m := 0.0
	for _, y := range ys {
		for _, v := range y {
			m = math.Max(m, v)
		}
	}
	return m
}

// toLog10 rewrites ys in place as log10 values and returns the decade range
// covering them. Zeros sit on the bottom of the range.
func toLog10(ys [][]float64) (lo, hi float64) {
	minPos, maxV := math.Inf(1), 0.0
	for _, y := range ys {
		for _, v := range y {
			if v > 0 {
				minPos = math.Min(minPos, v)
				maxV = math.Max(maxV, v)
			}
		}
	}
	if math.IsInf(minPos, 1) {
		minPos, maxV = 1, 1
	}

	lo = math.Floor(math.Log10(minPos))
	hi = math.Ceil(math.Log10(maxV))
	if hi <= lo {
		hi = lo + 1
	}

	for _, y := range ys {
		for i, v := range y {
			if v > 0 {
				y[i] = math.Log10(v)
			} else {
				y[i] = lo
			}
		}
	}
	return lo, hi
}

func logTicks(lo, hi float64) []chart.Tick {
	var ticks []chart.Tick
	for e := lo; e <= hi; e++ {
		ticks = append(ticks, chart.Tick{
			Value: e,
			Label: strconv.FormatFloat(math.Pow(10, e), 'g', -1, 64),
		})
	}
	return ticks
}

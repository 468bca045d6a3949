package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	ErrNoData        = errors.New("chart has no data to draw")
	ErrNotRenderable = errors.New("chart type is drawn client-side")
)

// palette is shared by every renderer so series keep their colours across
// chart types.
var palette = []string{
	"4F46E5", "10B981", "F59E0B", "EF4444", "8B5CF6",
	"06B6D4", "EC4899", "84CC16", "F97316", "6366F1",
}

func color(i int) drawing.Color {
	return drawing.ColorFromHex(palette[i%len(palette)])
}

// pointStyle draws points only, with no connecting line.
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 0,
		DotWidth:    5,
		DotColor:    col,
	}
}

// RenderPNG draws bar, pie, line and scatter configs. Treemaps and
// sunbursts return ErrNotRenderable; an empty or all-zero config returns
// ErrNoData.
func RenderPNG(cfg *Config, w io.Writer, width, height int) error {
	if cfg == nil || cfg.Empty() {
		return ErrNoData
	}
	switch cfg.Type {
	case Bar:
		return renderBar(cfg, w, width, height)
	case Pie:
		return renderPie(cfg, w, width, height)
	case Line:
		return renderLine(cfg, w, width, height)
	case Scatter:
		return renderScatter(cfg, w, width, height)
	case Treemap, Sunburst:
		return fmt.Errorf("%s: %w", cfg.Type, ErrNotRenderable)
	default:
		return fmt.Errorf("unknown chart type %q", cfg.Type)
	}
}

func renderBar(cfg *Config, w io.Writer, width, height int) error {
	var (
		bars    []gochart.Value
		values  []float64
		nonZero bool
	)
	for i, s := range cfg.Series {
		for _, p := range s.Points {
			label := p.Label
			if len(cfg.Series) > 1 {
				label = p.Label + " / " + s.Name
			}
			if p.Y != 0 {
				nonZero = true
			}
			values = append(values, p.Y)
			bars = append(bars, gochart.Value{
				Label: label,
				Value: p.Y,
				Style: gochart.Style{FillColor: color(i), StrokeColor: color(i)},
			})
		}
	}
	if !nonZero {
		return ErrNoData
	}

	bc := gochart.BarChart{
		Title:      cfg.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis:      gochart.YAxis{Range: zeroBasedRange(values)},
		Bars:       bars,
	}
	return bc.Render(gochart.PNG, w)
}

func renderPie(cfg *Config, w io.Writer, width, height int) error {
	var values []gochart.Value
	for i, p := range cfg.Series[0].Points {
		// Pie slices cannot be negative or empty.
		if p.Y <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s %s", p.Label, FormatAmount(p.Y)),
			Value: p.Y,
			Style: gochart.Style{FillColor: color(i)},
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	pc := gochart.PieChart{
		Title:  cfg.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return pc.Render(gochart.PNG, w)
}

func renderLine(cfg *Config, w io.Writer, width, height int) error {
	var (
		series []gochart.Series
		ticks  []gochart.Tick
		ys     []float64
	)
	for i, s := range cfg.Series {
		xs := make([]float64, len(s.Points))
		yv := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j] = float64(j)
			yv[j] = p.Y
			if i == 0 {
				ticks = append(ticks, gochart.Tick{Value: float64(j), Label: p.Label})
			}
		}
		ys = append(ys, yv...)
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: yv,
			Style:   gochart.Style{StrokeColor: color(i), StrokeWidth: 2, DotColor: color(i), DotWidth: 4},
		})
	}
	if len(ticks) < 2 {
		return ErrNoData
	}

	ch := gochart.Chart{
		Title:      cfg.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: cfg.XAxis, Ticks: ticks},
		YAxis:      gochart.YAxis{Name: cfg.YAxis, Range: paddedRange(ys)},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}

func renderScatter(cfg *Config, w io.Writer, width, height int) error {
	points := cfg.Series[0].Points
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	ch := gochart.Chart{
		Title:      cfg.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: cfg.XAxis, Range: paddedRange(xs)},
		YAxis:      gochart.YAxis{Name: cfg.YAxis, Range: paddedRange(ys)},
		Series: []gochart.Series{gochart.ContinuousSeries{
			Name:    cfg.Series[0].Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(color(0)),
		}},
	}
	return ch.Render(gochart.PNG, w)
}

// zeroBasedRange spans every value and 0, so a single bar or equal bars
// still have a height.
func zeroBasedRange(vals []float64) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return &gochart.ContinuousRange{Min: 0, Max: 1}
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

// paddedRange widens a flat range so the renderer never sees a zero delta.
func paddedRange(vals []float64) *gochart.ContinuousRange {
	if len(vals) == 0 {
		return &gochart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

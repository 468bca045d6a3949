// Package chart turns engine aggregates into render-ready chart configs and
// draws the flat chart types as PNG images.
package chart

import (
	"math"
	"net/url"

	"github.com/duskroseSouthAfrica/sheetdash/internal/engine"
)

// Type names a chart kind.
type Type string

const (
	Bar      Type = "bar"
	Pie      Type = "pie"
	Line     Type = "line"
	Scatter  Type = "scatter"
	Treemap  Type = "treemap"
	Sunburst Type = "sunburst"
)

// Config is a chart ready for a renderer. Flat charts use Series;
// hierarchical charts use Nodes.
type Config struct {
	Type   Type     `json:"type"`
	Title  string   `json:"title"`
	XAxis  string   `json:"xAxis,omitempty"`
	YAxis  string   `json:"yAxis,omitempty"`
	Series []Series `json:"series,omitempty"`
	Nodes  []Node   `json:"nodes,omitempty"`
}

// Series is one named run of points.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Point is a labelled value. X is only meaningful for scatter charts.
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y"`
}

// Node is one box of a treemap or ring segment of a sunburst. Parent is ""
// for top-level nodes; Value of a parent is the sum of its children.
type Node struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Parent string  `json:"parent"`
	Value  float64 `json:"value"`
}

// Empty reports whether the config has nothing to draw.
func (c *Config) Empty() bool {
	if len(c.Nodes) > 0 {
		return false
	}
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// FromGroups builds a bar or pie chart of group totals.
func FromGroups(kind Type, title, xAxis, yAxis string, groups []engine.GroupTotal) *Config {
	points := make([]Point, 0, len(groups))
	for _, g := range groups {
		points = append(points, Point{Label: g.Key, Y: RoundTo2(g.Total)})
	}
	return &Config{
		Type:   kind,
		Title:  title,
		XAxis:  xAxis,
		YAxis:  yAxis,
		Series: []Series{{Name: yAxis, Points: points}},
	}
}

// FromPaths builds a treemap or sunburst from two-level path totals.
// Parents appear before their children, in first-seen order. Ids are the
// path-escaped labels joined by "/", so a label holding "/" cannot collide
// with a leaf id.
func FromPaths(kind Type, title string, paths []engine.PathTotal) *Config {
	cfg := &Config{Type: kind, Title: title}
	parents := make(map[string]int)
	for _, p := range paths {
		if len(p.Path) != 2 {
			continue
		}
		outer, inner := p.Path[0], p.Path[1]
		parentID := url.PathEscape(outer)
		pos, ok := parents[outer]
		if !ok {
			pos = len(cfg.Nodes)
			parents[outer] = pos
			cfg.Nodes = append(cfg.Nodes, Node{ID: parentID, Label: outer})
		}
		cfg.Nodes[pos].Value += p.Total
		cfg.Nodes = append(cfg.Nodes, Node{
			ID:     parentID + "/" + url.PathEscape(inner),
			Label:  inner,
			Parent: parentID,
			Value:  RoundTo2(p.Total),
		})
	}
	for i := range cfg.Nodes {
		cfg.Nodes[i].Value = RoundTo2(cfg.Nodes[i].Value)
	}
	return cfg
}

// FromSelection builds a bar or line chart with one series per data column
// over the selected row labels.
func FromSelection(kind Type, title string, sel *engine.Selection) *Config {
	cfg := &Config{Type: kind, Title: title, XAxis: sel.LabelHeader}
	for _, s := range sel.Series {
		points := make([]Point, len(s.Values))
		for i, v := range s.Values {
			points[i] = Point{Label: sel.Labels[i], Y: RoundTo2(v)}
		}
		cfg.Series = append(cfg.Series, Series{Name: s.Name, Points: points})
	}
	return cfg
}

// SelectionPie shares out the first data column across the selected rows.
func SelectionPie(title string, sel *engine.Selection) *Config {
	cfg := &Config{Type: Pie, Title: title, XAxis: sel.LabelHeader}
	if len(sel.Series) == 0 {
		return cfg
	}
	first := sel.Series[0]
	points := make([]Point, len(first.Values))
	for i, v := range first.Values {
		points[i] = Point{Label: sel.Labels[i], Y: RoundTo2(v)}
	}
	cfg.YAxis = first.Name
	cfg.Series = []Series{{Name: first.Name, Points: points}}
	return cfg
}

// SelectionScatter plots the first data column against the second, one
// point per selected row. It returns nil with fewer than two data columns.
func SelectionScatter(title string, sel *engine.Selection) *Config {
	x, y, err := sel.ScatterPair()
	if err != nil {
		return nil
	}
	points := make([]Point, len(x.Values))
	for i := range x.Values {
		points[i] = Point{Label: sel.Labels[i], X: x.Values[i], Y: y.Values[i]}
	}
	return &Config{
		Type:   Scatter,
		Title:  title,
		XAxis:  x.Name,
		YAxis:  y.Name,
		Series: []Series{{Name: y.Name + " vs " + x.Name, Points: points}},
	}
}

// RoundTo2 rounds to cents.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

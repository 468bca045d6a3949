package chart

import (
	"fmt"

	"github.com/duskroseSouthAfrica/sheetdash/internal/engine"
)

// Named pairs a chart with the slug used in URLs.
type Named struct {
	Name   string
	Config *Config
}

// Find returns the chart called name.
func Find(charts []Named, name string) (*Config, bool) {
	for _, c := range charts {
		if c.Name == name {
			return c.Config, true
		}
	}
	return nil, false
}

// ForDashboard builds the filter dashboard charts: bar and pie of the
// measure by entity, treemap and sunburst of project then entity. Charts
// whose data is missing are left out.
func ForDashboard(roles engine.Roles, dash *engine.Dashboard) []Named {
	measure := dash.Summary.Measure
	var charts []Named
	if len(dash.ByEntity) > 0 {
		charts = append(charts,
			Named{Name: "bar", Config: FromGroups(Bar,
				fmt.Sprintf("Total %s by %s", measure, roles.Entity),
				roles.Entity, measure, dash.ByEntity)},
			Named{Name: "pie", Config: FromGroups(Pie,
				fmt.Sprintf("Distribution of %s by %s", measure, roles.Entity),
				roles.Entity, measure, dash.ByEntity)},
		)
	}
	if dash.HasHierarchy {
		charts = append(charts,
			Named{Name: "treemap", Config: FromPaths(Treemap,
				fmt.Sprintf("%s by %s and %s", measure, roles.Category, roles.Entity), dash.Hierarchy)},
			Named{Name: "sunburst", Config: FromPaths(Sunburst,
				fmt.Sprintf("%s hierarchy: %s > %s", measure, roles.Category, roles.Entity), dash.Hierarchy)},
		)
	}
	return charts
}

// ForSelection builds the row-selection charts. Scatter is only included
// when the selection has at least two data columns.
func ForSelection(sel *engine.Selection) []Named {
	charts := []Named{
		{Name: "bar", Config: FromSelection(Bar, "Comparison of selected rows", sel)},
		{Name: "line", Config: FromSelection(Line, "Trend across selected rows", sel)},
		{Name: "pie", Config: SelectionPie("Share of selected rows", sel)},
	}
	if scatter := SelectionScatter("Correlation", sel); scatter != nil {
		charts = append(charts, Named{Name: "scatter", Config: scatter})
	}
	return charts
}

// templates.go
package web

import (
	"embed"
	"html/template"

	"github.com/duskroseSouthAfrica/sheetdash/internal/chart"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"contains": func(slice []int, item int) bool {
		for _, s := range slice {
			if s == item {
				return true
			}
		}
		return false
	},
	"formatSize":   chart.FormatSize,
	"formatNumber": chart.FormatAmount,
}

func parseTemplates() (*template.Template, error) {
	return template.New("sheetdash").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
}

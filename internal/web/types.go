// types.go
package web

import (
	"github.com/duskroseSouthAfrica/sheetdash/internal/chart"
	"github.com/duskroseSouthAfrica/sheetdash/internal/table"
)

type UploadPage struct {
	Error       string
	MaxFileSize int64
}

type Grid struct {
	Headers     []string
	Rows        [][]string
	NumericCols []int
}

type NoticeView struct {
	Level   string
	Message string
}

type FilterView struct {
	Param    string
	Label    string
	Options  []string
	Selected string
}

type SummaryView struct {
	Records int
	Measure string
	Total   float64
}

type ChartView struct {
	Name   string
	Title  string
	Type   chart.Type
	PNGURL string
	Nodes  []chart.Node
}

type RowOption struct {
	Index    int
	Label    string
	Selected bool
}

type DashboardPage struct {
	SessionID  string
	FileName   string
	FileSize   int64
	UploadedAt string
	RowCount   int
	Dropped    []string
	Notices    []NoticeView
	Preview    Grid
	Stats      []table.Stat
	Filters    []FilterView
	Summary    SummaryView
	Charts     []ChartView

	RowOptions         []RowOption
	SelectionNotices   []NoticeView
	SelectionCharts    []ChartView
	SelectionSubmitted bool
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

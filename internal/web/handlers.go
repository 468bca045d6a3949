// handlers.go
package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/duskroseSouthAfrica/sheetdash/internal/chart"
	"github.com/duskroseSouthAfrica/sheetdash/internal/engine"
	"github.com/duskroseSouthAfrica/sheetdash/internal/table"
)

// filterParams maps query parameters to the roles they filter.
var filterParams = []struct {
	param string
	role  engine.Role
}{
	{"entity", engine.Entity},
	{"period", engine.Period},
	{"category", engine.Category},
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	s.renderUpload(w, r, http.StatusOK, "")
}

func (s *Server) renderUpload(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page := UploadPage{Error: msg, MaxFileSize: s.cfg.MaxFileSize}
	if err := s.templates.ExecuteTemplate(w, "upload.html", page); err != nil {
		slog.ErrorContext(r.Context(), "template error", "template", "upload.html", "error", err)
	}
}

// displayHandler loads an uploaded file into a fresh session.
func (s *Server) displayHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(s.cfg.MaxFileSize); err != nil {
		s.renderUpload(w, r, http.StatusBadRequest, "File too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.renderUpload(w, r, http.StatusBadRequest, "Failed to read file")
		return
	}
	defer file.Close()

	if !table.SupportedExtension(header.Filename) {
		s.renderUpload(w, r, http.StatusBadRequest, "Invalid file type")
		return
	}
	if header.Size > s.cfg.MaxFileSize {
		s.renderUpload(w, r, http.StatusBadRequest, "File too large")
		return
	}

	raw, err := table.Load(file, header.Filename)
	if err != nil {
		slog.WarnContext(r.Context(), "upload rejected", "file", header.Filename, "error", err)
		s.renderUpload(w, r, http.StatusBadRequest, fmt.Sprintf("Could not read %s: %v", header.Filename, err))
		return
	}
	if raw.NumRows() > s.cfg.MaxRows {
		s.renderUpload(w, r, http.StatusBadRequest, fmt.Sprintf("Too many rows (> %d)", s.cfg.MaxRows))
		return
	}

	ds, notices, err := engine.Prepare(raw, engine.PrepareOptions{Rules: s.rules, StrictPeriods: s.cfg.StrictPeriods})
	if err != nil {
		s.renderUpload(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// A new upload replaces whatever the browser was looking at.
	s.sessions.drop(r)
	sess := engine.NewSession(newSessionID(), header.Filename, header.Size, ds, notices)
	s.sessions.save(sess)
	setSessionCookie(w, sess.ID)
	slog.InfoContext(r.Context(), "file uploaded",
		"session", sess.ID,
		"file", header.Filename,
		"rows", raw.NumRows(),
		"entity", ds.Roles.Entity,
		"category", ds.Roles.Category,
		"measure", ds.Roles.PrimaryMeasure(),
		"period", ds.Roles.Period,
	)
	engine.Log(notices, "session", sess.ID)

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// dashboardHandler applies filters from the query string, or keeps the
// session's last filter when none are given, and renders every section.
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.fromRequest(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if sel, given := parseFilter(r.URL.Query()); given {
		sess = sess.WithFilter(sel)
		s.sessions.save(sess)
	}

	dash := sess.Dashboard()
	engine.Log(dash.Notices, "session", sess.ID)
	page := s.dashboardPage(sess, dash)

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", page); err != nil {
		slog.ErrorContext(r.Context(), "template error", "template", "dashboard.html", "error", err)
		http.Error(w, "Failed to display data", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// selectHandler stores the submitted row selection and goes back to the
// dashboard, where the selection charts are built.
func (s *Server) selectHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.fromRequest(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	rows, err := parseRows(r.Form["rows"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.sessions.save(sess.WithRows(rows))
	http.Redirect(w, r, "/dashboard#selection", http.StatusSeeOther)
}

// chartImageHandler renders one chart of the current session as PNG.
func (s *Server) chartImageHandler(w http.ResponseWriter, r *http.Request) {
	cfg, status, err := s.lookupChart(r, strings.TrimSuffix(r.PathValue("name"), ".png"))
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderPNG(cfg, &buf, chartWidth, chartHeight); err != nil {
		if errors.Is(err, chart.ErrNoData) || errors.Is(err, chart.ErrNotRenderable) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "chart render failed", "chart", cfg.Type, "error", err)
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// lookupChart finds a chart by view ("dashboard" or "selection") and name,
// recomputing it from the session state.
func (s *Server) lookupChart(r *http.Request, name string) (*chart.Config, int, error) {
	sess, ok := s.sessions.fromRequest(r)
	if !ok {
		return nil, http.StatusUnauthorized, errors.New("no active session; upload a file first")
	}

	var charts []chart.Named
	switch view := r.PathValue("view"); view {
	case "dashboard":
		charts = chart.ForDashboard(sess.Dataset.Roles, sess.Dashboard())
	case "selection":
		sel, err := sess.Dataset.Select(sess.Rows, s.cfg.SelectionOptions())
		if err != nil {
			return nil, http.StatusUnprocessableEntity, err
		}
		charts = chart.ForSelection(sel)
	default:
		return nil, http.StatusNotFound, fmt.Errorf("unknown chart view %q", view)
	}

	cfg, ok := chart.Find(charts, name)
	if !ok {
		return nil, http.StatusNotFound, fmt.Errorf("chart %q is not available", name)
	}
	return cfg, http.StatusOK, nil
}

func (s *Server) dashboardPage(sess *engine.Session, dash *engine.Dashboard) DashboardPage {
	ds := sess.Dataset
	preview := ds.Preview()
	page := DashboardPage{
		SessionID:  sess.ID,
		FileName:   sess.FileName,
		FileSize:   sess.FileSize,
		UploadedAt: sess.UploadedAt.Format("January 2, 2006 at 3:04 PM"),
		RowCount:   ds.Table.NumRows(),
		Dropped:    ds.Dropped,
		Notices:    noticeViews(append(append([]engine.Notice(nil), sess.Notices...), dash.Notices...)),
		Preview: Grid{
			Headers:     preview.Headers(),
			Rows:        preview.Strings(),
			NumericCols: table.NumericColumns(ds.Table),
		},
		Stats: table.DescribeAll(ds.Table),
		Summary: SummaryView{
			Records: dash.Summary.Records,
			Measure: dash.Summary.Measure,
			Total:   dash.Summary.Total,
		},
		Charts: chartViews("dashboard", chart.ForDashboard(ds.Roles, dash)),
	}

	for _, fp := range filterParams {
		col := ds.Roles.Column(fp.role)
		if col == "" {
			continue
		}
		selected := dash.Filter[fp.role]
		if selected == "" {
			selected = engine.All
		}
		page.Filters = append(page.Filters, FilterView{
			Param:    fp.param,
			Label:    "Select " + col,
			Options:  ds.Options(fp.role),
			Selected: selected,
		})
	}

	chosen := make(map[int]bool, len(sess.Rows))
	for _, r := range sess.Rows {
		chosen[r] = true
	}
	// Row selection indexes the uploaded table, so label options from it.
	raw := ds.Raw.Columns
	for i := 0; i < ds.Raw.NumRows(); i++ {
		label := ""
		if len(raw) > 0 {
			label = raw[0].Values[i].String()
		}
		page.RowOptions = append(page.RowOptions, RowOption{Index: i, Label: label, Selected: chosen[i]})
	}

	if sess.RowsSubmitted() {
		page.SelectionSubmitted = true
		sel, err := ds.Select(sess.Rows, s.cfg.SelectionOptions())
		if err != nil {
			n := engine.SelectionNotice(err)
			engine.Log([]engine.Notice{n}, "session", sess.ID)
			page.SelectionNotices = noticeViews([]engine.Notice{n})
		} else {
			page.SelectionCharts = chartViews("selection", chart.ForSelection(sel))
		}
	}
	return page
}

func chartViews(view string, charts []chart.Named) []ChartView {
	views := make([]ChartView, 0, len(charts))
	for _, c := range charts {
		v := ChartView{Name: c.Name, Title: c.Config.Title, Type: c.Config.Type}
		switch c.Config.Type {
		case chart.Treemap, chart.Sunburst:
			v.Nodes = c.Config.Nodes
		default:
			v.PNGURL = "/chart/" + view + "/" + c.Name + ".png"
		}
		views = append(views, v)
	}
	return views
}

func noticeViews(notices []engine.Notice) []NoticeView {
	views := make([]NoticeView, 0, len(notices))
	for _, n := range notices {
		views = append(views, NoticeView{Level: n.Level.String(), Message: n.Message()})
	}
	return views
}

// parseFilter reads entity, period and category parameters. given is false
// when none of them is present.
func parseFilter(q url.Values) (engine.FilterSelection, bool) {
	sel := engine.FilterSelection{}
	given := false
	for _, fp := range filterParams {
		if !q.Has(fp.param) {
			continue
		}
		given = true
		sel[fp.role] = strings.TrimSpace(q.Get(fp.param))
	}
	return sel, given
}

func parseRows(values []string) ([]int, error) {
	rows := make([]int, 0, len(values))
	for _, v := range values {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid row index %q", v)
		}
		rows = append(rows, i)
	}
	return rows, nil
}

// api.go
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/duskroseSouthAfrica/sheetdash/internal/engine"
)

// Version is reported by the health endpoint. The CLI sets it at startup.
var Version = "dev"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   Version,
	})
}

// chartJSONHandler returns a chart configuration for client-side rendering.
// Treemap and sunburst are only available this way.
func (s *Server) chartJSONHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	cfg, status, err := s.lookupChart(r, name)
	if err != nil {
		msg := err.Error()
		if status == http.StatusNotFound && r.PathValue("view") == "dashboard" && (name == "treemap" || name == "sunburst") {
			msg = engine.ErrNoHierarchy.Error()
		}
		writeJSON(w, status, APIResponse{Success: false, Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: cfg})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/ecolens/binscan/internal/report"
	"github.com/ecolens/binscan/internal/session"
)

// HandleReport offers the current result as a downloadable JSON document.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.session.Snapshot()
	if snap.Mode != session.ModeResult || snap.Result == nil {
		h.writeError(w, "No scan result available", http.StatusNotFound)
		return
	}

	now := time.Now()
	doc := report.Build(snap.SourceFile, snap.Preview, snap.Result, now)
	data, err := report.Marshal(doc)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.ExportName(now)+`"`)
	w.Write(data) //nolint:errcheck // best effort once headers are out
}

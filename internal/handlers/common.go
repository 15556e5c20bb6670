package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecolens/binscan/internal/acquire"
	"github.com/ecolens/binscan/internal/classify"
	"github.com/ecolens/binscan/internal/scan"
	"github.com/ecolens/binscan/internal/session"
	"github.com/ecolens/binscan/internal/storage"
)

type Handler struct {
	session     *session.Controller
	acquisition *acquire.Manager
	submitter   *scan.Submitter
	previews    *storage.PreviewStore
	classifier  *classify.Service
}

func New() *Handler {
	previews := storage.New()
	acquisition := acquire.NewManager(previews, acquire.NewMJPEGDevice())
	ctl := session.New(previews.Delete, acquisition.CloseCamera)

	return &Handler{
		session:     ctl,
		acquisition: acquisition,
		submitter:   scan.NewSubmitter(scan.ResolveBaseURL()),
		previews:    previews,
		classifier:  classify.NewService(),
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// startScan moves the session into scanning and launches the submission.
// The controller's mode guard rejects overlapping acquisitions.
func (h *Handler) startScan(p acquire.Payload) error {
	gen, err := h.session.BeginScan(p.Name, p.Preview)
	if err != nil {
		return err
	}
	// The submission outlives the request; the generation token protects a
	// session that gets reset before it finishes.
	go h.submitter.Submit(context.Background(), h.session, gen, p.Data, p.Name) //nolint:errcheck // outcome reported via sink
	return nil
}

// acquisitionStatus maps acquisition errors onto HTTP statuses.
func acquisitionStatus(err error) int {
	switch {
	case errors.Is(err, acquire.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrScanInFlight):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

func (h *Handler) HandleCameraOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The stream outlives this request, so it is not tied to r.Context().
	if err := h.acquisition.OpenCamera(context.Background()); err != nil {
		// Non-fatal: the session keeps its previous mode and stays usable
		// through the upload path.
		slog.Warn("Camera open failed", "err", err)
		h.session.ReportError(err.Error())
		h.writeError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if err := h.session.EnterCamera(); err != nil {
		h.acquisition.CloseCamera()
		h.writeError(w, err.Error(), http.StatusConflict)
		return
	}

	h.writeJSON(w, h.session.Snapshot())
}

func (h *Handler) HandleCameraClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.acquisition.CloseCamera()
	h.session.LeaveCamera()
	h.writeJSON(w, h.session.Snapshot())
}

func (h *Handler) HandleCameraCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := h.acquisition.CaptureFrame()
	if err != nil {
		h.session.ReportError(err.Error())
		h.writeError(w, err.Error(), acquisitionStatus(err))
		return
	}

	// BeginScan leaves camera mode, which closes the stream through the
	// controller's single exit path.
	if err := h.startScan(payload); err != nil {
		h.writeError(w, err.Error(), acquisitionStatus(err))
		return
	}

	h.writeJSON(w, h.session.Snapshot())
}

package handlers

import (
	"net/http"
)

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.session.Snapshot())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleSessionReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.session.Reset()
	h.writeJSON(w, h.session.Snapshot())
}

func (h *Handler) HandleSessionError(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.session.ClearError()
	h.writeJSON(w, h.session.Snapshot())
}

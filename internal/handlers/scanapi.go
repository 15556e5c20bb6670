package handlers

import (
	"io"
	"net/http"

	"github.com/ecolens/binscan/internal/acquire"
)

// HandleScan is the hosted classification endpoint. It speaks the same
// contract the submitter expects from a remote scan service, so a binscan
// server can point SCAN_API_URL at itself.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, "Failed to read image field: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, acquire.MaxPayloadBytes+1))
	if err != nil {
		h.writeError(w, "Failed to read image: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(data) > acquire.MaxPayloadBytes {
		h.writeError(w, "Image too large (max 10MB)", http.StatusBadRequest)
		return
	}

	provider := r.FormValue("provider")
	model := r.FormValue("model")

	result, err := h.classifier.Classify(r.Context(), data, provider, model)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, result)
}

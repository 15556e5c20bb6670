package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HandleUploadOpen switches the session into the upload pane.
func (h *Handler) HandleUploadOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.session.EnterUpload(); err != nil {
		h.writeError(w, err.Error(), http.StatusConflict)
		return
	}

	h.writeJSON(w, h.session.Snapshot())
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Check if this is a JSON request with an image URL
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	payload, err := h.acquisition.PickFile(header.Filename, file)
	if err != nil {
		h.session.ReportError(err.Error())
		h.writeError(w, err.Error(), acquisitionStatus(err))
		return
	}

	if err := h.startScan(payload); err != nil {
		h.writeError(w, err.Error(), acquisitionStatus(err))
		return
	}

	h.writeJSON(w, h.session.Snapshot())
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	payload, err := h.acquisition.FetchURL(r.Context(), request.ImageURL)
	if err != nil {
		h.session.ReportError(err.Error())
		h.writeError(w, "Failed to process image URL: "+err.Error(), acquisitionStatus(err))
		return
	}

	if err := h.startScan(payload); err != nil {
		h.writeError(w, err.Error(), acquisitionStatus(err))
		return
	}

	h.writeJSON(w, h.session.Snapshot())
}

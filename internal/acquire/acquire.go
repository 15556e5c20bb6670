package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/ecolens/binscan/internal/storage"
)

// MaxPayloadBytes caps accepted image payloads at 10MB.
const MaxPayloadBytes = 10 * 1024 * 1024

// ErrUnsupportedFile rejects empty, oversized, or non-image payloads before
// anything is sent to the scan endpoint.
var ErrUnsupportedFile = errors.New("unsupported file")

// Payload is one acquired image ready for submission.
type Payload struct {
	Name    string
	Data    []byte
	Preview string
}

// Manager converts file, drag-drop, URL, and camera input into image
// payloads. It is the sole owner of the camera handle.
type Manager struct {
	previews *storage.PreviewStore
	device   Device
	fetcher  *Fetcher

	mu     sync.Mutex
	handle *Handle
}

// NewManager creates an acquisition manager. device may be nil when no
// camera source is configured; camera operations then fail with
// ErrCameraUnavailable.
func NewManager(previews *storage.PreviewStore, device Device) *Manager {
	return &Manager{
		previews: previews,
		device:   device,
		fetcher:  NewFetcher(),
	}
}

// PickFile accepts a user-chosen file and produces exactly one outbound
// payload with a preview handle.
func (m *Manager) PickFile(name string, r io.Reader) (Payload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPayloadBytes+1))
	if err != nil {
		return Payload{}, fmt.Errorf("failed to read file: %w", err)
	}
	return m.ingest(name, data)
}

// DropFile accepts a drag-and-dropped file; same contract as PickFile.
func (m *Manager) DropFile(name string, r io.Reader) (Payload, error) {
	return m.PickFile(name, r)
}

// FetchURL downloads an image and acquires it like a picked file.
func (m *Manager) FetchURL(ctx context.Context, rawURL string) (Payload, error) {
	name, data, err := m.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return Payload{}, err
	}
	return m.ingest(name, data)
}

// ingest validates the payload and registers its preview handle.
func (m *Manager) ingest(name string, data []byte) (Payload, error) {
	contentType, err := validate(data)
	if err != nil {
		slog.Warn("Rejected acquisition", "file", name, "err", err)
		return Payload{}, err
	}

	preview := m.previews.Put(contentType, data)
	slog.Info("Image acquired", "file", name, "bytes", len(data), "preview", preview)

	return Payload{Name: name, Data: data, Preview: preview}, nil
}

// validate sniffs the payload and returns its content type, or
// ErrUnsupportedFile for anything the scan endpoint should never see.
func validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrUnsupportedFile)
	}
	if len(data) > MaxPayloadBytes {
		return "", fmt.Errorf("%w: file exceeds 10MB", ErrUnsupportedFile)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s is not an image", ErrUnsupportedFile, contentType)
	}
	return contentType, nil
}

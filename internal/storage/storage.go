package storage

import (
	"strings"
	"sync"

	"github.com/ecolens/binscan/internal/utils"
)

// Preview is an in-memory image kept for display while its session
// references it.
type Preview struct {
	ID          string
	ContentType string
	Data        []byte
}

// PreviewStore holds preview images addressed by content hash. The session
// controller owns the lifetime: a handle is released when the session stops
// referencing it.
type PreviewStore struct {
	previews map[string]Preview
	mu       sync.RWMutex
}

func New() *PreviewStore {
	return &PreviewStore{
		previews: make(map[string]Preview),
	}
}

// Put stores the image bytes and returns the preview handle.
func (s *PreviewStore) Put(contentType string, data []byte) string {
	id := utils.CalculateDataMD5(data) + extensionFor(contentType)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews[id] = Preview{ID: id, ContentType: contentType, Data: data}
	return id
}

func (s *PreviewStore) Get(id string) (Preview, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, exists := s.previews[id]
	return p, exists
}

func (s *PreviewStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.previews, id)
}

func (s *PreviewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.previews)
}

func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}

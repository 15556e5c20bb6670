package storage

import (
	"strings"
	"testing"
)

func TestPreviewStoreLifecycle(t *testing.T) {
	store := New()

	id := store.Put("image/png", []byte("png-bytes"))
	if !strings.HasSuffix(id, ".png") {
		t.Errorf("Expected .png handle, got %s", id)
	}

	preview, exists := store.Get(id)
	if !exists {
		t.Fatal("Expected preview to exist")
	}
	if preview.ContentType != "image/png" || string(preview.Data) != "png-bytes" {
		t.Errorf("Unexpected preview: %+v", preview)
	}

	store.Delete(id)
	if _, exists := store.Get(id); exists {
		t.Error("Expected preview gone after delete")
	}

	// Deleting again is a no-op.
	store.Delete(id)
	if store.Len() != 0 {
		t.Errorf("Expected empty store, got %d", store.Len())
	}
}

func TestPutIsContentAddressed(t *testing.T) {
	store := New()
	a := store.Put("image/jpeg", []byte("same"))
	b := store.Put("image/jpeg", []byte("same"))
	if a != b {
		t.Errorf("Expected identical handles for identical bytes, got %s and %s", a, b)
	}
	if store.Len() != 1 {
		t.Errorf("Expected one stored preview, got %d", store.Len())
	}

	c := store.Put("image/jpeg", []byte("different"))
	if c == a {
		t.Error("Expected distinct handle for distinct bytes")
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"image/jpeg", ".jpg"},
		{"application/octet-stream", ".jpg"},
	}

	for _, tt := range tests {
		if got := extensionFor(tt.contentType); got != tt.expected {
			t.Errorf("extensionFor(%s) = %s, expected %s", tt.contentType, got, tt.expected)
		}
	}
}

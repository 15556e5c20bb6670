package scan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingSink captures sink calls for assertions.
type recordingSink struct {
	mu        sync.Mutex
	advances  int
	completed *Result
	failMsg   string
	gens      map[uint64]bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{gens: map[uint64]bool{}}
}

func (s *recordingSink) AdvanceProgress(gen uint64, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advances++
	s.gens[gen] = true
}

func (s *recordingSink) Complete(gen uint64, res *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = res
	s.gens[gen] = true
}

func (s *recordingSink) Fail(gen uint64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMsg = msg
	s.gens[gen] = true
}

func (s *recordingSink) advanceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advances
}

func fastSubmitter(baseURL string) *Submitter {
	sub := NewSubmitter(baseURL)
	sub.TickInterval = time.Millisecond
	sub.FloorMin = time.Millisecond
	sub.FloorMax = 2 * time.Millisecond
	return sub
}

func TestSubmitSuccess(t *testing.T) {
	var gotField, gotFilename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scan" {
			t.Errorf("Expected path /api/scan, got %s", r.URL.Path)
		}
		file, header, err := r.FormFile("image")
		if err == nil {
			gotField = "image"
			gotFilename = header.Filename
			file.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detected":true,"label":"Organic","confidence":0.87,"suggestions":["Compost this item"]}`))
	}))
	defer server.Close()

	sink := newRecordingSink()
	sub := fastSubmitter(server.URL)

	if err := sub.Submit(context.Background(), sink, 1, []byte("fake-png-bytes"), "leaf.png"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if gotField != "image" {
		t.Error("Expected multipart field named image")
	}
	if gotFilename != "leaf.png" {
		t.Errorf("Expected filename leaf.png, got %s", gotFilename)
	}
	if sink.completed == nil {
		t.Fatal("Expected Complete to be called")
	}
	if sink.completed.Label != "Organic" || sink.completed.Confidence != 0.87 {
		t.Errorf("Unexpected result: %+v", sink.completed)
	}
	if sink.failMsg != "" {
		t.Errorf("Expected no failure, got %q", sink.failMsg)
	}
}

func TestSubmitServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := newRecordingSink()
	sub := fastSubmitter(server.URL)

	err := sub.Submit(context.Background(), sink, 1, []byte("x"), "leaf.png")
	if err == nil {
		t.Fatal("Expected error for HTTP 500")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestError, got %T: %v", err, err)
	}
	if reqErr.Status != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", reqErr.Status)
	}
	if sink.completed != nil {
		t.Error("Expected no Complete on failure")
	}
	if !strings.Contains(sink.failMsg, "500") {
		t.Errorf("Expected failure message mentioning status, got %q", sink.failMsg)
	}
}

func TestSubmitParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	sink := newRecordingSink()
	sub := fastSubmitter(server.URL)

	err := sub.Submit(context.Background(), sink, 1, []byte("x"), "leaf.png")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestError for parse failure, got %v", err)
	}
	if reqErr.Status != 0 {
		t.Errorf("Expected zero status for parse failure, got %d", reqErr.Status)
	}
	if sink.failMsg == "" {
		t.Error("Expected Fail to be called on parse failure")
	}
}

func TestSubmitUnreachableEndpoint(t *testing.T) {
	sink := newRecordingSink()
	sub := fastSubmitter("http://127.0.0.1:1")
	sub.Client = &http.Client{Timeout: 200 * time.Millisecond}

	if err := sub.Submit(context.Background(), sink, 1, []byte("x"), "leaf.png"); err == nil {
		t.Fatal("Expected error for unreachable endpoint")
	}
	if sink.failMsg == "" {
		t.Error("Expected Fail to be called")
	}
}

func TestProgressTickerStopsAfterSubmission(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte(`{"detected":true,"label":"Organic","confidence":0.9,"suggestions":[]}`))
	}))
	defer server.Close()

	sink := newRecordingSink()
	sub := fastSubmitter(server.URL)

	if err := sub.Submit(context.Background(), sink, 1, []byte("x"), "leaf.png"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if sink.advanceCount() == 0 {
		t.Error("Expected progress ticks during submission")
	}

	// No leaked ticker keeps advancing after the submission ends.
	settled := sink.advanceCount()
	time.Sleep(20 * time.Millisecond)
	if after := sink.advanceCount(); after != settled {
		t.Errorf("Progress ticker leaked: %d advances after submission end (was %d)", after, settled)
	}
}

func TestRequestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *RequestError
		want string
	}{
		{"status", &RequestError{Status: 502}, "scan request failed: status 502"},
		{"parse", &RequestError{Reason: "invalid response body"}, "scan request failed: invalid response body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveBaseURL(t *testing.T) {
	t.Setenv("SCAN_API_URL", "")
	if got := ResolveBaseURL(); got != DefaultBaseURL {
		t.Errorf("Expected default base URL, got %s", got)
	}

	t.Setenv("SCAN_API_URL", "https://scan.example.com/")
	if got := ResolveBaseURL(); got != "https://scan.example.com" {
		t.Errorf("Expected trimmed override, got %s", got)
	}
}

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ecolens/binscan/internal/scan"
)

func testSubmitter(baseURL string) *scan.Submitter {
	sub := scan.NewSubmitter(baseURL)
	sub.TickInterval = time.Millisecond
	sub.FloorMin = time.Millisecond
	sub.FloorMax = 2 * time.Millisecond
	return sub
}

// Full scenario from acquisition to result: a PNG named leaf.png comes back
// as Organic at 87% and the session lands in the result mode.
func TestScanFlowSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detected":true,"label":"Organic","confidence":0.87,"suggestions":["Compost this item"]}`))
	}))
	defer server.Close()

	ctl := New(nil, nil)
	sub := testSubmitter(server.URL)

	gen, err := ctl.BeginScan("leaf.png", "leaf-preview")
	if err != nil {
		t.Fatalf("BeginScan failed: %v", err)
	}
	if ctl.Mode() != ModeScanning {
		t.Fatalf("Expected scanning, got %s", ctl.Mode())
	}

	if err := sub.Submit(context.Background(), ctl, gen, []byte{0x89, 'P', 'N', 'G'}, "leaf.png"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	snap := ctl.Snapshot()
	if snap.Mode != ModeResult {
		t.Errorf("Expected mode result, got %s", snap.Mode)
	}
	if snap.Progress != 100 {
		t.Errorf("Expected progress 100, got %d", snap.Progress)
	}
	if snap.Result == nil || snap.Result.Label != "Organic" {
		t.Fatalf("Expected Organic result, got %+v", snap.Result)
	}
	if len(snap.Result.Suggestions) != 1 || snap.Result.Suggestions[0] != "Compost this item" {
		t.Errorf("Unexpected suggestions: %v", snap.Result.Suggestions)
	}
}

func TestScanFlowServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	ctl := New(nil, nil)
	sub := testSubmitter(server.URL)

	gen, _ := ctl.BeginScan("leaf.png", "leaf-preview")
	if err := sub.Submit(context.Background(), ctl, gen, []byte("x"), "leaf.png"); err == nil {
		t.Fatal("Expected submission error")
	}

	snap := ctl.Snapshot()
	if snap.Mode != ModeIdle {
		t.Errorf("Expected mode idle after failure, got %s", snap.Mode)
	}
	if snap.Error == "" {
		t.Error("Expected non-empty error")
	}
	if snap.Result != nil {
		t.Errorf("Expected nil result, got %+v", snap.Result)
	}
}

func TestScanFlowLateCompletionAfterReset(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"detected":true,"label":"Organic","confidence":0.9,"suggestions":[]}`))
	}))
	defer server.Close()

	ctl := New(nil, nil)
	sub := testSubmitter(server.URL)

	gen, _ := ctl.BeginScan("leaf.png", "leaf-preview")

	done := make(chan struct{})
	go func() {
		defer close(done)
		sub.Submit(context.Background(), ctl, gen, []byte("x"), "leaf.png") //nolint:errcheck
	}()

	// Reset while the submission is blocked on the network.
	ctl.Reset()
	close(release)
	<-done

	snap := ctl.Snapshot()
	if snap.Mode != ModeIdle {
		t.Errorf("Expected reset session to stay idle, got %s", snap.Mode)
	}
	if snap.Result != nil {
		t.Error("Expected late result discarded after reset")
	}
	if snap.Progress != 0 {
		t.Errorf("Expected progress 0 after reset, got %d", snap.Progress)
	}
}

func TestScanFlowProgressStaysBelowCeilingUntilResponse(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"detected":true,"label":"Recyclable","confidence":0.7,"suggestions":[]}`))
	}))
	defer server.Close()

	ctl := New(nil, nil)
	sub := testSubmitter(server.URL)

	gen, _ := ctl.BeginScan("bottle.jpg", "p")

	done := make(chan struct{})
	go func() {
		defer close(done)
		sub.Submit(context.Background(), ctl, gen, []byte("x"), "bottle.jpg") //nolint:errcheck
	}()

	// Let the ticker run well past the point it would hit the ceiling.
	deadline := time.After(250 * time.Millisecond)
	last := 0
	for {
		select {
		case <-deadline:
			if last > 96 {
				t.Fatalf("Progress exceeded 96 before response: %d", last)
			}
			close(release)
			<-done
			if p := ctl.Snapshot().Progress; p != 100 {
				t.Errorf("Expected progress 100 after success, got %d", p)
			}
			return
		default:
			p := ctl.Snapshot().Progress
			if p < last {
				t.Fatalf("Progress decreased from %d to %d", last, p)
			}
			last = p
			time.Sleep(2 * time.Millisecond)
		}
	}
}

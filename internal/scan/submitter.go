package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"mime/multipart"
	"net/http"
	"sync"
	"time"
)

// StateSink receives submission outcomes. Every call carries the generation
// the submission started with so a session that has been reset in the
// meantime can discard late arrivals.
type StateSink interface {
	AdvanceProgress(gen uint64, delta int)
	Complete(gen uint64, res *Result)
	Fail(gen uint64, msg string)
}

// Submitter posts one image payload to the remote scan endpoint while
// driving a simulated progress ramp on the sink. The session controller's
// mode guard ensures at most one submission is in flight, so the only
// internal synchronization is the single ticker cancellation handle.
type Submitter struct {
	BaseURL string
	Client  *http.Client

	// TickInterval paces the progress ramp. FloorMin/FloorMax bound the
	// artificial settle delay applied after the response arrives. Zero
	// values fall back to the defaults; tests compress them.
	TickInterval time.Duration
	FloorMin     time.Duration
	FloorMax     time.Duration
}

const (
	defaultTickInterval = 180 * time.Millisecond
	defaultFloorMin     = 800 * time.Millisecond
	defaultFloorMax     = 1700 * time.Millisecond
)

// NewSubmitter creates a submitter for the given endpoint base URL.
func NewSubmitter(baseURL string) *Submitter {
	return &Submitter{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Submit posts the payload as a single multipart "image" field and reconciles
// the outcome into the sink. The progress ticker is stopped exactly once
// regardless of outcome; the returned error mirrors what was reported to the
// sink so synchronous callers can inspect it.
func (s *Submitter) Submit(ctx context.Context, sink StateSink, gen uint64, payload []byte, name string) error {
	stop := s.startProgress(sink, gen)
	defer stop()

	res, err := s.post(ctx, payload, name)
	if err != nil {
		slog.Error("Scan submission failed", "file", name, "err", err)
		sink.Fail(gen, err.Error())
		return err
	}

	// The response is already in hand; the settle delay keeps the progress
	// animation perceptible even when the network was fast.
	s.settle(ctx)

	stop()
	sink.Complete(gen, res)
	slog.Info("Scan complete", "file", name, "label", res.Label, "confidence", res.Confidence)
	return nil
}

// startProgress starts the ticking progress simulation and returns its single
// cancellation handle. The handle is safe to call more than once; the ticker
// is stopped exactly once.
func (s *Submitter) startProgress(sink StateSink, gen uint64) func() {
	interval := s.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}

	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// The sink caps simulated progress below completion so a
				// finished scan is visually distinguishable from waiting.
				sink.AdvanceProgress(gen, 2+rand.Intn(6))
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// settle sleeps for the randomized minimum-latency floor, honoring context
// cancellation.
func (s *Submitter) settle(ctx context.Context) {
	min, max := s.FloorMin, s.FloorMax
	if min <= 0 && max <= 0 {
		min, max = defaultFloorMin, defaultFloorMax
	}
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (s *Submitter) post(ctx context.Context, payload []byte, name string) (*Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", name)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/api/scan", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach scan endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &RequestError{Status: resp.StatusCode}
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, &RequestError{Reason: "invalid response body"}
	}
	if res.Suggestions == nil {
		res.Suggestions = []string{}
	}
	return &res, nil
}

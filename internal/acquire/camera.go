package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"sync"
	"time"
)

// ErrCameraUnavailable is the non-fatal condition for a denied, absent, or
// unreachable camera; the session stays usable through the upload path.
var ErrCameraUnavailable = errors.New("camera unavailable")

// ErrNoCamera is returned by CaptureFrame when no stream is open.
var ErrNoCamera = errors.New("no camera stream is open")

// captureQuality is the JPEG quality used when sampling a still frame.
const captureQuality = 95

// Track is one media track of an open camera stream.
type Track struct {
	kind string

	mu      sync.Mutex
	stopped bool
}

func (t *Track) Kind() string { return t.kind }

// Active reports whether the track is still delivering media.
func (t *Track) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

func (t *Track) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Stream is an open camera feed.
type Stream interface {
	// Grab returns the most recent frame as encoded image bytes.
	Grab() ([]byte, error)
	Tracks() []*Track
	Close() error
}

// Device opens camera streams. The production implementation consumes an
// MJPEG feed over HTTP; tests substitute a fake.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Handle wraps the single open stream. At most one Handle exists at a time;
// it must be closed before leaving camera mode.
type Handle struct {
	stream Stream

	mu     sync.Mutex
	closed bool
}

// Close stops all underlying tracks. Idempotent.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	if err := h.stream.Close(); err != nil {
		slog.Warn("Camera stream close failed", "err", err)
	}
}

// Tracks exposes the underlying track state, mainly for inspection.
func (h *Handle) Tracks() []*Track {
	return h.stream.Tracks()
}

// OpenCamera requests the configured camera stream. Opening while a stream
// is already live is a no-op. Failures map to ErrCameraUnavailable and leave
// the session mode untouched; the caller requests the camera transition only
// after success.
func (m *Manager) OpenCamera(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		return nil
	}
	if m.device == nil {
		return fmt.Errorf("%w: no camera source configured", ErrCameraUnavailable)
	}

	stream, err := m.device.Open(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	m.handle = &Handle{stream: stream}
	slog.Info("Camera stream opened")
	return nil
}

// CloseCamera releases the camera handle and all its tracks. Safe to call
// when no stream is open.
func (m *Manager) CloseCamera() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return
	}
	m.handle.Close()
	m.handle = nil
	slog.Info("Camera stream closed")
}

// CameraOpen reports whether a stream is live.
func (m *Manager) CameraOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}

// CameraTracks returns the open stream's tracks, or nil when closed.
func (m *Manager) CameraTracks() []*Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return nil
	}
	return m.handle.Tracks()
}

// CaptureFrame samples the current video frame at native resolution,
// re-encodes it as a lossy JPEG, and acquires it exactly like a picked
// file. The stream stays open; closing it is the mode transition's job.
func (m *Manager) CaptureFrame() (Payload, error) {
	m.mu.Lock()
	handle := m.handle
	m.mu.Unlock()

	if handle == nil {
		return Payload{}, ErrNoCamera
	}

	raw, err := handle.stream.Grab()
	if err != nil {
		return Payload{}, fmt.Errorf("failed to grab frame: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Payload{}, fmt.Errorf("failed to decode frame: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: captureQuality}); err != nil {
		return Payload{}, fmt.Errorf("failed to encode capture: %w", err)
	}

	name := fmt.Sprintf("capture-%d.jpg", time.Now().UnixMilli())
	return m.ingest(name, buf.Bytes())
}

// MJPEGDevice reads frames from an MJPEG-over-HTTP camera stream, the usual
// surface of IP and rear-facing network cameras.
type MJPEGDevice struct {
	URL    string
	Client *http.Client
}

// NewMJPEGDevice builds a device from the CAMERA_STREAM_URL environment
// variable; the returned device reports ErrCameraUnavailable when unset.
func NewMJPEGDevice() *MJPEGDevice {
	return &MJPEGDevice{URL: os.Getenv("CAMERA_STREAM_URL")}
}

func (d *MJPEGDevice) Open(ctx context.Context) (Stream, error) {
	if d.URL == "" {
		return nil, errors.New("CAMERA_STREAM_URL not set")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req) //nolint:bodyclose // owned by the stream
	if err != nil {
		return nil, fmt.Errorf("failed to connect to camera: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("camera returned status %d", resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/x-mixed-replace" || params["boundary"] == "" {
		resp.Body.Close()
		return nil, fmt.Errorf("not an MJPEG stream: %s", resp.Header.Get("Content-Type"))
	}

	s := &mjpegStream{
		body:  resp.Body,
		track: &Track{kind: "video"},
		done:  make(chan struct{}),
	}
	go s.readLoop(multipart.NewReader(resp.Body, params["boundary"]))
	return s, nil
}

type mjpegStream struct {
	body      io.ReadCloser
	track     *Track
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	frame   []byte
	readErr error
}

// readLoop keeps only the most recent frame so Grab always samples "now".
func (s *mjpegStream) readLoop(mr *multipart.Reader) {
	for {
		select {
		case <-s.done:
			return
		default:
		}

		part, err := mr.NextPart()
		if err != nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			return
		}
		data, err := io.ReadAll(io.LimitReader(part, MaxPayloadBytes))
		part.Close()
		if err != nil {
			continue
		}

		s.mu.Lock()
		s.frame = data
		s.mu.Unlock()
	}
}

func (s *mjpegStream) Grab() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		if s.readErr != nil {
			return nil, fmt.Errorf("camera stream failed: %w", s.readErr)
		}
		return nil, errors.New("no frame received yet")
	}
	frame := make([]byte, len(s.frame))
	copy(frame, s.frame)
	return frame, nil
}

func (s *mjpegStream) Tracks() []*Track {
	return []*Track{s.track}
}

func (s *mjpegStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.track.stop()
		err = s.body.Close()
	})
	return err
}

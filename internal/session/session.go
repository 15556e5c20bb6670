package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/ecolens/binscan/internal/scan"
)

// Mode is the session's current phase.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeUpload   Mode = "upload"
	ModeCamera   Mode = "camera"
	ModeScanning Mode = "scanning"
	ModeResult   Mode = "result"
)

// ErrScanInFlight is returned when an acquisition arrives while a
// submission is still running.
var ErrScanInFlight = errors.New("a scan is already in progress")

// Snapshot is a read-only copy of the session state for display.
type Snapshot struct {
	Mode       Mode         `json:"mode"`
	SourceFile string       `json:"source_file,omitempty"`
	Preview    string       `json:"preview,omitempty"`
	Progress   int          `json:"progress"`
	Error      string       `json:"error,omitempty"`
	Result     *scan.Result `json:"result,omitempty"`
}

// Controller owns the single scan session and is the only writer of its
// mode. All transitions go through named operations here; collaborators
// request transitions rather than mutating state directly.
//
// Controller implements scan.StateSink. Every submission carries the
// generation it started with; Reset and BeginScan advance the generation so
// a late-arriving outcome from a prior submission is discarded instead of
// repopulating a reset session.
type Controller struct {
	mu         sync.Mutex
	mode       Mode
	sourceFile string
	preview    string
	progress   int
	errMsg     string
	result     *scan.Result
	gen        uint64

	releasePreview func(id string)
	closeCamera    func()
}

// simulatedCeiling is the highest progress the ticker may report; only a
// confirmed success reaches 100.
const simulatedCeiling = 96

// New creates a controller in the idle mode. releasePreview is invoked with
// a preview handle when the session stops referencing it; closeCamera is
// invoked whenever the mode leaves camera. Either hook may be nil.
func New(releasePreview func(id string), closeCamera func()) *Controller {
	return &Controller{
		mode:           ModeIdle,
		releasePreview: releasePreview,
		closeCamera:    closeCamera,
	}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Generation returns the current session generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Mode:       c.mode,
		SourceFile: c.sourceFile,
		Preview:    c.preview,
		Progress:   c.progress,
		Error:      c.errMsg,
		Result:     c.result,
	}
}

// EnterUpload switches to the upload pane. Rejected while a scan is running;
// leaving result clears the previous outcome.
func (c *Controller) EnterUpload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeScanning {
		return ErrScanInFlight
	}
	c.leaveCurrentModeLocked()
	c.mode = ModeUpload
	return nil
}

// EnterCamera records that the camera stream is live. The acquisition
// manager opens the device first and only requests this transition on
// success, so a permission failure leaves the mode untouched.
func (c *Controller) EnterCamera() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeScanning {
		return ErrScanInFlight
	}
	c.leaveCurrentModeLocked()
	c.mode = ModeCamera
	return nil
}

// LeaveCamera returns to idle if the session is in camera mode. The device
// release hook runs as part of the transition, keeping a single exit path
// for the camera resource.
func (c *Controller) LeaveCamera() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeCamera {
		return
	}
	c.leaveCurrentModeLocked()
	c.mode = ModeIdle
}

// BeginScan transitions to scanning for a freshly acquired payload and
// returns the generation the submission must report back with. It is the
// mode guard that makes submission non-reentrant.
func (c *Controller) BeginScan(sourceFile, preview string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeScanning {
		return 0, ErrScanInFlight
	}
	c.leaveCurrentModeLocked()

	if c.preview != "" && c.preview != preview && c.releasePreview != nil {
		c.releasePreview(c.preview)
	}

	c.gen++
	c.mode = ModeScanning
	c.sourceFile = sourceFile
	c.preview = preview
	c.progress = 0
	c.errMsg = ""
	c.result = nil

	slog.Info("Scan started", "file", sourceFile, "generation", c.gen)
	return c.gen, nil
}

// AdvanceProgress applies one simulated progress increment. Progress never
// decreases and never exceeds the simulated ceiling; stale generations and
// non-scanning modes are ignored.
func (c *Controller) AdvanceProgress(gen uint64, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.mode != ModeScanning || delta <= 0 {
		return
	}
	c.progress += delta
	if c.progress > simulatedCeiling {
		c.progress = simulatedCeiling
	}
}

// Complete stores a successful result and enters the result mode. A stale
// generation means the session was reset or restarted mid-flight; the result
// is discarded.
func (c *Controller) Complete(gen uint64, res *scan.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.mode != ModeScanning {
		slog.Debug("Discarding late scan result", "generation", gen, "current", c.gen)
		return
	}
	c.progress = 100
	c.result = res
	c.errMsg = ""
	c.mode = ModeResult
}

// Fail records a submission failure and returns to idle. There is no
// terminal error state; the message is a dismissible flag on idle.
func (c *Controller) Fail(gen uint64, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.mode != ModeScanning {
		slog.Debug("Discarding late scan failure", "generation", gen, "current", c.gen)
		return
	}
	c.progress = 0
	c.result = nil
	c.errMsg = msg
	c.mode = ModeIdle
}

// ReportError surfaces a non-fatal error (camera permission, invalid file)
// without changing the mode.
func (c *Controller) ReportError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = msg
}

// ClearError dismisses the current error message.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
}

// Reset returns the session to its initial shape, releases the preview
// handle, closes the camera if it was streaming, and invalidates any
// in-flight submission.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.leaveCurrentModeLocked()
	if c.preview != "" && c.releasePreview != nil {
		c.releasePreview(c.preview)
	}
	c.mode = ModeIdle
	c.sourceFile = ""
	c.preview = ""
	c.progress = 0
	c.errMsg = ""
	c.result = nil
}

// leaveCurrentModeLocked runs the side effects of exiting the current mode.
// Caller holds the lock.
func (c *Controller) leaveCurrentModeLocked() {
	switch c.mode {
	case ModeCamera:
		if c.closeCamera != nil {
			c.closeCamera()
		}
	case ModeResult:
		c.result = nil
		c.errMsg = ""
		c.progress = 0
		if c.preview != "" && c.releasePreview != nil {
			c.releasePreview(c.preview)
		}
		c.preview = ""
	}
}

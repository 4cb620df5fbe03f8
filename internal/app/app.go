// Package app runs the camera whiteboard: it owns the capture loop, the
// drawing surface and the brush controls shared with the presentation layer.
package app

import (
	"errors"
	"fmt"
	"image"
	"log"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airboard/internal/board"
	"github.com/ayusman/airboard/internal/capture"
	"github.com/ayusman/airboard/internal/detector"
	"github.com/ayusman/airboard/internal/raster"
	"github.com/ayusman/airboard/internal/store"
)

// Loop timing defaults.
const (
	DefaultFrameInterval = 10 * time.Millisecond
	DefaultStopTimeout   = time.Second
	// errorLogInterval limits how often a persistent capture or detection failure is logged.
	errorLogInterval = time.Second
)

// StatusPaused is reported while tracking is disabled.
const StatusPaused = "Paused"

// Views served by JPEG.
const (
	ViewCamera  = "camera"
	ViewSurface = "surface"
)

var (
	// ErrNoFrame is returned by JPEG before the first frame has been processed.
	ErrNoFrame = errors.New("no frame available")
	// ErrUnknownView is returned by JPEG for a view other than ViewCamera or ViewSurface.
	ErrUnknownView = errors.New("unknown view")
)

// Config holds configuration options for the application.
type Config struct {
	// Store persists brush settings between runs. Optional.
	Store         *store.Store
	Camera        capture.Config
	Detector      detector.Config
	FrameInterval time.Duration
	StopTimeout   time.Duration
}

// Status summarizes the latest processed frame for display.
type Status struct {
	Text      string `json:"text"`
	Enabled   bool   `json:"enabled"`
	Hands     int    `json:"hands"`
	Draw      string `json:"draw"`
	Erase     string `json:"erase"`
	Color     string `json:"color"`
	Thickness int    `json:"thickness"`
}

// FrameFunc receives the annotated camera image and the drawing surface after each frame.
type FrameFunc func(camera, surface image.Image)

// StatusFunc receives the status whenever it changes.
type StatusFunc func(Status)

// App orchestrates capture, detection and compositing for the camera whiteboard.
type App struct {
	config   Config
	controls *board.Controls

	mu       sync.RWMutex
	camera   capture.Camera
	detector detector.Detector
	surface  *raster.Mat
	enabled  bool
	stopCh   chan struct{}
	done     chan struct{}
	onFrame  FrameFunc
	onStatus StatusFunc

	frameMu sync.Mutex
	latest  *gocv.Mat

	statusMu sync.Mutex
	status   Status
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultFrameInterval
	}
	if config.StopTimeout <= 0 {
		config.StopTimeout = DefaultStopTimeout
	}

	a := &App{
		config:   config,
		controls: board.NewControls(),
		camera:   capture.NewCamera(config.Camera),
		enabled:  true,
		status:   Status{Text: board.StatusReady, Enabled: true},
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	a.loadSettings()
	return a
}

// loadSettings restores the brush from the settings store.
func (a *App) loadSettings() {
	if a.config.Store == nil {
		return
	}
	settings := a.config.Store.Settings()

	if name, err := settings.Get(store.KeyCameraColor); err == nil {
		if err := a.controls.SetColor(name); err != nil {
			log.Printf("Ignoring stored color: %v", err)
			forget(settings, store.KeyCameraColor)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to load color: %v", err)
	}

	thickness, err := settings.GetInt(store.KeyCameraThickness, board.DefaultThickness)
	if numErr := (*strconv.NumError)(nil); errors.As(err, &numErr) {
		log.Printf("Ignoring stored thickness: %v", err)
		forget(settings, store.KeyCameraThickness)
	} else if err != nil {
		log.Printf("Failed to load thickness: %v", err)
	}
	a.controls.SetThickness(thickness)
}

// forget drops a stored value that no longer parses so it is not reported again.
func forget(settings *store.SettingsRepository, key string) {
	if err := settings.Delete(key); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to delete setting %s: %v", key, err)
	}
}

// SetEnabled pauses or resumes tracking. Pausing drops the tracked position of both hands.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the capture device. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// OnFrame registers fn to be called from the capture goroutine after every processed frame.
func (a *App) OnFrame(fn FrameFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onFrame = fn
}

// OnStatus registers fn to be called from the capture goroutine when the status changes.
func (a *App) OnStatus(fn StatusFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStatus = fn
}

// Start opens the camera and begins the capture loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}

	width, height := a.camera.Size()
	a.surface = raster.New(width, height)

	l := &loop{
		app:        a,
		camera:     a.camera,
		surface:    a.surface,
		compositor: board.NewCompositor(a.surface, a.controls),
		interval:   a.config.FrameInterval,
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go l.run(a.stopCh, a.done)

	log.Printf("Capture loop started (%dx%d)", width, height)
	return nil
}

// Stop halts the capture loop and releases the camera and detector.
// It waits at most the configured stop timeout for the loop to finish; if the
// loop is stuck the resources are released as soon as it returns.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	camera, det, surface := a.camera, a.detector, a.surface
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)

	select {
	case <-done:
		a.release(camera, det, surface)
	case <-time.After(a.config.StopTimeout):
		log.Printf("Capture loop did not stop within %v, releasing resources when it does", a.config.StopTimeout)
		go func() {
			<-done
			a.release(camera, det, surface)
		}()
	}

	log.Println("Capture loop stopped")
}

func (a *App) release(camera capture.Camera, det detector.Detector, surface *raster.Mat) {
	if err := camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	if det != nil {
		if err := det.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.frameMu.Lock()
	if a.latest != nil {
		a.latest.Close()
		a.latest = nil
	}
	a.frameMu.Unlock()

	a.mu.Lock()
	if a.surface == surface {
		a.surface = nil
	}
	a.mu.Unlock()

	surface.Close()
}

// Running reports whether the capture loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Controls returns the brush controls read by the capture loop.
func (a *App) Controls() *board.Controls {
	return a.controls
}

// Settings returns the current brush configuration.
func (a *App) Settings() board.Settings {
	return a.controls.Settings()
}

// SetColor selects the brush colour and remembers it for the next run.
func (a *App) SetColor(name string) error {
	if err := a.controls.SetColor(name); err != nil {
		return err
	}
	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.KeyCameraColor, name); err != nil {
			log.Printf("Failed to save color: %v", err)
		}
	}
	return nil
}

// SetThickness sets the brush thickness and remembers it for the next run.
// It returns the clamped value actually applied.
func (a *App) SetThickness(thickness int) int {
	applied := a.controls.SetThickness(thickness)
	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetInt(store.KeyCameraThickness, applied); err != nil {
			log.Printf("Failed to save thickness: %v", err)
		}
	}
	return applied
}

// Clear wipes the drawing surface before the next processed frame.
func (a *App) Clear() {
	a.controls.RequestClear()
}

// Status returns the latest status.
func (a *App) Status() Status {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()
	return a.status
}

// JPEG encodes the latest annotated camera frame or the drawing surface.
func (a *App) JPEG(view string) ([]byte, error) {
	var mat gocv.Mat

	switch view {
	case ViewCamera:
		a.frameMu.Lock()
		if a.latest == nil {
			a.frameMu.Unlock()
			return nil, ErrNoFrame
		}
		mat = a.latest.Clone()
		a.frameMu.Unlock()

	case ViewSurface:
		a.mu.RLock()
		surface := a.surface
		a.mu.RUnlock()
		if surface == nil {
			return nil, ErrNoFrame
		}
		var err error
		if mat, err = surface.Clone(); err != nil {
			return nil, ErrNoFrame
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", view, err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

func (a *App) callbacks() (FrameFunc, StatusFunc) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.onFrame, a.onStatus
}

// setStatus records status and notifies the status callback when it changed.
func (a *App) setStatus(status Status) {
	a.statusMu.Lock()
	changed := status != a.status
	a.status = status
	a.statusMu.Unlock()

	if !changed {
		return
	}
	if _, fn := a.callbacks(); fn != nil {
		fn(status)
	}
}

// keepLatest replaces the frame served by JPEG with a copy of vis.
func (a *App) keepLatest(vis gocv.Mat) {
	clone := vis.Clone()

	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	if a.latest != nil {
		a.latest.Close()
	}
	a.latest = &clone
}

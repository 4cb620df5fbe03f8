package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airboard/internal/board"
	"github.com/ayusman/airboard/internal/capture"
	"github.com/ayusman/airboard/internal/raster"
)

// loop is the state owned by the capture goroutine. The compositor and the
// surface it draws on are only ever written from here.
type loop struct {
	app        *App
	camera     capture.Camera
	surface    *raster.Mat
	compositor *board.Compositor
	interval   time.Duration

	paused       bool
	readErrors   throttle
	detectErrors throttle
}

// run processes one frame per tick until stopCh is closed.
//
// Each tick:
// 1. Skip the frame while paused, dropping both tracked positions once
// 2. Read a frame (failures are retried next tick)
// 3. Mirror it so the view behaves like a mirror
// 4. Detect hands (failures skip the frame)
// 5. Route the hands and update the surface
// 6. Annotate the mirrored frame and publish both images and the status
func (l *loop) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !l.app.IsEnabled() {
				l.pause()
				continue
			}
			l.paused = false
			l.step()
		}
	}
}

func (l *loop) pause() {
	if l.paused {
		return
	}
	l.paused = true
	l.compositor.Reset()

	settings := l.compositor.Controls().Settings()
	l.app.setStatus(Status{
		Text:      StatusPaused,
		Draw:      board.Idle.String(),
		Erase:     board.Idle.String(),
		Color:     settings.ColorName,
		Thickness: settings.Thickness,
	})
}

func (l *loop) step() {
	frame, err := l.camera.ReadFrame()
	if err != nil {
		if l.readErrors.allow() {
			log.Printf("Error reading frame: %v", err)
		}
		return
	}

	mirrored := raster.Mirror(*frame)
	frame.Close()
	defer mirrored.Close()

	det := l.app.Detector()
	if det == nil {
		return
	}

	hands, err := det.Detect(&mirrored)
	if err != nil {
		if l.detectErrors.allow() {
			log.Printf("Error detecting hands: %v", err)
		}
		return
	}

	// Tips are in frame pixels. Strokes outside a smaller surface are clipped.
	result := l.compositor.Process(hands, mirrored.Cols(), mirrored.Rows())

	raster.Annotate(&mirrored, hands, result)
	l.publish(mirrored, result)
}

func (l *loop) publish(vis gocv.Mat, result board.Frame) {
	l.app.keepLatest(vis)

	if onFrame, _ := l.app.callbacks(); onFrame != nil {
		camera, err := vis.ToImage()
		if err != nil {
			log.Printf("Error converting frame: %v", err)
		} else if surface, err := l.surface.Image(); err == nil {
			onFrame(camera, surface)
		}
	}

	l.app.setStatus(Status{
		Text:      result.Status,
		Enabled:   true,
		Hands:     result.Hands,
		Draw:      result.DrawState.String(),
		Erase:     result.EraseState.String(),
		Color:     result.Settings.ColorName,
		Thickness: result.Settings.Thickness,
	})
}

// throttle admits at most one event per errorLogInterval.
type throttle struct {
	last time.Time
}

func (t *throttle) allow() bool {
	now := time.Now()
	if now.Sub(t.last) < errorLogInterval {
		return false
	}
	t.last = now
	return true
}

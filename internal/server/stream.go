package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/airboard/internal/app"
)

// StreamInterval paces MJPEG frames (~15 FPS).
const StreamInterval = 66 * time.Millisecond

// FrameSource provides JPEG snapshots of the camera view or the drawing surface.
type FrameSource interface {
	JPEG(view string) ([]byte, error)
}

// StreamHandler serves MJPEG frames from a FrameSource.
type StreamHandler struct {
	frames   FrameSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler with the given frame source.
func NewStreamHandler(frames FrameSource) *StreamHandler {
	return &StreamHandler{frames: frames, interval: StreamInterval}
}

// ServeHTTP streams MJPEG frames of the view named by the "view" query
// parameter ("camera" by default, or "surface") until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		view = app.ViewCamera
	}
	if view != app.ViewCamera && view != app.ViewSurface {
		http.Error(w, fmt.Sprintf("unknown view %q", view), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		data, err := h.frames.JPEG(view)
		switch {
		case err == nil:
			if err := writePart(w, data); err != nil {
				return
			}
		case errors.Is(err, app.ErrUnknownView):
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// writePart writes one MJPEG part and flushes it to the client.
func writePart(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\r\n"); err != nil {
		return err
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

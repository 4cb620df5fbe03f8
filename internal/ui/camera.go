// Package ui holds the fyne windows of both whiteboard programs.
package ui

import (
	"fmt"
	"image"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/ayusman/airboard/internal/app"
	"github.com/ayusman/airboard/internal/board"
)

// Controller is what the camera window drives.
type Controller interface {
	Settings() board.Settings
	SetColor(name string) error
	SetThickness(thickness int) int
	Clear()
}

// buttonColors are the colour buttons in display order.
var buttonColors = []string{"black", "red", "green", "blue"}

// CameraWindow shows the annotated camera feed next to the drawing surface.
type CameraWindow struct {
	Window fyne.Window

	controller Controller
	camera     *canvas.Image
	surface    *canvas.Image
	slider     *widget.Slider
	thickness  *widget.Label
	status     *widget.Label
}

// NewCameraWindow builds the camera whiteboard window.
func NewCameraWindow(a fyne.App, c Controller) *CameraWindow {
	w := &CameraWindow{
		Window:     a.NewWindow("Air Whiteboard"),
		controller: c,
		camera:     canvas.NewImageFromImage(nil),
		surface:    canvas.NewImageFromImage(nil),
		thickness:  widget.NewLabel(""),
		status:     widget.NewLabel(board.StatusReady),
	}

	for _, img := range []*canvas.Image{w.camera, w.surface} {
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(640, 480))
	}

	settings := c.Settings()
	w.slider = widget.NewSlider(board.MinThickness, board.MaxThickness)
	w.slider.Step = 1
	w.slider.Value = float64(settings.Thickness)
	w.slider.OnChanged = func(v float64) {
		applied := w.controller.SetThickness(int(v))
		w.setThicknessLabel(applied)
	}
	w.setThicknessLabel(settings.Thickness)

	controls := container.NewHBox(
		widget.NewButton("Clear Canvas", w.controller.Clear),
		widget.NewSeparator(),
		w.thickness,
	)
	sliderBox := container.NewGridWrap(fyne.NewSize(200, w.slider.MinSize().Height), w.slider)
	controls.Add(sliderBox)
	controls.Add(widget.NewSeparator())
	for _, name := range buttonColors {
		controls.Add(widget.NewButton(title(name), w.colorSetter(name)))
	}
	controls.Add(layout.NewSpacer())
	controls.Add(w.status)

	views := container.New(layout.NewGridLayout(2), w.camera, w.surface)
	w.Window.SetContent(container.NewBorder(nil, controls, nil, nil, views))
	return w
}

// ShowFrame displays a new camera frame and surface. Safe to call from any goroutine.
func (w *CameraWindow) ShowFrame(camera, surface image.Image) {
	fyne.Do(func() {
		w.setFrame(camera, surface)
	})
}

// ShowStatus displays the loop status. Safe to call from any goroutine.
func (w *CameraWindow) ShowStatus(s app.Status) {
	fyne.Do(func() {
		w.setStatus(s)
	})
}

func (w *CameraWindow) setFrame(camera, surface image.Image) {
	if camera != nil {
		w.camera.Image = camera
		w.camera.Refresh()
	}
	if surface != nil {
		w.surface.Image = surface
		w.surface.Refresh()
	}
}

func (w *CameraWindow) setStatus(s app.Status) {
	w.status.SetText(s.Text)
}

func (w *CameraWindow) setThicknessLabel(n int) {
	w.thickness.SetText(fmt.Sprintf("Thickness: %d", n))
}

func (w *CameraWindow) colorSetter(name string) func() {
	return func() {
		if err := w.controller.SetColor(name); err != nil {
			log.Printf("Failed to set color: %v", err)
		}
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

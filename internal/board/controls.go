package board

import (
	"fmt"
	"image/color"
	"sort"
	"sync"
)

// Thickness limits for the camera whiteboard brush.
const (
	MinThickness     = 1
	MaxThickness     = 20
	DefaultThickness = 2
)

// EraserScale is the eraser radius per unit of brush thickness.
const EraserScale = 5

// Background is the colour of an empty surface. Erasing paints with it.
var Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Colors are the brush colours offered by the camera whiteboard.
var Colors = map[string]color.RGBA{
	"black": {R: 0, G: 0, B: 0, A: 255},
	"red":   {R: 255, G: 0, B: 0, A: 255},
	"green": {R: 0, G: 255, B: 0, A: 255},
	"blue":  {R: 0, G: 0, B: 255, A: 255},
}

// DefaultColor is the brush colour at startup.
const DefaultColor = "black"

// ColorNames returns the names of Colors in a stable order.
func ColorNames() []string {
	names := make([]string, 0, len(Colors))
	for name := range Colors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Settings is the brush configuration applied to one frame.
type Settings struct {
	ColorName string
	Color     color.RGBA
	Thickness int
}

// EraserRadius is the radius of the area erased around the eraser fingertip.
func (s Settings) EraserRadius() int {
	return s.Thickness * EraserScale
}

// Controls is the configuration shared between the UI and the capture loop.
// The UI writes through the setters; the capture loop reads one snapshot per
// frame, so changes only ever affect frames processed after them.
type Controls struct {
	mu        sync.RWMutex
	colorName string
	thickness int
	clear     bool
}

// NewControls returns controls with the default colour and thickness.
func NewControls() *Controls {
	return &Controls{
		colorName: DefaultColor,
		thickness: DefaultThickness,
	}
}

// SetColor selects a brush colour by name.
func (c *Controls) SetColor(name string) error {
	if _, ok := Colors[name]; !ok {
		return fmt.Errorf("unknown color %q", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.colorName = name
	return nil
}

// SetThickness sets the brush thickness, clamped to [MinThickness, MaxThickness].
// It returns the value actually applied.
func (c *Controls) SetThickness(thickness int) int {
	if thickness < MinThickness {
		thickness = MinThickness
	}
	if thickness > MaxThickness {
		thickness = MaxThickness
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.thickness = thickness
	return thickness
}

// RequestClear asks the capture loop to wipe the surface on its next frame.
func (c *Controls) RequestClear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear = true
}

// Settings returns the current brush configuration without consuming a clear request.
func (c *Controls) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Settings{
		ColorName: c.colorName,
		Color:     Colors[c.colorName],
		Thickness: c.thickness,
	}
}

// snapshot returns the configuration for the next frame and consumes any
// pending clear request.
func (c *Controls) snapshot() (Settings, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear := c.clear
	c.clear = false

	return Settings{
		ColorName: c.colorName,
		Color:     Colors[c.colorName],
		Thickness: c.thickness,
	}, clear
}

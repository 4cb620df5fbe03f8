// Package board routes detected hands to the draw and erase roles and
// composites their actions onto the camera whiteboard's persistent surface.
package board

import (
	"image"

	"github.com/ayusman/airboard/internal/detector"
)

// Status messages reported after each frame.
const (
	StatusReady   = "Ready - Right hand to draw, Left hand to erase"
	StatusNoHands = "No Hands Detected"
	StatusDrawing = "Drawing"
	StatusErasing = "Erasing"
	StatusBoth    = "Drawing and erasing"
)

// Observation is one detected hand reduced to what routing needs.
type Observation struct {
	Handedness string
	Tip        image.Point
}

// Observe extracts the index fingertip of every hand, scaled to a width x height frame.
func Observe(hands []detector.HandLandmarks, width, height int) []Observation {
	obs := make([]Observation, 0, len(hands))
	for i := range hands {
		obs = append(obs, Observation{
			Handedness: hands[i].Handedness,
			Tip:        hands[i].IndexFingertip(width, height),
		})
	}
	return obs
}

// Tips holds at most one fingertip per role for a frame.
type Tips struct {
	Draw     image.Point
	HasDraw  bool
	Erase    image.Point
	HasErase bool
}

// Route assigns observations to roles by handedness label: Right draws and
// every other label erases. When several hands land on one role the last one wins.
func Route(obs []Observation) Tips {
	var tips Tips
	for _, o := range obs {
		if o.Handedness == detector.Right {
			tips.Draw, tips.HasDraw = o.Tip, true
		} else {
			tips.Erase, tips.HasErase = o.Tip, true
		}
	}
	return tips
}

// Frame describes what the compositor did with one frame.
type Frame struct {
	// Number counts processed frames, starting at 1.
	Number   uint64
	Settings Settings
	// Cleared reports that a clear request wiped the surface before this frame's actions.
	Cleared bool
	Hands   int
	Tips    Tips

	// Drew reports that one segment From -> To was drawn.
	Drew     bool
	From, To image.Point
	// Erased reports that a disc around Tips.Erase was painted in the background colour.
	Erased bool

	DrawState  State
	EraseState State
	Status     string
}

// Compositor applies per-frame hand observations to a Surface.
// It is not safe for concurrent use; the capture loop owns it.
type Compositor struct {
	surface  Surface
	controls *Controls
	draw     Tracker
	erase    Tracker
	frames   uint64
}

// NewCompositor creates a compositor drawing on surface with the given controls.
func NewCompositor(surface Surface, controls *Controls) *Compositor {
	if controls == nil {
		controls = NewControls()
	}
	return &Compositor{
		surface:  surface,
		controls: controls,
	}
}

// Process routes the hands detected in one width x height frame and updates the surface.
func (c *Compositor) Process(hands []detector.HandLandmarks, width, height int) Frame {
	settings, clear := c.controls.snapshot()
	if clear {
		c.surface.Reset()
	}

	c.frames++
	frame := Frame{
		Number:   c.frames,
		Settings: settings,
		Cleared:  clear,
		Hands:    len(hands),
	}

	if len(hands) == 0 {
		c.Reset()
		frame.DrawState, frame.EraseState = Idle, Idle
		frame.Status = StatusNoHands
		return frame
	}

	tips := Route(Observe(hands, width, height))
	frame.Tips = tips

	if tips.HasDraw {
		if prev, ok := c.draw.Observe(tips.Draw); ok {
			c.surface.Line(prev, tips.Draw, settings.Color, settings.Thickness)
			frame.Drew = true
			frame.From, frame.To = prev, tips.Draw
		}
	} else {
		c.draw.Lose()
	}

	if tips.HasErase {
		c.erase.Observe(tips.Erase)
		c.surface.FillCircle(tips.Erase, settings.EraserRadius(), Background)
		frame.Erased = true
	} else {
		c.erase.Lose()
	}

	frame.DrawState = c.draw.State()
	frame.EraseState = c.erase.State()
	frame.Status = statusFor(tips)
	return frame
}

// Reset drops tracking for both roles.
func (c *Compositor) Reset() {
	c.draw.Lose()
	c.erase.Lose()
}

// State returns the tracking state of role.
func (c *Compositor) State(role Role) State {
	if role == RoleErase {
		return c.erase.State()
	}
	return c.draw.State()
}

// Controls returns the controls read by the compositor.
func (c *Compositor) Controls() *Controls {
	return c.controls
}

func statusFor(tips Tips) string {
	switch {
	case tips.HasDraw && tips.HasErase:
		return StatusBoth
	case tips.HasDraw:
		return StatusDrawing
	default:
		return StatusErasing
	}
}

package board

import "image"

// Role is the function assigned to a hand in the camera whiteboard.
type Role int

const (
	// RoleDraw is played by the right hand.
	RoleDraw Role = iota
	// RoleErase is played by the left hand.
	RoleErase
)

func (r Role) String() string {
	switch r {
	case RoleDraw:
		return "draw"
	case RoleErase:
		return "erase"
	default:
		return "unknown"
	}
}

// State is the tracking state of a role.
type State int

const (
	// Idle means the role has no remembered position.
	Idle State = iota
	// Tracking means the role was observed on the previous frame.
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Tracker remembers the last fingertip position of one role.
type Tracker struct {
	last  image.Point
	state State
}

// Observe records p as the role's position for this frame. It returns the
// position from the previous frame and true when the role was already tracking.
func (t *Tracker) Observe(p image.Point) (image.Point, bool) {
	prev, ok := t.last, t.state == Tracking
	t.last = p
	t.state = Tracking
	return prev, ok
}

// Lose forgets the remembered position, so the next observation starts fresh.
func (t *Tracker) Lose() {
	t.last = image.Point{}
	t.state = Idle
}

// State returns the current tracking state.
func (t *Tracker) State() State {
	return t.state
}

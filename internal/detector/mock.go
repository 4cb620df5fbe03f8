package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	err      error
	calls    int
	closed   int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence queues per-frame results. Each Detect call consumes one entry;
// once the queue is exhausted Detect falls back to the hands set by SetHands.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close records the call; it never fails.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// Closed returns how many times Close has been called.
func (m *MockDetector) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// PointingLandmarks returns a preset hand with the index finger extended and
// its tip at the normalized position (tipX, tipY). The other fingers are curled.
func PointingLandmarks(handedness string, tipX, tipY float64) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	// Build the hand relative to the fingertip so every point stays near it
	at := func(dx, dy float64) Point3D {
		return Point3D{X: tipX + dx, Y: tipY + dy}
	}

	landmarks.Points[Wrist] = at(0.0, 0.30)

	landmarks.Points[ThumbCMC] = at(0.04, 0.26)
	landmarks.Points[ThumbMCP] = at(0.07, 0.22)
	landmarks.Points[ThumbIP] = at(0.06, 0.18)
	landmarks.Points[ThumbTip] = at(0.03, 0.17)

	// Index finger extended upward to the tip
	landmarks.Points[IndexMCP] = at(0.0, 0.18)
	landmarks.Points[IndexPIP] = at(0.0, 0.11)
	landmarks.Points[IndexDIP] = at(0.0, 0.05)
	landmarks.Points[IndexTip] = at(0.0, 0.0)

	// Middle, ring and pinky curled into the palm
	landmarks.Points[MiddleMCP] = at(-0.03, 0.18)
	landmarks.Points[MiddlePIP] = at(-0.03, 0.15)
	landmarks.Points[MiddleDIP] = at(-0.03, 0.18)
	landmarks.Points[MiddleTip] = at(-0.03, 0.20)

	landmarks.Points[RingMCP] = at(-0.06, 0.19)
	landmarks.Points[RingPIP] = at(-0.06, 0.16)
	landmarks.Points[RingDIP] = at(-0.06, 0.19)
	landmarks.Points[RingTip] = at(-0.06, 0.21)

	landmarks.Points[PinkyMCP] = at(-0.08, 0.21)
	landmarks.Points[PinkyPIP] = at(-0.08, 0.19)
	landmarks.Points[PinkyDIP] = at(-0.08, 0.21)
	landmarks.Points[PinkyTip] = at(-0.08, 0.23)

	return landmarks
}

// Package raster implements the camera whiteboard surface and frame overlay on OpenCV matrices.
package raster

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/airboard/internal/board"
)

// ErrClosed is returned when using a surface after Close.
var ErrClosed = errors.New("surface is closed")

var _ board.Surface = (*Mat)(nil)

// Mat is a board.Surface backed by a BGR gocv.Mat.
type Mat struct {
	mu     sync.Mutex
	mat    gocv.Mat
	width  int
	height int
	closed bool
}

// New allocates a width x height surface filled with the background colour.
func New(width, height int) *Mat {
	m := &Mat{
		mat:    gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3),
		width:  width,
		height: height,
	}
	m.mat.SetTo(scalar(board.Background))
	return m
}

// Size returns the surface dimensions.
func (m *Mat) Size() (int, int) {
	return m.width, m.height
}

func (m *Mat) Line(a, b image.Point, c color.RGBA, thickness int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	gocv.Line(&m.mat, a, b, c, thickness)
}

func (m *Mat) FillCircle(center image.Point, radius int, c color.RGBA) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	// Negative thickness fills the circle
	gocv.Circle(&m.mat, center, radius, c, -1)
}

func (m *Mat) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.mat.SetTo(scalar(board.Background))
}

// Clone returns a copy of the surface. The caller must close it.
func (m *Mat) Clone() (gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return gocv.Mat{}, ErrClosed
	}
	return m.mat.Clone(), nil
}

// Image converts the surface to an RGBA image.
func (m *Mat) Image() (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	return m.mat.ToImage()
}

// At returns the colour of the pixel at (x, y).
func (m *Mat) At(x, y int) (color.RGBA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return color.RGBA{}, ErrClosed
	}
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return color.RGBA{}, errors.New("pixel out of bounds")
	}
	return pixel(m.mat, x, y), nil
}

// Close releases the underlying matrix. It is safe to call more than once.
func (m *Mat) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	return m.mat.Close()
}

// scalar converts c to an OpenCV BGR scalar.
func scalar(c color.RGBA) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), float64(c.A))
}

func pixel(mat gocv.Mat, x, y int) color.RGBA {
	v := mat.GetVecbAt(y, x)
	return color.RGBA{R: v[2], G: v[1], B: v[0], A: 255}
}

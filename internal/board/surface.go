package board

import (
	"image"
	"image/color"
	"sync"
)

// Surface is the persistent drawing raster of the camera whiteboard.
// Every pixel holds only its latest colour; nothing painted over can be recovered.
type Surface interface {
	// Line draws a segment from a to b.
	Line(a, b image.Point, c color.RGBA, thickness int)

	// FillCircle paints a filled disc centered on center.
	FillCircle(center image.Point, radius int, c color.RGBA)

	// Reset repaints the whole surface with the background colour.
	Reset()
}

// OpKind identifies an operation recorded by Recorder.
type OpKind int

const (
	OpLine OpKind = iota
	OpFillCircle
	OpReset
)

// Op is one recorded surface operation.
type Op struct {
	Kind      OpKind
	From, To  image.Point
	Center    image.Point
	Radius    int
	Color     color.RGBA
	Thickness int
}

// Recorder is a Surface that records operations instead of drawing them.
type Recorder struct {
	mu  sync.Mutex
	ops []Op
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Line(a, b image.Point, c color.RGBA, thickness int) {
	r.record(Op{Kind: OpLine, From: a, To: b, Color: c, Thickness: thickness})
}

func (r *Recorder) FillCircle(center image.Point, radius int, c color.RGBA) {
	r.record(Op{Kind: OpFillCircle, Center: center, Radius: radius, Color: c})
}

func (r *Recorder) Reset() {
	r.record(Op{Kind: OpReset})
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

// Ops returns a copy of every operation recorded so far.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]Op, len(r.ops))
	copy(ops, r.ops)
	return ops
}

// Count returns how many operations of the given kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

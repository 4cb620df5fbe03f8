// Package pointer implements the mouse-driven whiteboard: a cursor anchor that
// turns drag events into connected line segments, a fixed colour palette and
// a display list that can be rasterized.
package pointer

import (
	"image"
	"image/color"

	"github.com/google/uuid"
)

// Brush width limits.
const (
	MinWidth     = 1
	MaxWidth     = 50
	DefaultWidth = 5
)

// Palette geometry. Swatches sit in a gutter on the left edge of the board.
const (
	SwatchX       = 10
	SwatchY       = 10
	SwatchSize    = 20
	SwatchSpacing = 30
	PaletteWidth  = SwatchX + SwatchSize + 10
)

// Background is the colour of an empty board. The eraser paints with it.
var Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Swatch is one palette entry.
type Swatch struct {
	Name  string
	Color color.RGBA
}

// Palette lists the swatches from top to bottom.
var Palette = []Swatch{
	{Name: "black", Color: color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}},
	{Name: "yellow", Color: color.RGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff}},
	{Name: "gray", Color: color.RGBA{R: 0xbe, G: 0xbe, B: 0xbe, A: 0xff}},
	{Name: "brown4", Color: color.RGBA{R: 0x8b, G: 0x23, B: 0x23, A: 0xff}},
	{Name: "red", Color: color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}},
	{Name: "orange", Color: color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}},
	{Name: "green", Color: color.RGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}},
	{Name: "blue", Color: color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}},
	{Name: "purple", Color: color.RGBA{R: 0xa0, G: 0x20, B: 0xf0, A: 0xff}},
}

// SwatchRect returns the bounds of the i-th palette swatch.
func SwatchRect(i int) image.Rectangle {
	y := SwatchY + i*SwatchSpacing
	return image.Rect(SwatchX, y, SwatchX+SwatchSize, y+SwatchSize)
}

// Point is a board position in pixels.
type Point struct{ X, Y float32 }

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Kind distinguishes display list items.
type Kind int

const (
	KindSwatch Kind = iota
	KindSegment
)

// Item is one entry of the display list.
type Item struct {
	ID    string
	Kind  Kind
	Color color.RGBA

	// Swatch fields
	Name string
	Rect image.Rectangle

	// Segment fields. Segments have round caps and are antialiased.
	From, To Point
	Width    float32
}

// Board holds the pointer whiteboard state. It is owned by the UI goroutine
// and is not safe for concurrent use.
type Board struct {
	anchor Point
	color  color.RGBA
	width  float32
	items  []Item
}

// New returns a board with the palette drawn, a black brush of DefaultWidth
// and the anchor at the origin.
func New() *Board {
	b := &Board{
		color: Palette[0].Color,
		width: DefaultWidth,
	}
	b.Clear()
	return b
}

// Locate makes p the anchor of the next segment.
func (b *Board) Locate(p Point) {
	b.anchor = p
}

// Extend adds a segment from the anchor to p with the active colour and
// width, then moves the anchor to p. It returns the new segment.
func (b *Board) Extend(p Point) Item {
	seg := Item{
		ID:    uuid.NewString(),
		Kind:  KindSegment,
		Color: b.color,
		From:  b.anchor,
		To:    p,
		Width: b.width,
	}
	b.items = append(b.items, seg)
	b.anchor = p
	return seg
}

// Press handles a button press at p: on a swatch it selects that colour,
// anywhere else it moves the anchor. It reports whether a swatch was hit.
func (b *Board) Press(p Point) bool {
	if s, ok := b.SwatchAt(p); ok {
		b.SelectColor(s.Color)
		return true
	}
	b.Locate(p)
	return false
}

// SwatchAt returns the palette swatch under p, if any.
func (b *Board) SwatchAt(p Point) (Swatch, bool) {
	pt := image.Pt(int(p.X), int(p.Y))
	if p.X < 0 || p.Y < 0 {
		return Swatch{}, false
	}
	for _, it := range b.items {
		if it.Kind == KindSwatch && pt.In(it.Rect) {
			return Swatch{Name: it.Name, Color: it.Color}, true
		}
	}
	return Swatch{}, false
}

// SelectColor sets the colour of the following segments.
func (b *Board) SelectColor(c color.RGBA) {
	b.color = c
}

// UseEraser selects the background colour. Erased strokes are painted over, not removed.
func (b *Board) UseEraser() {
	b.color = Background
}

// SetWidth sets the brush width, clamped to [MinWidth, MaxWidth], and returns the applied value.
func (b *Board) SetWidth(w float32) float32 {
	if w < MinWidth {
		w = MinWidth
	}
	if w > MaxWidth {
		w = MaxWidth
	}
	b.width = w
	return w
}

// Clear removes every item and redraws the palette.
func (b *Board) Clear() {
	b.items = b.items[:0]
	for i, s := range Palette {
		b.items = append(b.items, Item{
			ID:    uuid.NewString(),
			Kind:  KindSwatch,
			Color: s.Color,
			Name:  s.Name,
			Rect:  SwatchRect(i),
		})
	}
}

// Anchor returns the current anchor.
func (b *Board) Anchor() Point { return b.anchor }

// Color returns the active colour.
func (b *Board) Color() color.RGBA { return b.color }

// Width returns the brush width.
func (b *Board) Width() float32 { return b.width }

// Items returns a copy of the display list in drawing order.
func (b *Board) Items() []Item {
	items := make([]Item, len(b.items))
	copy(items, b.items)
	return items
}

// Segments returns how many segments have been drawn since the last Clear.
func (b *Board) Segments() int {
	n := 0
	for _, it := range b.items {
		if it.Kind == KindSegment {
			n++
		}
	}
	return n
}

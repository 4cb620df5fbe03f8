package ui

import (
	"fmt"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/ayusman/airboard/internal/pointer"
)

// EraserName identifies the eraser in brush change notifications.
const EraserName = "eraser"

// PointerBoard is a widget that draws a pointer.Board and feeds it mouse events.
type PointerBoard struct {
	widget.BaseWidget

	board *pointer.Board
	buf   *image.RGBA
	img   *canvas.Image
	down  bool
	// swatchHeld is set while the button that picked a swatch is still down.
	swatchHeld bool

	// OnBrushChange is called after the colour or width changes.
	OnBrushChange func(name string, width float32)
}

var _ fyne.Widget = (*PointerBoard)(nil)
var _ fyne.Draggable = (*PointerBoard)(nil)
var _ desktop.Mouseable = (*PointerBoard)(nil)

// NewPointerBoard creates a widget that draws b.
func NewPointerBoard(b *pointer.Board) *PointerBoard {
	p := &PointerBoard{
		board: b,
		buf:   image.NewRGBA(image.Rect(0, 0, 1, 1)),
	}
	p.img = canvas.NewImageFromImage(p.buf)
	p.img.FillMode = canvas.ImageFillStretch
	p.img.ScaleMode = canvas.ImageScalePixels
	p.ExtendBaseWidget(p)
	return p
}

// Board returns the underlying board.
func (p *PointerBoard) Board() *pointer.Board { return p.board }

// Image returns the rendered board.
func (p *PointerBoard) Image() *image.RGBA { return p.buf }

// CreateRenderer implements fyne.Widget.
func (p *PointerBoard) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.img)
}

// MinSize keeps the palette and some drawing room visible.
func (p *PointerBoard) MinSize() fyne.Size {
	return fyne.NewSize(640, 480)
}

// Resize reallocates the backing image and repaints the display list.
func (p *PointerBoard) Resize(size fyne.Size) {
	p.BaseWidget.Resize(size)

	w, h := int(size.Width), int(size.Height)
	if w < 1 || h < 1 {
		return
	}
	if b := p.buf.Bounds(); b.Dx() == w && b.Dy() == h {
		return
	}
	p.buf = image.NewRGBA(image.Rect(0, 0, w, h))
	p.img.Image = p.buf
	p.redraw()
}

// MouseDown selects a swatch or places the anchor.
func (p *PointerBoard) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p.down = true
	p.swatchHeld = p.board.Press(point(e.Position))
	if p.swatchHeld {
		p.notify()
	}
}

// MouseUp ends the stroke.
func (p *PointerBoard) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		p.down = false
		p.swatchHeld = false
	}
}

// Dragged extends the stroke to the pointer position.
func (p *PointerBoard) Dragged(e *fyne.DragEvent) {
	if p.swatchHeld {
		return
	}
	if !p.down {
		// Touch drivers deliver drags without a mouse press.
		p.board.Locate(point(e.Position.Subtract(e.Dragged)))
		p.down = true
	}
	seg := p.board.Extend(point(e.Position))
	pointer.DrawItem(p.buf, seg)
	p.img.Refresh()
}

// DragEnd implements fyne.Draggable.
func (p *PointerBoard) DragEnd() {
	p.down = false
	p.swatchHeld = false
}

// SelectColor switches the brush to c.
func (p *PointerBoard) SelectColor(c color.RGBA) {
	p.board.SelectColor(c)
	p.notify()
}

// UseEraser switches the brush to the background colour.
func (p *PointerBoard) UseEraser() {
	p.board.UseEraser()
	p.notify()
}

// SetWidth sets the brush width and returns the applied value.
func (p *PointerBoard) SetWidth(w float32) float32 {
	applied := p.board.SetWidth(w)
	p.notify()
	return applied
}

// Clear wipes every segment and repaints the palette.
func (p *PointerBoard) Clear() {
	p.board.Clear()
	p.redraw()
}

func (p *PointerBoard) redraw() {
	pointer.Render(p.buf, p.board)
	p.img.Refresh()
}

func (p *PointerBoard) notify() {
	if p.OnBrushChange == nil {
		return
	}
	name := EraserName
	for _, s := range pointer.Palette {
		if s.Color == p.board.Color() {
			name = s.Name
			break
		}
	}
	p.OnBrushChange(name, p.board.Width())
}

func point(pos fyne.Position) pointer.Point {
	return pointer.Pt(pos.X, pos.Y)
}

// NewPointerWindow builds the mouse whiteboard window around board.
func NewPointerWindow(a fyne.App, board *PointerBoard) fyne.Window {
	w := a.NewWindow("Whiteboard")

	value := widget.NewLabel("")
	setLabel := func(width float32) {
		value.SetText(fmt.Sprintf("Brush: %d", int(width)))
	}

	slider := widget.NewSlider(pointer.MinWidth, pointer.MaxWidth)
	slider.Step = 1
	slider.Value = float64(board.Board().Width())
	slider.OnChanged = func(v float64) {
		setLabel(board.SetWidth(float32(v)))
	}
	setLabel(board.Board().Width())

	toolbar := container.NewHBox(
		widget.NewLabel("Brush size"),
		container.NewGridWrap(fyne.NewSize(200, slider.MinSize().Height), slider),
		value,
		widget.NewButton("Eraser", board.UseEraser),
		widget.NewButton("New", board.Clear),
	)

	w.SetContent(container.NewBorder(toolbar, nil, nil, nil, board))
	return w
}

package pointer

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic Bézier control points so four curves approximate a circle.
const kappa = 0.5522847498

// Render paints the background and every item of b onto dst.
func Render(dst *image.RGBA, b *Board) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	for _, it := range b.items {
		DrawItem(dst, it)
	}
}

// DrawItem paints a single item onto dst, on top of what is already there.
func DrawItem(dst *image.RGBA, it Item) {
	switch it.Kind {
	case KindSwatch:
		draw.Draw(dst, it.Rect.Intersect(dst.Bounds()), image.NewUniform(it.Color), image.Point{}, draw.Src)
	case KindSegment:
		drawSegment(dst, it)
	}
}

// drawSegment strokes the body of the segment and then a disc at each end for
// the round caps. Each shape is rasterized on its own so that overlapping
// paths of opposite winding cannot cancel out.
func drawSegment(dst *image.RGBA, it Item) {
	bounds := dst.Bounds()
	if bounds.Empty() {
		return
	}
	src := image.NewUniform(it.Color)
	half := it.Width / 2
	origin := Pt(float32(bounds.Min.X), float32(bounds.Min.Y))
	from := Pt(it.From.X-origin.X, it.From.Y-origin.Y)
	to := Pt(it.To.X-origin.X, it.To.Y-origin.Y)

	r := vector.NewRasterizer(bounds.Dx(), bounds.Dy())

	dx, dy := to.X-from.X, to.Y-from.Y
	if length := float32(math.Hypot(float64(dx), float64(dy))); length > 0 {
		nx, ny := -dy/length*half, dx/length*half
		r.MoveTo(from.X+nx, from.Y+ny)
		r.LineTo(to.X+nx, to.Y+ny)
		r.LineTo(to.X-nx, to.Y-ny)
		r.LineTo(from.X-nx, from.Y-ny)
		r.ClosePath()
		r.Draw(dst, bounds, src, image.Point{})
	}

	for _, c := range []Point{from, to} {
		r.Reset(bounds.Dx(), bounds.Dy())
		circle(r, c, half)
		r.Draw(dst, bounds, src, image.Point{})
	}
}

func circle(r *vector.Rasterizer, c Point, radius float32) {
	k := radius * kappa
	r.MoveTo(c.X+radius, c.Y)
	r.CubeTo(c.X+radius, c.Y+k, c.X+k, c.Y+radius, c.X, c.Y+radius)
	r.CubeTo(c.X-k, c.Y+radius, c.X-radius, c.Y+k, c.X-radius, c.Y)
	r.CubeTo(c.X-radius, c.Y-k, c.X-k, c.Y-radius, c.X, c.Y-radius)
	r.CubeTo(c.X+k, c.Y-radius, c.X+radius, c.Y-k, c.X+radius, c.Y)
	r.ClosePath()
}

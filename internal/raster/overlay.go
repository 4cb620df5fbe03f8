package raster

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/airboard/internal/board"
	"github.com/ayusman/airboard/internal/detector"
)

// Overlay colours and marker sizes.
var (
	SkeletonColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	JointColor    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	DrawColor     = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	EraseColor    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

const (
	DrawMarkerRadius  = 10
	EraseMarkerRadius = 15
	jointRadius       = 3
	labelScale        = 0.6
	labelThickness    = 2
)

var labelOffset = image.Pt(-20, -20)

// Mirror returns a horizontally flipped copy of frame. The caller must close it.
func Mirror(frame gocv.Mat) gocv.Mat {
	mirrored := gocv.NewMat()
	gocv.Flip(frame, &mirrored, 1)
	return mirrored
}

// Annotate draws the hand skeletons and role markers of frame onto vis.
// vis is the mirrored camera image; the drawing surface is never touched.
func Annotate(vis *gocv.Mat, hands []detector.HandLandmarks, frame board.Frame) {
	w, h := vis.Cols(), vis.Rows()

	for i := range hands {
		points := make([]image.Point, len(hands[i].Points))
		for j, p := range hands[i].Points {
			points[j] = p.Pixel(w, h)
		}
		for _, conn := range detector.Connections {
			if conn[0] >= len(points) || conn[1] >= len(points) {
				continue
			}
			gocv.Line(vis, points[conn[0]], points[conn[1]], SkeletonColor, 2)
		}
		for _, p := range points {
			gocv.Circle(vis, p, jointRadius, JointColor, -1)
		}
	}

	if frame.Tips.HasDraw {
		marker(vis, frame.Tips.Draw, DrawMarkerRadius, DrawColor, "Draw")
	}
	if frame.Tips.HasErase {
		marker(vis, frame.Tips.Erase, EraseMarkerRadius, EraseColor, "Erase")
	}
}

func marker(vis *gocv.Mat, at image.Point, radius int, c color.RGBA, label string) {
	gocv.Circle(vis, at, radius, c, -1)
	gocv.PutText(vis, label, at.Add(labelOffset), gocv.FontHersheySimplex, labelScale, c, labelThickness)
}

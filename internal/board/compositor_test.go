package board

import (
	"image"
	"sync"
	"testing"

	"github.com/ayusman/airboard/internal/detector"
)

const (
	frameWidth  = 640
	frameHeight = 480
)

// hand builds a pointing hand whose index tip lands on pixel (x, y) of a 640x480 frame.
func hand(label string, x, y int) detector.HandLandmarks {
	nx := (float64(x) + 0.5) / frameWidth
	ny := (float64(y) + 0.5) / frameHeight
	return detector.PointingLandmarks(label, nx, ny)
}

func hands(h ...detector.HandLandmarks) []detector.HandLandmarks {
	return h
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name string
		obs  []Observation
		want Tips
	}{
		{
			name: "no observations",
			obs:  nil,
			want: Tips{},
		},
		{
			name: "right hand draws",
			obs:  []Observation{{Handedness: detector.Right, Tip: image.Pt(1, 2)}},
			want: Tips{Draw: image.Pt(1, 2), HasDraw: true},
		},
		{
			name: "left hand erases",
			obs:  []Observation{{Handedness: detector.Left, Tip: image.Pt(3, 4)}},
			want: Tips{Erase: image.Pt(3, 4), HasErase: true},
		},
		{
			name: "both hands",
			obs: []Observation{
				{Handedness: detector.Left, Tip: image.Pt(3, 4)},
				{Handedness: detector.Right, Tip: image.Pt(1, 2)},
			},
			want: Tips{Draw: image.Pt(1, 2), HasDraw: true, Erase: image.Pt(3, 4), HasErase: true},
		},
		{
			name: "last right hand wins",
			obs: []Observation{
				{Handedness: detector.Right, Tip: image.Pt(1, 1)},
				{Handedness: detector.Right, Tip: image.Pt(9, 9)},
			},
			want: Tips{Draw: image.Pt(9, 9), HasDraw: true},
		},
		{
			name: "any other label erases",
			obs:  []Observation{{Handedness: "Unknown", Tip: image.Pt(5, 5)}},
			want: Tips{Erase: image.Pt(5, 5), HasErase: true},
		},
		{
			name: "last non-right hand wins the eraser",
			obs: []Observation{
				{Handedness: detector.Left, Tip: image.Pt(3, 4)},
				{Handedness: "", Tip: image.Pt(7, 8)},
			},
			want: Tips{Erase: image.Pt(7, 8), HasErase: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.obs)
			if got != tt.want {
				t.Errorf("Route() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestObserve_ScalesIndexTip(t *testing.T) {
	obs := Observe(hands(hand(detector.Right, 100, 100), hand(detector.Left, 639, 479)), frameWidth, frameHeight)

	if len(obs) != 2 {
		t.Fatalf("Observe() returned %d observations, want 2", len(obs))
	}
	if obs[0].Tip != image.Pt(100, 100) || obs[0].Handedness != detector.Right {
		t.Errorf("obs[0] = %+v, want Right at (100,100)", obs[0])
	}
	if obs[1].Tip != image.Pt(639, 479) || obs[1].Handedness != detector.Left {
		t.Errorf("obs[1] = %+v, want Left at (639,479)", obs[1])
	}
}

func TestCompositor_DrawSegmentThenIdle(t *testing.T) {
	surface := NewRecorder()
	c := NewCompositor(surface, nil)

	first := c.Process(hands(hand(detector.Right, 100, 100)), frameWidth, frameHeight)
	if first.Drew {
		t.Error("first observation must not draw")
	}
	if first.DrawState != Tracking {
		t.Errorf("draw state after first frame = %v, want tracking", first.DrawState)
	}

	second := c.Process(hands(hand(detector.Right, 120, 130)), frameWidth, frameHeight)
	if !second.Drew {
		t.Fatal("second observation should draw a segment")
	}
	if second.From != image.Pt(100, 100) || second.To != image.Pt(120, 130) {
		t.Errorf("segment = %v -> %v, want (100,100) -> (120,130)", second.From, second.To)
	}

	third := c.Process(nil, frameWidth, frameHeight)
	if third.Drew {
		t.Error("frame without hands must not draw")
	}
	if third.DrawState != Idle {
		t.Errorf("draw state after gap = %v, want idle", third.DrawState)
	}

	ops := surface.Ops()
	if len(ops) != 1 {
		t.Fatalf("recorded %d ops, want exactly 1: %+v", len(ops), ops)
	}
	want := Op{Kind: OpLine, From: image.Pt(100, 100), To: image.Pt(120, 130), Color: Colors["black"], Thickness: DefaultThickness}
	if ops[0] != want {
		t.Errorf("op = %+v, want %+v", ops[0], want)
	}
}

func TestCompositor_DrawRoleLostWhenOnlyLeftHandRemains(t *testing.T) {
	surface := NewRecorder()
	c := NewCompositor(surface, nil)

	c.Process(hands(hand(detector.Right, 10, 10)), frameWidth, frameHeight)
	frame := c.Process(hands(hand(detector.Left, 300, 300)), frameWidth, frameHeight)

	if frame.DrawState != Idle {
		t.Errorf("draw state = %v, want idle", frame.DrawState)
	}

	// Reappearing right hand starts a fresh segment instead of jumping from (10,10)
	frame = c.Process(hands(hand(detector.Right, 50, 50)), frameWidth, frameHeight)
	if frame.Drew {
		t.Error("reappearing draw hand must not connect across the gap")
	}
	if surface.Count(OpLine) != 0 {
		t.Errorf("recorded %d lines, want 0", surface.Count(OpLine))
	}
}

func TestCompositor_EraseDisc(t *testing.T) {
	surface := NewRecorder()
	controls := NewControls()
	controls.SetThickness(2)
	c := NewCompositor(surface, controls)

	frame := c.Process(hands(hand(detector.Left, 200, 200)), frameWidth, frameHeight)

	if !frame.Erased {
		t.Fatal("left hand should erase on its first frame")
	}
	if frame.EraseState != Tracking {
		t.Errorf("erase state = %v, want tracking", frame.EraseState)
	}

	ops := surface.Ops()
	if len(ops) != 1 {
		t.Fatalf("recorded %d ops, want 1", len(ops))
	}
	want := Op{Kind: OpFillCircle, Center: image.Pt(200, 200), Radius: 10, Color: Background}
	if ops[0] != want {
		t.Errorf("op = %+v, want %+v", ops[0], want)
	}
}

func TestCompositor_EraseEveryFrame(t *testing.T) {
	surface := NewRecorder()
	c := NewCompositor(surface, nil)

	for i := 0; i < 3; i++ {
		c.Process(hands(hand(detector.Left, 100+i*10, 100)), frameWidth, frameHeight)
	}

	if got := surface.Count(OpFillCircle); got != 3 {
		t.Errorf("recorded %d erase discs, want 3", got)
	}
	if got := surface.Count(OpLine); got != 0 {
		t.Errorf("erasing must not draw lines, got %d", got)
	}
}

func TestCompositor_NoHandsClearsBothRoles(t *testing.T) {
	surface := NewRecorder()
	c := NewCompositor(surface, nil)

	both := hands(hand(detector.Right, 100, 100), hand(detector.Left, 400, 400))
	c.Process(both, frameWidth, frameHeight)
	frame := c.Process(both, frameWidth, frameHeight)
	if frame.DrawState != Tracking || frame.EraseState != Tracking {
		t.Fatalf("states = %v/%v, want both tracking", frame.DrawState, frame.EraseState)
	}
	if frame.Status != StatusBoth {
		t.Errorf("status = %q, want %q", frame.Status, StatusBoth)
	}

	frame = c.Process(nil, frameWidth, frameHeight)
	if frame.DrawState != Idle || frame.EraseState != Idle {
		t.Errorf("states = %v/%v, want both idle", frame.DrawState, frame.EraseState)
	}
	if c.State(RoleDraw) != Idle || c.State(RoleErase) != Idle {
		t.Error("compositor should report both roles idle")
	}
	if frame.Status != StatusNoHands {
		t.Errorf("status = %q, want %q", frame.Status, StatusNoHands)
	}

	lines := surface.Count(OpLine)
	c.Process(hands(hand(detector.Right, 105, 105)), frameWidth, frameHeight)
	if surface.Count(OpLine) != lines {
		t.Error("draw role must restart after a frame without hands")
	}
}

func TestCompositor_SettingsApplyFromNextFrame(t *testing.T) {
	surface := NewRecorder()
	controls := NewControls()
	c := NewCompositor(surface, controls)

	c.Process(hands(hand(detector.Right, 0, 0)), frameWidth, frameHeight)
	c.Process(hands(hand(detector.Right, 10, 0)), frameWidth, frameHeight)

	// Changed between frame 2 and frame 3
	if err := controls.SetColor("red"); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}
	controls.SetThickness(7)

	frame := c.Process(hands(hand(detector.Right, 20, 0)), frameWidth, frameHeight)
	if frame.Settings.ColorName != "red" || frame.Settings.Thickness != 7 {
		t.Errorf("frame settings = %+v, want red/7", frame.Settings)
	}

	ops := surface.Ops()
	if len(ops) != 2 {
		t.Fatalf("recorded %d ops, want 2", len(ops))
	}
	if ops[0].Color != Colors["black"] || ops[0].Thickness != DefaultThickness {
		t.Errorf("first segment = %+v, want black/%d", ops[0], DefaultThickness)
	}
	if ops[1].Color != Colors["red"] || ops[1].Thickness != 7 {
		t.Errorf("second segment = %+v, want red/7", ops[1])
	}
}

func TestCompositor_ClearRequest(t *testing.T) {
	surface := NewRecorder()
	controls := NewControls()
	c := NewCompositor(surface, controls)

	c.Process(hands(hand(detector.Right, 0, 0)), frameWidth, frameHeight)
	controls.RequestClear()

	frame := c.Process(hands(hand(detector.Right, 10, 10)), frameWidth, frameHeight)
	if !frame.Cleared {
		t.Error("frame after RequestClear should report Cleared")
	}

	ops := surface.Ops()
	if len(ops) != 2 || ops[0].Kind != OpReset || ops[1].Kind != OpLine {
		t.Fatalf("ops = %+v, want reset then line", ops)
	}

	// The request is consumed once
	frame = c.Process(hands(hand(detector.Right, 20, 20)), frameWidth, frameHeight)
	if frame.Cleared {
		t.Error("clear request should be consumed by a single frame")
	}
	if surface.Count(OpReset) != 1 {
		t.Errorf("recorded %d resets, want 1", surface.Count(OpReset))
	}
}

func TestCompositor_UnlabelledHandErases(t *testing.T) {
	surface := NewRecorder()
	c := NewCompositor(surface, nil)

	frame := c.Process(hands(hand("Unknown", 50, 60)), frameWidth, frameHeight)
	if frame.Status != StatusErasing || !frame.Erased {
		t.Errorf("frame = %+v, want an erase", frame)
	}
	ops := surface.Ops()
	if len(ops) != 1 || ops[0].Kind != OpFillCircle || ops[0].Center != image.Pt(50, 60) {
		t.Errorf("ops = %+v, want one erase disc at (50,60)", ops)
	}
	if c.State(RoleErase) != Tracking {
		t.Error("erase role should be tracking")
	}
}

func TestCompositor_FrameNumbers(t *testing.T) {
	c := NewCompositor(NewRecorder(), nil)

	for want := uint64(1); want <= 3; want++ {
		if got := c.Process(nil, frameWidth, frameHeight).Number; got != want {
			t.Errorf("frame number = %d, want %d", got, want)
		}
	}
}

func TestTracker(t *testing.T) {
	var tr Tracker

	if tr.State() != Idle {
		t.Fatalf("new tracker state = %v, want idle", tr.State())
	}
	if tr.last != (image.Point{}) {
		t.Error("idle tracker should have no last position")
	}

	if _, ok := tr.Observe(image.Pt(1, 1)); ok {
		t.Error("first Observe should report no previous position")
	}

	prev, ok := tr.Observe(image.Pt(2, 2))
	if !ok || prev != image.Pt(1, 1) {
		t.Errorf("Observe() = %v, %v; want (1,1), true", prev, ok)
	}

	tr.Lose()
	if tr.State() != Idle {
		t.Errorf("state after Lose = %v, want idle", tr.State())
	}
	if _, ok := tr.Observe(image.Pt(3, 3)); ok {
		t.Error("Observe after Lose should start fresh")
	}
}

func TestControls(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := NewControls()
		s := c.Settings()
		if s.ColorName != DefaultColor || s.Thickness != DefaultThickness {
			t.Errorf("Settings() = %+v, want %s/%d", s, DefaultColor, DefaultThickness)
		}
		if s.EraserRadius() != DefaultThickness*EraserScale {
			t.Errorf("EraserRadius() = %d, want %d", s.EraserRadius(), DefaultThickness*EraserScale)
		}
	})

	t.Run("unknown color rejected", func(t *testing.T) {
		c := NewControls()
		if err := c.SetColor("mauve"); err == nil {
			t.Error("expected error for unknown color")
		}
		if c.Settings().ColorName != DefaultColor {
			t.Error("rejected color must not change the selection")
		}
	})

	t.Run("thickness clamped", func(t *testing.T) {
		tests := []struct {
			in, want int
		}{
			{in: 0, want: MinThickness},
			{in: -3, want: MinThickness},
			{in: 5, want: 5},
			{in: 20, want: 20},
			{in: 21, want: MaxThickness},
		}

		c := NewControls()
		for _, tt := range tests {
			if got := c.SetThickness(tt.in); got != tt.want {
				t.Errorf("SetThickness(%d) = %d, want %d", tt.in, got, tt.want)
			}
			if got := c.Settings().Thickness; got != tt.want {
				t.Errorf("Settings().Thickness = %d, want %d", got, tt.want)
			}
		}
	})

	t.Run("color names sorted", func(t *testing.T) {
		names := ColorNames()
		want := []string{"black", "blue", "green", "red"}
		if len(names) != len(want) {
			t.Fatalf("ColorNames() = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("ColorNames()[%d] = %s, want %s", i, names[i], want[i])
			}
		}
	})

	t.Run("concurrent writers and frame reader", func(t *testing.T) {
		controls := NewControls()
		c := NewCompositor(NewRecorder(), controls)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				controls.SetThickness(i % 25)
				controls.SetColor(ColorNames()[i%4])
				if i%50 == 0 {
					controls.RequestClear()
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				frame := c.Process(hands(hand(detector.Right, i, i)), frameWidth, frameHeight)
				if frame.Settings.Thickness < MinThickness || frame.Settings.Thickness > MaxThickness {
					t.Errorf("frame %d thickness %d out of range", frame.Number, frame.Settings.Thickness)
				}
			}
		}()
		wg.Wait()
	})
}

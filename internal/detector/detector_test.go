package detector

import (
	"errors"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func TestPoint3D_Pixel(t *testing.T) {
	tests := []struct {
		name          string
		point         Point3D
		width, height int
		want          image.Point
	}{
		{
			name:  "origin",
			point: Point3D{X: 0, Y: 0},
			width: 640, height: 480,
			want: image.Point{X: 0, Y: 0},
		},
		{
			name:  "center",
			point: Point3D{X: 0.5, Y: 0.5},
			width: 640, height: 480,
			want: image.Point{X: 320, Y: 240},
		},
		{
			name:  "truncates toward zero",
			point: Point3D{X: 0.1564, Y: 0.2084},
			width: 640, height: 480,
			want: image.Point{X: 100, Y: 100},
		},
		{
			name:  "outside frame is kept",
			point: Point3D{X: 1.1, Y: -0.1},
			width: 100, height: 100,
			want: image.Point{X: 110, Y: -10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.point.Pixel(tt.width, tt.height)
			if got != tt.want {
				t.Errorf("Pixel(%d, %d) = %v, want %v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestHandLandmarks_IndexFingertip(t *testing.T) {
	hand := PointingLandmarks(Right, 0.25, 0.5)

	got := hand.IndexFingertip(640, 480)
	want := image.Point{X: 160, Y: 240}
	if got != want {
		t.Errorf("IndexFingertip() = %v, want %v", got, want)
	}
}

func TestConnections_ReferenceValidLandmarks(t *testing.T) {
	if len(Connections) != 21 {
		t.Errorf("expected 21 skeleton connections, got %d", len(Connections))
	}

	for _, c := range Connections {
		for _, idx := range c {
			if idx < 0 || idx >= NumLandmarks {
				t.Errorf("connection %v references invalid landmark %d", c, idx)
			}
		}
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{
			PointingLandmarks(Right, 0.2, 0.2),
			PointingLandmarks(Left, 0.8, 0.2),
		})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("plays sequence then falls back", func(t *testing.T) {
		mock := NewMockDetector()
		fallback := []HandLandmarks{PointingLandmarks(Left, 0.5, 0.5)}
		mock.SetHands(fallback)
		mock.SetSequence([][]HandLandmarks{
			{PointingLandmarks(Right, 0.1, 0.1)},
			nil,
		})

		first, _ := mock.Detect(nil)
		if len(first) != 1 || first[0].Handedness != Right {
			t.Errorf("first frame = %v, want one right hand", first)
		}

		second, _ := mock.Detect(nil)
		if len(second) != 0 {
			t.Errorf("second frame = %v, want no hands", second)
		}

		third, _ := mock.Detect(nil)
		if len(third) != 1 || third[0].Handedness != Left {
			t.Errorf("third frame = %v, want fallback left hand", third)
		}

		if mock.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close is counted", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if mock.Closed() != 1 {
			t.Errorf("Closed() = %d, want 1", mock.Closed())
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPointingLandmarks(t *testing.T) {
	landmarks := PointingLandmarks(Left, 0.4, 0.3)

	if landmarks.Handedness != Left {
		t.Errorf("expected handedness Left, got %s", landmarks.Handedness)
	}
	if landmarks.Score < 0.9 {
		t.Errorf("expected score >= 0.9, got %f", landmarks.Score)
	}

	tip := landmarks.Points[IndexTip]
	if tip.X != 0.4 || tip.Y != 0.3 {
		t.Errorf("index tip = (%f, %f), want (0.4, 0.3)", tip.X, tip.Y)
	}

	// The index tip is the highest point of the hand (lowest Y)
	for i, p := range landmarks.Points {
		if i != IndexTip && p.Y <= tip.Y {
			t.Errorf("landmark %d (y=%f) should be below the index tip (y=%f)", i, p.Y, tip.Y)
		}
	}
}

func TestParseResponse(t *testing.T) {
	points := `[` + repeatPoint(`{"x":0.1,"y":0.2,"z":0}`, NumLandmarks) + `]`

	tests := []struct {
		name      string
		line      string
		wantHands int
		wantErr   bool
	}{
		{
			name:      "no hands",
			line:      `{"hands": []}` + "\n",
			wantHands: 0,
		},
		{
			name:      "two hands",
			line:      `{"hands": [{"points": ` + points + `, "handedness": "Left", "score": 0.9}, {"points": ` + points + `, "handedness": "Right", "score": 0.8}]}`,
			wantHands: 2,
		},
		{
			name:      "incomplete hand is dropped",
			line:      `{"hands": [{"points": [{"x":0.1,"y":0.1,"z":0}], "handedness": "Left", "score": 0.9}]}`,
			wantHands: 0,
		},
		{
			name:    "malformed",
			line:    `{"hands": [`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hands, err := parseResponse([]byte(tt.line))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(hands) != tt.wantHands {
				t.Errorf("parseResponse() returned %d hands, want %d", len(hands), tt.wantHands)
			}
		})
	}
}

func repeatPoint(p string, n int) string {
	out := p
	for i := 1; i < n; i++ {
		out += "," + p
	}
	return out
}

func TestNewMediaPipeDetector(t *testing.T) {
	t.Run("missing configured script", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Script = filepath.Join(t.TempDir(), ScriptName)

		if _, err := NewMediaPipeDetector(cfg); err == nil {
			t.Error("expected error for missing script")
		}
	})

	t.Run("configured script", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), ScriptName)
		if err := os.WriteFile(script, []byte("# service"), 0644); err != nil {
			t.Fatalf("write script: %v", err)
		}

		cfg := DefaultConfig()
		cfg.Script = script

		d, err := NewMediaPipeDetector(cfg)
		if err != nil {
			t.Fatalf("NewMediaPipeDetector() error = %v", err)
		}
		defer d.Close()

		args := d.args()
		want := []string{script, "--max-hands", "2", "--min-detection-confidence", "0.5", "--min-tracking-confidence", "0.5"}
		if len(args) != len(want) {
			t.Fatalf("args() = %v, want %v", args, want)
		}
		for i := range want {
			if args[i] != want[i] {
				t.Errorf("args()[%d] = %q, want %q", i, args[i], want[i])
			}
		}
	})
}

// shippedScript is the landmark service kept in the repository's scripts directory.
var shippedScript = filepath.Join("..", "..", "scripts", ScriptName)

func TestShippedScript_Exists(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Script = shippedScript

	d, err := NewMediaPipeDetector(cfg)
	if err != nil {
		t.Fatalf("NewMediaPipeDetector(%s) error = %v", shippedScript, err)
	}
	d.Close()
}

func TestShippedScript_BlankFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("starts the landmark service")
	}
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not installed")
	}
	if err := exec.Command(python, "-c", "import mediapipe, cv2").Run(); err != nil {
		t.Skip("mediapipe not installed")
	}

	cfg := DefaultConfig()
	cfg.Script = shippedScript
	cfg.Python = python

	d, err := NewMediaPipeDetector(cfg)
	if err != nil {
		t.Fatalf("NewMediaPipeDetector() error = %v", err)
	}
	defer d.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	for i := 0; i < 2; i++ {
		hands, err := d.Detect(&frame)
		if err != nil {
			t.Fatalf("Detect() #%d error = %v", i, err)
		}
		if len(hands) != 0 {
			t.Errorf("Detect() #%d found %d hands in a blank frame", i, len(hands))
		}
	}
}

package scene

import (
	"math"
	"testing"
)

func TestCamera2DRoundTrip(t *testing.T) {
	cases := []struct {
		name           string
		panX, panY     float64
		zoom, rotation float64
	}{
		{"default", 0, 0, 1, 0},
		{"panned", 130, -75, 1, 0},
		{"zoomed", 0, 0, 3.7, 0},
		{"rotated", 0, 0, 1, 0.8},
		{"everything", -40, 220, 0.3, -2.1},
	}
	points := [][2]float64{{0, 0}, {1, 2}, {-3.5, 7.25}, {100, -40}}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cam := NewCamera2D(800, 600)
			cam.Pan(c.panX, c.panY)
			cam.ZoomBy(c.zoom)
			cam.Rotate(c.rotation)
			for _, p := range points {
				sx, sy := cam.WorldToScreen(p[0], p[1])
				x, y := cam.ScreenToWorld(sx, sy)
				if !approx(x, p[0], 1e-9) || !approx(y, p[1], 1e-9) {
					t.Fatalf("%v -> (%v, %v) -> (%v, %v)", p, sx, sy, x, y)
				}
			}
		})
	}
}

func TestCamera2DOriginAtCenter(t *testing.T) {
	cam := NewCamera2D(800, 600)
	sx, sy := cam.WorldToScreen(0, 0)
	if sx != 400 || sy != 300 {
		t.Fatalf("origin at (%v, %v)", sx, sy)
	}
	sx, sy = cam.WorldToScreen(1, 1)
	if sx != 450 || sy != 250 {
		t.Fatalf("(1,1) at (%v, %v)", sx, sy)
	}
}

func TestZoomAtKeepsCursorPoint(t *testing.T) {
	for _, rot := range []float64{0, 0.6} {
		cam := NewCamera2D(800, 600)
		cam.Pan(35, -12)
		cam.Rotate(rot)
		wx, wy := cam.ScreenToWorld(610, 95)
		for _, f := range []float64{1.1, 1.1, 0.9, 2, 0.5} {
			cam.ZoomAt(f, 610, 95)
			x, y := cam.ScreenToWorld(610, 95)
			if !approx(x, wx, 1e-9) || !approx(y, wy, 1e-9) {
				t.Fatalf("rot %v: cursor point moved from (%v, %v) to (%v, %v)", rot, wx, wy, x, y)
			}
		}
	}
}

func TestZoomClamp(t *testing.T) {
	cam := NewCamera2D(800, 600)
	cam.ZoomBy(1000)
	if cam.Zoom() != MaxZoom {
		t.Fatalf("zoom = %v", cam.Zoom())
	}
	cam.ZoomBy(1e-6)
	if cam.Zoom() != MinZoom {
		t.Fatalf("zoom = %v", cam.Zoom())
	}
}

func TestCamera3DOrbitClamp(t *testing.T) {
	cam := NewCamera3D(800, 600)
	cam.Orbit(0, 10)
	if cam.Phi() >= math.Pi/2 || !approx(cam.Phi(), math.Pi/2-0.01, 1e-12) {
		t.Fatalf("phi = %v", cam.Phi())
	}
	cam.Orbit(0, -20)
	if cam.Phi() <= -math.Pi/2 {
		t.Fatalf("phi = %v", cam.Phi())
	}
	cam.ZoomBy(0.001)
	if cam.Distance() != MinDistance {
		t.Fatalf("distance = %v", cam.Distance())
	}
	cam.ZoomBy(1e6)
	if cam.Distance() != MaxDistance {
		t.Fatalf("distance = %v", cam.Distance())
	}
	cam.Reset()
	if cam.Distance() != DefaultDistance || cam.Theta() != DefaultTheta || cam.Phi() != DefaultPhi {
		t.Fatal("reset did not restore defaults")
	}
}

func TestCamera3DDrag(t *testing.T) {
	cam := NewCamera3D(800, 600)
	cam.Drag(10, 20, false)
	if !approx(cam.Theta(), DefaultTheta+0.1, 1e-12) || !approx(cam.Phi(), DefaultPhi-0.2, 1e-12) {
		t.Fatalf("orbit theta %v phi %v", cam.Theta(), cam.Phi())
	}
	cam.Drag(0, 20, true)
	if !approx(cam.Target()[1], 20*DefaultDistance*0.005, 1e-12) {
		t.Fatalf("pan target = %v", cam.Target())
	}
	cam.Scroll(1, 0, 0)
	if !approx(cam.Distance(), DefaultDistance/1.1, 1e-9) {
		t.Fatalf("distance = %v", cam.Distance())
	}
}

func TestCamera3DProjection(t *testing.T) {
	cam := NewCamera3D(800, 600)
	sx, sy, ok := cam.WorldToScreen([3]float64{})
	if !ok || !approx(sx, 400, 1e-6) || !approx(sy, 300, 1e-6) {
		t.Fatalf("target at (%v, %v) ok=%v", sx, sy, ok)
	}
	_, up, ok := cam.WorldToScreen([3]float64{0, 1, 0})
	if !ok || up >= sy {
		t.Fatalf("+y should project above the target: %v vs %v", up, sy)
	}
	behind := cam.Position()
	for i := range behind {
		behind[i] *= 2
	}
	if _, _, ok := cam.WorldToScreen(behind); ok {
		t.Fatal("point behind the eye should not project")
	}

	view := cam.ViewMatrix()
	if !approx(view[3][3], 1, 0) {
		t.Fatalf("view = %v", view)
	}
	if proj := cam.ProjectionMatrix(); proj[3][2] != -1 {
		t.Fatalf("projection = %v", proj)
	}
}

func TestSpacing(t *testing.T) {
	cases := []struct{ zoom, want float64 }{
		{10, 5}, {30, 2}, {50, 1}, {100, 1}, {200, 0.5}, {400, 0.2},
	}
	for _, c := range cases {
		if got := Spacing(c.zoom); got != c.want {
			t.Errorf("Spacing(%v) = %v, want %v", c.zoom, got, c.want)
		}
	}
}

func TestGrid2DMajorLines(t *testing.T) {
	cam := NewCamera2D(800, 600)
	lines := NewGrid2D().Lines(cam)
	majors := 0
	for _, l := range lines {
		if l.Major {
			majors++
		}
	}
	// x in -8..8 has majors at -5, 0, 5; y in -6..6 also at -5, 0, 5.
	if len(lines) != 17+13 || majors != 6 {
		t.Fatalf("lines %d majors %d", len(lines), majors)
	}
}

func TestGrid3D(t *testing.T) {
	g := NewGrid3D()
	if n := len(g.Lines()); n != 22 {
		t.Fatalf("lines = %d", n)
	}
	axes := g.Axes()
	if len(axes) != 3 || axes[2].To[2] != 6 {
		t.Fatalf("axes = %+v", axes)
	}
}

func TestTickText(t *testing.T) {
	for in, want := range map[float64]string{2: "2", -4: "-4", 0.5: "0.5", 0.6000000000000001: "0.6"} {
		if got := tickText(in); got != want {
			t.Errorf("tickText(%v) = %q, want %q", in, got, want)
		}
	}
}

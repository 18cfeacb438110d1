package window

import (
	"testing"

	"github.com/matt-g-everett/linviz/arith"
	"github.com/matt-g-everett/linviz/runner"
	"github.com/matt-g-everett/linviz/scene"
	"github.com/matt-g-everett/linviz/util"
)

func TestCommands(t *testing.T) {
	g := &Game{}
	cases := []struct {
		name string
		in   input
		want []scene.Command
	}{
		{"idle", input{}, nil},
		{"toggle", input{toggle: true}, []scene.Command{{Kind: scene.TogglePause}}},
		{"replay", input{replay: true}, []scene.Command{{Kind: scene.Replay}}},
		{"forward", input{forward: true}, []scene.Command{{Kind: scene.StepForward}}},
		{"back", input{back: true}, []scene.Command{{Kind: scene.StepBackward}}},
		{"reset", input{reset: true}, []scene.Command{{Kind: scene.ResetCamera}}},
		{"press", input{mouseDown: true, x: 100, y: 100}, nil},
		{"drag", input{mouseDown: true, shift: true, x: 110, y: 95}, []scene.Command{{Kind: scene.Drag, DX: 10, DY: -5, Shift: true}}},
		{"hold", input{mouseDown: true, x: 110, y: 95}, nil},
		{"release", input{x: 120, y: 90}, nil},
		{"wheel", input{wheel: -1, x: 40, y: 30}, []scene.Command{{Kind: scene.Scroll, Notches: -1, X: 40, Y: 30}}},
	}
	for _, c := range cases {
		got := g.commands(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%s: got %+v, want %+v", c.name, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%s: got %+v, want %+v", c.name, got[i], c.want[i])
			}
		}
	}
}

func TestPaused(t *testing.T) {
	s, err := scene.New(2, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	s.Pause()
	if !paused(runner.Snapshot{Scene: s.Frame()}) {
		t.Error("paused scene reported playing")
	}
	w, err := arith.NewDot([]float64{1}, []float64{2})
	if err != nil {
		t.Fatal(err)
	}
	v := w.View()
	if paused(runner.Snapshot{Arith: &v}) {
		t.Error("playing walkthrough reported paused")
	}
	if paused(runner.Snapshot{}) {
		t.Error("empty snapshot reported paused")
	}
}

func TestPulseAlpha(t *testing.T) {
	g := &Game{pulse: util.GenerateLut(pulseFrames)}
	if a := g.pulseAlpha(0); a != 0.3 {
		t.Errorf("alpha at 0 = %v", a)
	}
	peak := g.pulseAlpha(pulseFrames/2 - 1)
	if peak <= 0.9 || peak > 1 {
		t.Errorf("alpha at peak = %v", peak)
	}
	if g.pulseAlpha(pulseFrames) != g.pulseAlpha(0) {
		t.Error("pulse does not wrap")
	}
}

package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matt-g-everett/linviz/arith"
	"github.com/matt-g-everett/linviz/easing"
	"github.com/matt-g-everett/linviz/linalg"
	"github.com/matt-g-everett/linviz/scene"
)

func rotationScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.New(2, 800, 600)
	if err != nil {
		t.Fatal(err)
	}
	v, err := linalg.MustVector(1, 0).Transform(linalg.Rotation(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Add(v.Animate(1, easing.Linear)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunFramesPublishes(t *testing.T) {
	var got []uint64
	sink := SinkFunc(func(s Snapshot) error {
		got = append(got, s.Seq)
		return nil
	})
	r := New(SceneProgram("rot", rotationScene(t)), 0, sink)
	if r.Interval() != time.Second/DefaultFPS {
		t.Fatalf("interval = %v", r.Interval())
	}

	snaps := r.RunFrames(4, 0.25)
	if len(snaps) != 4 || len(got) != 4 || got[3] != 4 {
		t.Fatalf("snaps %d published %v", len(snaps), got)
	}
	last := snaps[3]
	if last.Title != "rot" || last.Scene == nil || last.Arith != nil {
		t.Fatalf("last = %+v", last)
	}
	if !last.Scene.Finished {
		t.Fatal("scene should have finished after 1s")
	}
	if r.Latest().Seq != 4 {
		t.Fatalf("latest seq = %d", r.Latest().Seq)
	}
}

func TestCommandsApplyBeforeTick(t *testing.T) {
	r := New(SceneProgram("", rotationScene(t)), 60)
	r.Send(scene.Command{Kind: scene.Pause})
	snap := r.Step(0.5)
	if !snap.Scene.Paused || snap.Scene.Progress != 0 {
		t.Fatalf("paused %v progress %v", snap.Scene.Paused, snap.Scene.Progress)
	}
	r.Send(scene.Command{Kind: scene.StepForward})
	snap = r.Step(0.5)
	if !approx(snap.Scene.Progress, 0.05) {
		t.Fatalf("progress = %v", snap.Scene.Progress)
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func TestSendDropsWhenFull(t *testing.T) {
	r := New(SceneProgram("", rotationScene(t)), 60)
	for i := 0; i < cap(r.commands); i++ {
		if !r.Send(scene.Command{Kind: scene.TogglePause}) {
			t.Fatalf("send %d dropped", i)
		}
	}
	if r.Send(scene.Command{Kind: scene.Play}) {
		t.Fatal("full queue accepted a command")
	}
}

func TestSwapKeepsLatest(t *testing.T) {
	r := New(SceneProgram("first", rotationScene(t)), 60)
	w, err := arith.NewDot([]float64{1, 2}, []float64{3, 4})
	if err != nil {
		t.Fatal(err)
	}
	r.Swap(SceneProgram("second", rotationScene(t)))
	r.Swap(ArithProgram("third", w))
	snap := r.Step(0)
	if snap.Title != "third" || snap.Arith == nil || snap.Arith.Total != 3 {
		t.Fatalf("snap = %+v", snap)
	}
	if r.Program().Summary() == "" {
		t.Fatal("empty summary")
	}
}

func TestSinkErrorsDoNotStop(t *testing.T) {
	calls := 0
	failing := SinkFunc(func(Snapshot) error { return errors.New("offline") })
	counting := SinkFunc(func(Snapshot) error { calls++; return nil })
	r := New(SceneProgram("", rotationScene(t)), 60, failing)
	r.AddSink(counting)
	r.RunFrames(3, 0.1)
	if calls != 3 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := New(SceneProgram("", rotationScene(t)), 200)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	if r.Latest().Seq == 0 {
		t.Fatal("no steps ran")
	}
}

// slowProgram takes longer to tick than the runner interval.
type slowProgram struct {
	delay time.Duration
	total float64
}

func (p *slowProgram) Tick(dt float64) {
	p.total += dt
	time.Sleep(p.delay)
}
func (p *slowProgram) Dispatch(scene.Command) {}
func (p *slowProgram) Snapshot() Snapshot     { return Snapshot{} }
func (p *slowProgram) Summary() string        { return "" }

func TestRunTracksWallClock(t *testing.T) {
	p := &slowProgram{delay: 10 * time.Millisecond}
	r := New(p, 200)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	r.Run(ctx)
	elapsed := time.Since(start).Seconds()
	if p.total > elapsed || p.total < 0.6*elapsed {
		t.Fatalf("advanced %.3fs in %.3fs", p.total, elapsed)
	}
}

func TestSwapKeepsSize(t *testing.T) {
	r := New(SceneProgram("first", rotationScene(t)), 60)
	r.Send(scene.Command{Kind: scene.Resize, Width: 320, Height: 200})
	r.Step(0)
	r.Swap(SceneProgram("second", rotationScene(t)))
	snap := r.Step(0)
	if v := snap.Scene.View; v.Width != 320 || v.Height != 200 {
		t.Fatalf("view = %dx%d", v.Width, v.Height)
	}
}

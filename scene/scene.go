// Package scene binds vectors, their animations and a timeline into one
// steppable playback session with an independent camera.
package scene

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/matt-g-everett/linviz/animation"
	"github.com/matt-g-everett/linviz/linalg"
	"github.com/matt-g-everett/linviz/palette"
	"github.com/matt-g-everett/linviz/util"
)

// DefaultStepSize is the transport quantum in seconds.
const DefaultStepSize = 0.05

var ErrSceneDimension = errors.New("scene: dimension must be 2 or 3")

// Scene owns displayed vectors, the live and original animation lists, a
// timeline, a camera and a grid. All methods must be called from one
// goroutine.
type Scene struct {
	dim int

	objects  []linalg.Vector
	live     []animation.Animation
	original []animation.Animation
	admitted map[linalg.ID]bool
	timeline *animation.Timeline

	camera Camera
	cam2   *Camera2D
	cam3   *Camera3D
	grid2  *Grid2D
	grid3  *Grid3D

	paused   bool
	showGrid bool
	stepSize float64

	latticeBounds  animation.Bounds
	latticeDensity int
}

// New creates an empty scene with a camera sized width x height.
func New(dim, width, height int) (*Scene, error) {
	s := &Scene{
		dim:            dim,
		admitted:       make(map[linalg.ID]bool),
		timeline:       animation.NewTimeline(),
		showGrid:       true,
		stepSize:       DefaultStepSize,
		latticeBounds:  animation.DefaultBounds,
		latticeDensity: animation.DefaultDensity,
	}
	switch dim {
	case 2:
		s.cam2 = NewCamera2D(width, height)
		s.grid2 = NewGrid2D()
		s.camera = s.cam2
	case 3:
		s.cam3 = NewCamera3D(width, height)
		s.grid3 = NewGrid3D()
		s.camera = s.cam3
	default:
		return nil, fmt.Errorf("%dD scene: %w", dim, ErrSceneDimension)
	}
	return s, nil
}

func (s *Scene) Dim() int                      { return s.dim }
func (s *Scene) Camera() Camera                { return s.camera }
func (s *Scene) Timeline() *animation.Timeline { return s.timeline }
func (s *Scene) Paused() bool                  { return s.paused }
func (s *Scene) StepSize() float64             { return s.stepSize }
func (s *Scene) Objects() []linalg.Vector      { return append([]linalg.Vector(nil), s.objects...) }

// Live returns the animations currently being advanced by Tick.
func (s *Scene) Live() []animation.Animation {
	return append([]animation.Animation(nil), s.live...)
}

func (s *Scene) SetStepSize(step float64) {
	if step > 0 {
		s.stepSize = step
	}
}

func (s *Scene) SetShowGrid(show bool) { s.showGrid = show }

// SetLattice changes the bounds and density of transformed grids.
func (s *Scene) SetLattice(b animation.Bounds, density int) {
	s.latticeBounds = b
	if density > 0 {
		s.latticeDensity = density
	}
}

func (s *Scene) checkDim(v linalg.Vector) error {
	if v.Dim() != s.dim {
		return fmt.Errorf("%dD vector in %dD scene: %w", v.Dim(), s.dim, linalg.ErrDimensionMismatch)
	}
	return nil
}

func (s *Scene) addObject(v linalg.Vector) {
	for _, o := range s.objects {
		if o.ID() == v.ID() {
			return
		}
	}
	s.objects = append(s.objects, v)
}

// Add displays vectors. A vector carrying a pending animation has it
// admitted to the live list and the original record; adding the same
// vector again is a no-op.
func (s *Scene) Add(vectors ...linalg.Vector) error {
	for _, v := range vectors {
		if err := s.checkDim(v); err != nil {
			return err
		}
	}
	for _, v := range vectors {
		s.addObject(v)
		if s.admitted[v.ID()] {
			continue
		}
		if a, ok := animation.FromVector(v); ok {
			s.admitted[v.ID()] = true
			s.AddAnimation(a)
		}
	}
	return nil
}

// AddAnimation admits an animation directly, for grid transforms or
// prebuilt vector animations. Admitting the same animation twice is a
// no-op.
func (s *Scene) AddAnimation(a animation.Animation) {
	for _, o := range s.original {
		if o == a {
			return
		}
	}
	s.live = append(s.live, a)
	s.original = append(s.original, a)
}

// Schedule displays v and runs its pending animation on the timeline at
// time at. The vector rests at its start state until then.
func (s *Scene) Schedule(at float64, v linalg.Vector) error {
	if err := s.checkDim(v); err != nil {
		return err
	}
	s.addObject(v)
	if s.admitted[v.ID()] {
		return nil
	}
	if _, ok := s.timeline.ScheduleVector(at, v); ok {
		s.admitted[v.ID()] = true
	}
	return nil
}

// ScheduleAnimation puts a on the timeline at time at.
func (s *Scene) ScheduleAnimation(at float64, a animation.Animation) {
	s.timeline.Schedule(at, a)
}

// Remove stops displaying the vector with v's identity.
func (s *Scene) Remove(v linalg.Vector) {
	for i, o := range s.objects {
		if o.ID() == v.ID() {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			return
		}
	}
}

// Clear drops all objects and live animations. The original record is
// kept so Replay still restores them.
func (s *Scene) Clear() {
	s.objects = nil
	s.live = nil
}

// Play starts the timeline and unpauses.
func (s *Scene) Play() {
	s.timeline.Play()
	s.paused = false
}

func (s *Scene) Pause() {
	s.paused = true
}

func (s *Scene) TogglePause() {
	s.paused = !s.paused
}

// advance moves the timeline and every live animation by the same dt.
func (s *Scene) advance(dt float64) {
	s.timeline.Update(dt)
	for _, a := range s.live {
		a.Update(dt)
	}
}

// Tick advances playback by dt unless paused and drops finished
// animations from the live list.
func (s *Scene) Tick(dt float64) {
	if s.paused {
		return
	}
	s.advance(dt)
	s.prune()
}

// prune drops finished animations from the live list.
func (s *Scene) prune() {
	live := s.live[:0]
	for _, a := range s.live {
		if !a.Finished() {
			live = append(live, a)
		}
	}
	for i := len(live); i < len(s.live); i++ {
		s.live[i] = nil
	}
	s.live = live
}

// rewind resets every original animation, restores the live list from
// the original record and restarts the timeline from 0.
func (s *Scene) rewind() {
	for _, a := range s.original {
		a.Reset()
	}
	s.live = append(s.live[:0], s.original...)
	s.timeline.Stop()
	s.timeline.Play()
}

// Replay restarts every animation from the beginning and unpauses.
func (s *Scene) Replay() {
	s.rewind()
	s.paused = false
}

// StepForward pauses and advances by one quantum.
func (s *Scene) StepForward() {
	s.paused = true
	if !s.timeline.Playing() && !s.timeline.Finished() {
		s.timeline.Play()
	}
	s.advance(s.stepSize)
	s.prune()
}

// StepBackward pauses one quantum earlier than the current progress,
// clamped at 0. It rewinds and fast-forwards to the target one quantum at
// a time, so timeline animations with later start times catch up too.
func (s *Scene) StepBackward() {
	target := s.Progress() - s.stepSize
	s.rewind()
	for remaining := target; remaining > 1e-9; remaining -= s.stepSize {
		s.advance(math.Min(s.stepSize, remaining))
	}
	s.prune()
	s.paused = true
}

// Progress is the elapsed time of the first live animation, else of the
// first admitted one, else the timeline playhead.
func (s *Scene) Progress() float64 {
	if len(s.live) > 0 {
		return s.live[0].Elapsed()
	}
	if len(s.original) > 0 {
		return s.original[0].Elapsed()
	}
	return s.timeline.Time()
}

// Finished reports whether nothing is left to animate.
func (s *Scene) Finished() bool {
	for _, a := range s.live {
		if !a.Finished() {
			return false
		}
	}
	return s.timeline.Finished()
}

// Dispatch applies a command.
func (s *Scene) Dispatch(c Command) {
	switch c.Kind {
	case Play:
		s.Play()
	case Pause:
		s.Pause()
	case TogglePause:
		s.TogglePause()
	case Replay:
		s.Replay()
	case StepForward:
		s.StepForward()
	case StepBackward:
		s.StepBackward()
	case ResetCamera:
		s.camera.Reset()
	case Resize:
		s.camera.Resize(c.Width, c.Height)
	case Drag:
		s.camera.Drag(c.DX, c.DY, c.Shift)
	case Scroll:
		s.camera.Scroll(c.Notches, c.X, c.Y)
	}
}

// Frame snapshots the scene for rendering. A vector is drawn from the
// unfinished animation that ends at it, if any, looking at live animations
// before the timeline; otherwise at rest.
func (s *Scene) Frame() *Frame {
	f := &Frame{
		Dim:      s.dim,
		Time:     s.timeline.Time(),
		Progress: s.Progress(),
		Paused:   s.paused,
		Finished: s.Finished(),
		View:     s.camera.View(),
		Vectors:  make([]VectorDraw, 0, len(s.objects)),
	}

	if s.showGrid {
		if s.dim == 2 {
			f.Grid = s.grid2.Lines(s.cam2)
			f.Axes = s.grid2.Axes(s.cam2)
			f.Labels = s.grid2.Labels(s.cam2)
		} else {
			f.Grid = s.grid3.Lines()
			f.Axes = s.grid3.Axes()
		}
	}

	drivers := make(map[linalg.ID]*animation.VectorAnimation)
	visit := func(a animation.Animation, started bool) {
		switch a := a.(type) {
		case *animation.GridAnimation:
			if started {
				f.Transforms = append(f.Transforms, GridDraw{
					Matrix:   a.Value().Rows(),
					Progress: a.EasedProgress(),
					Segments: a.Lines(s.latticeBounds, s.latticeDensity),
					Color:    palette.TransformAfter,
					Hex:      palette.TransformAfter.Hex(),
				})
			}
		case *animation.VectorAnimation:
			if _, ok := drivers[a.Target()]; !ok && !a.Finished() {
				drivers[a.Target()] = a
			}
		}
	}
	for _, a := range s.live {
		visit(a, true)
	}
	for _, a := range s.timeline.All() {
		at, _ := s.timeline.StartOf(a)
		visit(a, s.timeline.Time() >= at && !a.Finished())
	}

	for _, o := range s.objects {
		if a, ok := drivers[o.ID()]; ok {
			start := a.Start()
			f.Ghosts = append(f.Ghosts, vectorDraw(animation.ValueOf(start), palette.Dim(start.Color(), ghostDim), 1.5))
			f.Vectors = append(f.Vectors, vectorDraw(a.Value(), a.End().Color(), 2.5))
			continue
		}
		f.Vectors = append(f.Vectors, vectorDraw(animation.ValueOf(o), o.Color(), 2.5))
	}
	return f
}

// Summary describes the displayed vectors and playback state in plain
// text, one line per vector.
func (s *Scene) Summary() string {
	var b strings.Builder
	state := "playing"
	if s.paused {
		state = "paused"
	}
	fmt.Fprintf(&b, "%dD scene, %s, t=%s\n", s.dim, state, util.FormatNumber(s.Progress()))
	for i, o := range s.objects {
		comps := o.Components()
		parts := make([]string, len(comps))
		for j, c := range comps {
			parts[j] = util.FormatNumber(c)
		}
		fmt.Fprintf(&b, "v%d = (%s) |v| = %s\n", i+1, strings.Join(parts, ", "), util.FormatNumber(o.Magnitude()))
	}
	return b.String()
}

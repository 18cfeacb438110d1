package runner

import (
	"github.com/matt-g-everett/linviz/arith"
	"github.com/matt-g-everett/linviz/scene"
	"github.com/matt-g-everett/linviz/sceneio"
)

// Snapshot is one published frame. Exactly one of Scene and Arith is set.
type Snapshot struct {
	Seq   uint64       `json:"seq"`
	Title string       `json:"title,omitempty"`
	Scene *scene.Frame `json:"scene,omitempty"`
	Arith *arith.View  `json:"arith,omitempty"`
}

// Program is anything the runner can play: a vector scene or an
// arithmetic walkthrough.
type Program interface {
	Tick(dt float64)
	Dispatch(c scene.Command)
	Snapshot() Snapshot
	// Summary is a plain-text description for copying.
	Summary() string
}

type sceneProgram struct {
	title string
	s     *scene.Scene
}

// SceneProgram plays s.
func SceneProgram(title string, s *scene.Scene) Program {
	return &sceneProgram{title: title, s: s}
}

func (p *sceneProgram) Tick(dt float64)          { p.s.Tick(dt) }
func (p *sceneProgram) Dispatch(c scene.Command) { p.s.Dispatch(c) }
func (p *sceneProgram) Summary() string          { return p.s.Summary() }

func (p *sceneProgram) Snapshot() Snapshot {
	return Snapshot{Title: p.title, Scene: p.s.Frame()}
}

type arithProgram struct {
	title string
	w     *arith.Walkthrough
}

// ArithProgram plays a walkthrough. Camera commands are ignored.
func ArithProgram(title string, w *arith.Walkthrough) Program {
	return &arithProgram{title: title, w: w}
}

func (p *arithProgram) Tick(dt float64)          { p.w.Update(dt) }
func (p *arithProgram) Dispatch(c scene.Command) { p.w.Dispatch(c) }
func (p *arithProgram) Summary() string          { return p.w.String() }

func (p *arithProgram) Snapshot() Snapshot {
	v := p.w.View()
	return Snapshot{Title: p.title, Arith: &v}
}

// FromLoaded wraps whichever of the scene or walkthrough l holds.
func FromLoaded(l *sceneio.Loaded) Program {
	if l.Walkthrough != nil {
		return ArithProgram(l.Title, l.Walkthrough)
	}
	return SceneProgram(l.Title, l.Scene)
}

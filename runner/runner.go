// Package runner drives a program at a fixed frame rate and fans the
// resulting snapshots out to sinks such as the MQTT streamer or the HTTP
// API.
package runner

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/matt-g-everett/linviz/scene"
)

// DefaultFPS is the tick rate used when none is configured.
const DefaultFPS = 60

// A Sink receives every snapshot the runner produces.
type Sink interface {
	Publish(s Snapshot) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(s Snapshot) error

func (f SinkFunc) Publish(s Snapshot) error { return f(s) }

// Runner owns the current program. Commands and replacement programs
// arrive on channels from any goroutine and are applied at the start of
// the next step, so the program itself is only touched by the goroutine
// calling Step or Run.
type Runner struct {
	program  Program
	fps      float64
	commands chan scene.Command
	programs chan Program
	// size is the last resize, replayed to swapped-in programs.
	size *scene.Command

	mu     sync.RWMutex
	sinks  []Sink
	seq    uint64
	latest Snapshot
}

// New creates a runner for p at fps ticks per second.
func New(p Program, fps float64, sinks ...Sink) *Runner {
	if fps <= 0 {
		fps = DefaultFPS
	}
	r := &Runner{
		program:  p,
		fps:      fps,
		commands: make(chan scene.Command, 64),
		programs: make(chan Program, 1),
		sinks:    sinks,
	}
	r.latest = p.Snapshot()
	return r
}

// AddSink registers another receiver.
func (r *Runner) AddSink(s Sink) {
	r.mu.Lock()
	r.sinks = append(r.sinks, s)
	r.mu.Unlock()
}

// Send queues a command. It reports false when the queue is full and the
// command was dropped.
func (r *Runner) Send(c scene.Command) bool {
	select {
	case r.commands <- c:
		return true
	default:
		log.Printf("Command queue full, dropping %s", c)
		return false
	}
}

// Swap replaces the program at the next step. A swap that has not been
// applied yet is superseded.
func (r *Runner) Swap(p Program) {
	for {
		select {
		case r.programs <- p:
			return
		default:
		}
		select {
		case <-r.programs:
		default:
		}
	}
}

// Program returns the current program. Only the stepping goroutine may
// use it.
func (r *Runner) Program() Program { return r.program }

// Interval is the time between ticks.
func (r *Runner) Interval() time.Duration {
	return time.Duration(float64(time.Second) / r.fps)
}

// Latest returns the most recent snapshot. It is safe to call from any
// goroutine.
func (r *Runner) Latest() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Step applies pending swaps and commands, advances the program by dt and
// publishes the snapshot.
func (r *Runner) Step(dt float64) Snapshot {
	select {
	case p := <-r.programs:
		log.Printf("Program replaced")
		r.program = p
		if r.size != nil {
			p.Dispatch(*r.size)
		}
	default:
	}
	for drained := false; !drained; {
		select {
		case c := <-r.commands:
			if c.Kind == scene.Resize {
				size := c
				r.size = &size
			}
			r.program.Dispatch(c)
		default:
			drained = true
		}
	}

	r.program.Tick(dt)
	snap := r.program.Snapshot()

	r.mu.Lock()
	r.seq++
	snap.Seq = r.seq
	r.latest = snap
	sinks := append([]Sink(nil), r.sinks...)
	r.mu.Unlock()

	for _, s := range sinks {
		if err := s.Publish(snap); err != nil {
			log.Printf("Publish failed: %v", err)
		}
	}
	return snap
}

// Run steps at the configured rate until ctx is done. Each step advances
// by the wall-clock time since the previous one, so dropped ticks do not
// slow playback down.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval())
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			r.Step(now.Sub(last).Seconds())
			last = now
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunFrames steps n times with a fixed dt and returns every snapshot.
// It does not wait between steps.
func (r *Runner) RunFrames(n int, dt float64) []Snapshot {
	out := make([]Snapshot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.Step(dt))
	}
	return out
}

package animation

import "github.com/matt-g-everett/linviz/linalg"

type bucket struct {
	at    float64
	anims []Animation
}

// Timeline runs animations from scheduled start times on one playhead.
// Buckets keep the order their start times were first scheduled so every
// run visits animations in the same order.
type Timeline struct {
	buckets  []bucket
	playhead float64
	playing  bool
	finished bool
}

func NewTimeline() *Timeline {
	return new(Timeline)
}

// Schedule appends a to the bucket for start time at. Times group by exact
// equality.
func (t *Timeline) Schedule(at float64, a Animation) {
	for i := range t.buckets {
		if t.buckets[i].at == at {
			t.buckets[i].anims = append(t.buckets[i].anims, a)
			return
		}
	}
	t.buckets = append(t.buckets, bucket{at: at, anims: []Animation{a}})
}

// ScheduleVector schedules the animation v requested with Animate and
// returns it. Vectors without a pending animation are ignored.
func (t *Timeline) ScheduleVector(at float64, v linalg.Vector) (*VectorAnimation, bool) {
	a, ok := FromVector(v)
	if !ok {
		return nil, false
	}
	t.Schedule(at, a)
	return a, true
}

// Play starts or resumes from the current playhead.
func (t *Timeline) Play() {
	t.playing = true
	t.finished = false
}

// Pause keeps the playhead and every elapsed time.
func (t *Timeline) Pause() {
	t.playing = false
}

// Stop rewinds to 0 and resets every scheduled animation.
func (t *Timeline) Stop() {
	t.playing = false
	t.finished = false
	t.playhead = 0
	for _, b := range t.buckets {
		for _, a := range b.anims {
			a.Reset()
		}
	}
}

// Update advances the playhead by dt. Animations whose start time the
// playhead has reached receive the same dt; later ones are untouched, so
// an animation begins accumulating on the first tick it is eligible.
func (t *Timeline) Update(dt float64) {
	if !t.playing || t.Finished() {
		return
	}
	if dt < 0 {
		dt = 0
	}

	allFinished := true
	for _, b := range t.buckets {
		for _, a := range b.anims {
			if t.playhead >= b.at && !a.Finished() {
				a.Update(dt)
			}
			if !a.Finished() {
				allFinished = false
			}
		}
	}
	t.playhead += dt

	if allFinished && t.playhead >= t.Duration() {
		t.finished = true
		t.playing = false
	}
}

// Duration is the latest start time plus duration over all animations.
func (t *Timeline) Duration() float64 {
	d := 0.0
	for _, b := range t.buckets {
		for _, a := range b.anims {
			if end := b.at + a.Duration(); end > d {
				d = end
			}
		}
	}
	return d
}

// Active lists the animations that have started and not finished.
func (t *Timeline) Active() []Animation {
	var out []Animation
	for _, b := range t.buckets {
		if t.playhead < b.at {
			continue
		}
		for _, a := range b.anims {
			if !a.Finished() {
				out = append(out, a)
			}
		}
	}
	return out
}

// All lists every scheduled animation.
func (t *Timeline) All() []Animation {
	var out []Animation
	for _, b := range t.buckets {
		out = append(out, b.anims...)
	}
	return out
}

// StartOf returns the scheduled start time of a.
func (t *Timeline) StartOf(a Animation) (float64, bool) {
	for _, b := range t.buckets {
		for _, x := range b.anims {
			if x == a {
				return b.at, true
			}
		}
	}
	return 0, false
}

// Time returns the playhead.
func (t *Timeline) Time() float64 { return t.playhead }

func (t *Timeline) Playing() bool { return t.playing }

// Finished reports whether playback has completed. An empty timeline is
// always finished.
func (t *Timeline) Finished() bool {
	return t.finished || len(t.buckets) == 0
}

// Len is the number of scheduled animations.
func (t *Timeline) Len() int {
	n := 0
	for _, b := range t.buckets {
		n += len(b.anims)
	}
	return n
}

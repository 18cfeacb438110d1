package scene

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CommandKind is a transport or camera action.
type CommandKind int

const (
	Play CommandKind = iota
	Pause
	TogglePause
	Replay
	StepForward
	StepBackward
	ResetCamera
	Resize
	Drag
	Scroll
)

var kindNames = map[CommandKind]string{
	Play:         "play",
	Pause:        "pause",
	TogglePause:  "toggle",
	Replay:       "replay",
	StepForward:  "step",
	StepBackward: "back",
	ResetCamera:  "reset-camera",
	Resize:       "resize",
	Drag:         "drag",
	Scroll:       "scroll",
}

var kindAliases = map[string]CommandKind{
	"restart":       Replay,
	"forward":       StepForward,
	"step-forward":  StepForward,
	"backward":      StepBackward,
	"step-backward": StepBackward,
	"reset":         ResetCamera,
	"toggle-pause":  TogglePause,
}

func (k CommandKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Command is one input event. Only the fields its kind uses are set.
type Command struct {
	Kind CommandKind

	// Resize
	Width, Height int

	// Drag: screen delta in pixels. Shift pans a 3D camera instead of
	// orbiting.
	DX, DY float64
	Shift  bool

	// Scroll: wheel notches (positive zooms in) at screen point X, Y.
	Notches float64
	X, Y    float64
}

var ErrCommand = errors.New("scene: malformed command")

// ParseCommand reads the text form produced by Command.String, e.g.
// "step", "resize 800 600", "drag 4 -2 shift" or "scroll 1 400 300".
func ParseCommand(s string) (Command, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command: %w", ErrCommand)
	}
	kind, ok := kindAliases[fields[0]]
	if !ok {
		kind = -1
		for k, name := range kindNames {
			if name == fields[0] {
				kind = k
				break
			}
		}
		if kind < 0 {
			return Command{}, fmt.Errorf("unknown command %q: %w", fields[0], ErrCommand)
		}
	}
	args := fields[1:]
	c := Command{Kind: kind}

	nums := func(min, max int) ([]float64, error) {
		if len(args) < min || len(args) > max {
			return nil, fmt.Errorf("%s takes %d to %d arguments, got %d: %w", kind, min, max, len(args), ErrCommand)
		}
		out := make([]float64, len(args))
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%s argument %q: %w", kind, a, ErrCommand)
			}
			out[i] = v
		}
		return out, nil
	}

	switch kind {
	case Resize:
		n, err := nums(2, 2)
		if err != nil {
			return Command{}, err
		}
		if n[0] < 1 || n[1] < 1 {
			return Command{}, fmt.Errorf("resize to %vx%v: %w", n[0], n[1], ErrCommand)
		}
		c.Width, c.Height = int(n[0]), int(n[1])
	case Drag:
		if len(args) == 3 && args[2] == "shift" {
			c.Shift = true
			args = args[:2]
		}
		n, err := nums(2, 2)
		if err != nil {
			return Command{}, err
		}
		c.DX, c.DY = n[0], n[1]
	case Scroll:
		n, err := nums(1, 3)
		if err != nil {
			return Command{}, err
		}
		c.Notches = n[0]
		if len(n) == 3 {
			c.X, c.Y = n[1], n[2]
		}
	default:
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%s takes no arguments: %w", kind, ErrCommand)
		}
	}
	return c, nil
}

func (c Command) String() string {
	switch c.Kind {
	case Resize:
		return fmt.Sprintf("resize %d %d", c.Width, c.Height)
	case Drag:
		s := fmt.Sprintf("drag %g %g", c.DX, c.DY)
		if c.Shift {
			s += " shift"
		}
		return s
	case Scroll:
		return fmt.Sprintf("scroll %g %g %g", c.Notches, c.X, c.Y)
	}
	return c.Kind.String()
}

// MarshalText and UnmarshalText let commands travel as plain strings in
// JSON and YAML.
func (c Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Command) UnmarshalText(b []byte) error {
	parsed, err := ParseCommand(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

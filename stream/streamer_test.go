package stream

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/linviz/arith"
	"github.com/matt-g-everett/linviz/config"
	"github.com/matt-g-everett/linviz/linalg"
	"github.com/matt-g-everett/linviz/runner"
	"github.com/matt-g-everett/linviz/scene"
)

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	published []published
	handlers  map[string]mqtt.MessageHandler
	// tokens are handed out by Publish in order, then DummyTokens.
	tokens []mqtt.Token
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.published = append(c.published, published{topic, payload.([]byte)})
	if len(c.tokens) > 0 {
		t := c.tokens[0]
		c.tokens = c.tokens[1:]
		return t
	}
	return &mqtt.DummyToken{}
}

// slowToken completes when done is closed.
type slowToken struct {
	done chan struct{}
	err  error
}

func (t *slowToken) Wait() bool {
	<-t.done
	return true
}

func (t *slowToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *slowToken) Done() <-chan struct{} { return t.done }
func (t *slowToken) Error() error          { return t.err }

func (c *fakeClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	if c.handlers == nil {
		c.handlers = make(map[string]mqtt.MessageHandler)
	}
	c.handlers[topic] = callback
	return &mqtt.DummyToken{}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type recorder struct {
	cmds []scene.Command
}

func (r *recorder) Send(c scene.Command) bool {
	r.cmds = append(r.cmds, c)
	return true
}

func snapshot(t *testing.T) runner.Snapshot {
	t.Helper()
	s, err := scene.New(2, 800, 600)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := linalg.MustVector(3, 4).WithColorName("#ff0000")
	if err := s.Add(v); err != nil {
		t.Fatal(err)
	}
	return runner.Snapshot{Seq: 7, Scene: s.Frame()}
}

func TestPublishJSON(t *testing.T) {
	client := &fakeClient{}
	s := NewStreamer(config.Default(), client, &recorder{})
	if err := s.Publish(snapshot(t)); err != nil {
		t.Fatal(err)
	}
	if len(client.published) != 1 || client.published[0].topic != "linviz/frames" {
		t.Fatalf("published = %+v", client.published)
	}
	var got struct {
		Seq   uint64 `json:"seq"`
		Scene struct {
			Vectors []struct {
				Components []float64 `json:"components"`
				Color      string    `json:"color"`
			} `json:"vectors"`
		} `json:"scene"`
	}
	if err := json.Unmarshal(client.published[0].payload, &got); err != nil {
		t.Fatal(err)
	}
	if got.Seq != 7 || len(got.Scene.Vectors) != 1 || got.Scene.Vectors[0].Color != "#ff0000" {
		t.Fatalf("decoded = %+v", got)
	}
}

func TestPublishBinary(t *testing.T) {
	cfg := config.Default()
	cfg.Mqtt.Format = "binary"
	client := &fakeClient{}
	s := NewStreamer(cfg, client, &recorder{})
	if err := s.Publish(snapshot(t)); err != nil {
		t.Fatal(err)
	}
	var f BinaryFrame
	if err := f.UnmarshalBinary(client.published[0].payload); err != nil {
		t.Fatal(err)
	}
	if f.Seq != 7 || f.Kind != KindScene || f.Dim != 2 || len(f.Arrows) != 1 {
		t.Fatalf("frame = %+v", f)
	}
	a := f.Arrows[0]
	if a.Components[0] != 3 || a.Components[1] != 4 || a.Color.R != 1 || a.Color.G != 0 {
		t.Fatalf("arrow = %+v", a)
	}
}

func TestDecimation(t *testing.T) {
	client := &fakeClient{}
	s := NewStreamer(config.Default(), client, &recorder{})
	s.SetDecimation(3)
	snap := snapshot(t)
	for i := 0; i < 7; i++ {
		if err := s.Publish(snap); err != nil {
			t.Fatal(err)
		}
	}
	if len(client.published) != 3 {
		t.Fatalf("published %d", len(client.published))
	}
}

func TestPublishDoesNotWait(t *testing.T) {
	token := &slowToken{done: make(chan struct{})}
	client := &fakeClient{tokens: []mqtt.Token{token}}
	s := NewStreamer(config.Default(), client, &recorder{})
	snap := snapshot(t)

	if err := s.Publish(snap); err != nil {
		t.Fatal(err)
	}
	finished := make(chan error, 1)
	go func() { finished <- s.Publish(snap) }()
	select {
	case err := <-finished:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("publish blocked on the broker")
	}
	if len(client.published) != 1 {
		t.Fatalf("published %d while the first frame was in flight", len(client.published))
	}

	token.err = errors.New("broker gone")
	close(token.done)
	if err := s.Publish(snap); err == nil || !errors.Is(err, token.err) {
		t.Fatalf("err = %v", err)
	}
	if len(client.published) != 2 {
		t.Fatalf("published %d", len(client.published))
	}
	if err := s.Publish(snap); err != nil {
		t.Fatalf("err = %v after recovery", err)
	}
}

func TestControlMessages(t *testing.T) {
	client := &fakeClient{}
	rec := &recorder{}
	s := NewStreamer(config.Default(), client, rec)
	if err := s.Subscribe(); err != nil {
		t.Fatal(err)
	}
	handler := client.handlers["linviz/control"]
	if handler == nil {
		t.Fatal("not subscribed to the control topic")
	}
	for _, p := range []string{
		"step",
		`{"type": "command", "command": "drag 5 0 shift"}`,
		`{"type": "commands", "commands": ["pause", "back"]}`,
		"explode",
		`{"type": "calibrate"}`,
		`{"type": `,
	} {
		handler(nil, fakeMessage{topic: "linviz/control", payload: []byte(p)})
	}
	want := []scene.Command{
		{Kind: scene.StepForward},
		{Kind: scene.Drag, DX: 5, Shift: true},
		{Kind: scene.Pause},
		{Kind: scene.StepBackward},
	}
	if len(rec.cmds) != len(want) {
		t.Fatalf("cmds = %+v", rec.cmds)
	}
	for i := range want {
		if rec.cmds[i] != want[i] {
			t.Fatalf("cmd %d = %+v, want %+v", i, rec.cmds[i], want[i])
		}
	}
}

func TestBinaryArith(t *testing.T) {
	w, err := arith.NewDot([]float64{1, 2}, []float64{3, 4})
	if err != nil {
		t.Fatal(err)
	}
	w.Advance(3)
	v := w.View()
	b, err := MarshalBinary(runner.Snapshot{Seq: 1, Arith: &v})
	if err != nil {
		t.Fatal(err)
	}
	var f BinaryFrame
	if err := f.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if f.Kind != KindArith || f.Step != 3 || f.Total != 3 || !f.Finished || f.Progress != 1 {
		t.Fatalf("frame = %+v", f)
	}
	if err := f.UnmarshalBinary(b[:5]); err != ErrShortFrame {
		t.Fatalf("short frame err = %v", err)
	}
	if _, err := MarshalBinary(runner.Snapshot{}); err == nil {
		t.Fatal("empty snapshot encoded")
	}
}

func TestBinaryTransforms(t *testing.T) {
	snap := snapshot(t)
	snap.Scene.Transforms = []scene.GridDraw{{Matrix: [][]float64{{1, 2}, {3, 4}}}}
	b, err := MarshalBinary(snap)
	if err != nil {
		t.Fatal(err)
	}
	var f BinaryFrame
	if err := f.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	want := [9]float32{1, 2, 0, 3, 4, 0, 0, 0, 0}
	if len(f.Matrices) != 1 || f.Matrices[0] != want {
		t.Fatalf("matrices = %v", f.Matrices)
	}
}

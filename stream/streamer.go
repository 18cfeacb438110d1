// Package stream mirrors playback over MQTT: snapshots go out on the
// frames topic and transport commands come in on the control topic.
package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/linviz/config"
	"github.com/matt-g-everett/linviz/runner"
	"github.com/matt-g-everett/linviz/scene"
)

// Client is the part of mqtt.Client the streamer needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

// Commander accepts transport commands, e.g. a *runner.Runner.
type Commander interface {
	Send(c scene.Command) bool
}

// ControlMessage is the JSON form of a control payload. Plain-text
// payloads such as "step" or "drag 10 0 shift" are accepted too.
type ControlMessage struct {
	Type     string          `json:"type"`
	Command  scene.Command   `json:"command"`
	Commands []scene.Command `json:"commands,omitempty"`
}

// Streamer publishes snapshots and forwards control messages.
type Streamer struct {
	config    config.Config
	client    Client
	commander Commander
	every     int
	count     int
	// pending is the last frame publish, checked without blocking.
	pending mqtt.Token
}

// NewStreamer creates an instance of a Streamer.
func NewStreamer(cfg config.Config, client Client, commander Commander) *Streamer {
	s := new(Streamer)
	s.config = cfg
	s.client = client
	s.commander = commander
	s.every = 1
	return s
}

// SetDecimation publishes only every nth snapshot, for brokers that
// cannot keep up with the tick rate.
func (s *Streamer) SetDecimation(n int) {
	if n < 1 {
		n = 1
	}
	s.every = n
}

// Encode converts a snapshot to the configured wire format.
func (s *Streamer) Encode(snap runner.Snapshot) ([]byte, error) {
	if s.config.Mqtt.Format == "binary" {
		return MarshalBinary(snap)
	}
	return json.Marshal(snap)
}

// Publish sends a snapshot to the frames topic. It implements
// runner.Sink and never waits on the broker: while the previous frame is
// still in flight the snapshot is skipped, and a failed previous frame is
// reported on the next call.
func (s *Streamer) Publish(snap runner.Snapshot) error {
	s.count++
	if (s.count-1)%s.every != 0 {
		return nil
	}

	var last error
	if s.pending != nil {
		select {
		case <-s.pending.Done():
			if err := s.pending.Error(); err != nil {
				last = fmt.Errorf("publish frame: %w", err)
			}
			s.pending = nil
		default:
			return nil
		}
	}

	b, err := s.Encode(snap)
	if err != nil {
		return err
	}
	s.pending = s.client.Publish(s.config.Mqtt.Topics.Frames, 0, false, b)
	return last
}

func parseControl(payload []byte) ([]scene.Command, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || payload[0] != '{' {
		c, err := scene.ParseCommand(string(payload))
		if err != nil {
			return nil, err
		}
		return []scene.Command{c}, nil
	}

	var msg ControlMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}
	switch msg.Type {
	case "command":
		return []scene.Command{msg.Command}, nil
	case "commands":
		return msg.Commands, nil
	}
	return nil, fmt.Errorf("stream: unknown control type %q", msg.Type)
}

func (s *Streamer) handleControl(client mqtt.Client, msg mqtt.Message) {
	cmds, err := parseControl(msg.Payload())
	if err != nil {
		log.Printf("Ignoring control msg on %s: %v", msg.Topic(), err)
		return
	}
	for _, c := range cmds {
		s.commander.Send(c)
	}
}

// Subscribe listens on the control topic.
func (s *Streamer) Subscribe() error {
	token := s.client.Subscribe(s.config.Mqtt.Topics.Control, 0, s.handleControl)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("stream: subscribe %s: %w", s.config.Mqtt.Topics.Control, token.Error())
	}
	log.Printf("Subscribed to %s", s.config.Mqtt.Topics.Control)
	return nil
}

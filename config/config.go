// Package config reads the YAML configuration file.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Window struct {
		Width  int    `yaml:"width"`
		Height int    `yaml:"height"`
		Title  string `yaml:"title"`
	} `yaml:"window"`
	Playback struct {
		FPS      float64 `yaml:"fps"`
		StepSize float64 `yaml:"stepSize"`
		Autoplay *bool   `yaml:"autoplay"`
	} `yaml:"playback"`
	Render struct {
		Width    int     `yaml:"width"`
		Height   int     `yaml:"height"`
		Frames   int     `yaml:"frames"`
		Dir      string  `yaml:"dir"`
		GIF      string  `yaml:"gif"`
		GIFDelay int     `yaml:"gifDelay"`
		FontSize float64 `yaml:"fontSize"`
	} `yaml:"render"`
	Mqtt struct {
		Enabled  bool   `yaml:"enabled"`
		URL      string `yaml:"url"`
		ClientID string `yaml:"clientId"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Format   string `yaml:"format"`
		Topics   struct {
			Frames  string `yaml:"frames"`
			Control string `yaml:"control"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	Api struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"api"`
	Watch bool `yaml:"watch"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Window.Width <= 0 {
		c.Window.Width = 800
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 600
	}
	if c.Window.Title == "" {
		c.Window.Title = "linviz"
	}
	if c.Playback.FPS <= 0 {
		c.Playback.FPS = 60
	}
	if c.Playback.StepSize <= 0 {
		c.Playback.StepSize = 0.05
	}
	if c.Playback.Autoplay == nil {
		on := true
		c.Playback.Autoplay = &on
	}
	if c.Render.Width <= 0 {
		c.Render.Width = c.Window.Width
	}
	if c.Render.Height <= 0 {
		c.Render.Height = c.Window.Height
	}
	if c.Render.Frames <= 0 {
		c.Render.Frames = 120
	}
	if c.Render.Dir == "" {
		c.Render.Dir = "frames"
	}
	if c.Render.GIFDelay <= 0 {
		c.Render.GIFDelay = 2
	}
	if c.Render.FontSize <= 0 {
		c.Render.FontSize = 13
	}
	if c.Mqtt.ClientID == "" {
		c.Mqtt.ClientID = "linviz"
	}
	if c.Mqtt.Format == "" {
		c.Mqtt.Format = "json"
	}
	if c.Mqtt.Topics.Frames == "" {
		c.Mqtt.Topics.Frames = "linviz/frames"
	}
	if c.Mqtt.Topics.Control == "" {
		c.Mqtt.Topics.Control = "linviz/control"
	}
	if c.Api.Addr == "" {
		c.Api.Addr = ":3000"
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if c.Mqtt.Enabled && c.Mqtt.URL == "" {
		return fmt.Errorf("config: mqtt.url is required when mqtt is enabled")
	}
	switch c.Mqtt.Format {
	case "json", "binary":
	default:
		return fmt.Errorf("config: mqtt.format %q must be json or binary", c.Mqtt.Format)
	}
	return nil
}

// Decode reads a configuration and fills in defaults.
func Decode(r io.Reader) (Config, error) {
	var c Config
	decoder := yaml.NewDecoder(r)
	decoder.SetStrict(true)
	if err := decoder.Decode(&c); err != nil && err != io.EOF {
		return c, fmt.Errorf("config: %w", err)
	}
	c.applyDefaults()
	return c, c.Validate()
}

// Read decodes the file at path.
func Read(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

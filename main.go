package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/gdamore/tcell/v2"
	"github.com/matt-g-everett/linviz/api"
	"github.com/matt-g-everett/linviz/config"
	"github.com/matt-g-everett/linviz/render"
	"github.com/matt-g-everett/linviz/runner"
	"github.com/matt-g-everett/linviz/scene"
	"github.com/matt-g-everett/linviz/sceneio"
	"github.com/matt-g-everett/linviz/stream"
	"github.com/matt-g-everett/linviz/terminal"
	"github.com/matt-g-everett/linviz/window"
)

//go:embed scenes/demo.yaml
var demoScene []byte

type app struct {
	Config    config.Config
	Client    mqtt.Client
	Streamer  *stream.Streamer
	Runner    *runner.Runner
	ScenePath string
}

func newApp() *app {
	a := new(app)
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	log.Println("Connected")
	if err := a.Streamer.Subscribe(); err != nil {
		log.Printf("Control disabled: %v", err)
	}
}

func (a *app) readConfig(configPath string) {
	if configPath == "" {
		a.Config = config.Default()
		return
	}
	cfg, err := config.Read(configPath)
	if err != nil {
		panic(err)
	}
	a.Config = cfg
}

// load builds the scene file, or the built-in demo when none was given.
func (a *app) load() (runner.Program, error) {
	w, h := a.Config.Window.Width, a.Config.Window.Height
	if a.ScenePath == "" {
		doc, err := sceneio.Parse(demoScene)
		if err != nil {
			return nil, err
		}
		l, err := doc.Build(w, h)
		if err != nil {
			return nil, err
		}
		l.Scene.SetStepSize(a.Config.Playback.StepSize)
		if !*a.Config.Playback.Autoplay {
			l.Scene.Pause()
		}
		return runner.FromLoaded(l), nil
	}
	l, err := sceneio.Load(a.ScenePath, w, h)
	if err != nil {
		return nil, err
	}
	return runner.FromLoaded(l), nil
}

func (a *app) connect() {
	cfg := a.Config.Mqtt
	options := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(a.handleOnConnect)
	a.Client = mqtt.NewClient(options)
	a.Streamer = stream.NewStreamer(a.Config, a.Client, a.Runner)
	if a.Config.Playback.FPS > 30 {
		a.Streamer.SetDecimation(int(a.Config.Playback.FPS / 30))
	}

	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		panic(token.Error())
	}
	a.Runner.AddSink(a.Streamer)
}

func (a *app) serveApi() {
	raster, err := render.NewRasterizer(a.Config.Render.Width, a.Config.Render.Height, a.Config.Render.FontSize)
	if err != nil {
		log.Printf("Frame images disabled: %v", err)
		raster = nil
	}
	server := api.NewApi(a.Runner, a.Runner, raster)
	if _, err := os.Stat("client/dist"); err == nil {
		server.Static = "client/dist"
	}
	if err := server.Serve(a.Config.Api.Addr); err != nil {
		log.Printf("Api stopped: %v", err)
	}
}

// watch swaps in the rebuilt scene whenever its file changes.
func (a *app) watch(ctx context.Context) {
	watcher, err := sceneio.NewWatcher(a.ScenePath)
	if err != nil {
		log.Printf("Not watching %s: %v", a.ScenePath, err)
		return
	}
	defer watcher.Close()
	log.Printf("Watching %s", a.ScenePath)

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-watcher.Events:
			if !ok {
				return
			}
			p, err := a.load()
			if err != nil {
				log.Printf("Reload of %s failed: %v", filepath.Base(path), err)
				continue
			}
			a.Runner.Swap(p)
			log.Printf("Reloaded %s", filepath.Base(path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watch error: %v", err)
		}
	}
}

// renderFrames steps through a fixed number of frames without waiting and
// writes them out.
func (a *app) renderFrames(frames int, dir, gifPath string) error {
	cfg := a.Config.Render
	raster, err := render.NewRasterizer(cfg.Width, cfg.Height, cfg.FontSize)
	if err != nil {
		return err
	}
	if dir != "" {
		pngs, err := render.NewPNGSink(raster, dir)
		if err != nil {
			return err
		}
		a.Runner.AddSink(pngs)
	}
	var gifs *render.GIFSink
	if gifPath != "" {
		gifs = render.NewGIFSink(raster, cfg.GIFDelay)
		a.Runner.AddSink(gifs)
	}

	// The cameras follow the output size rather than the window.
	a.Runner.Send(scene.Command{Kind: scene.Resize, Width: cfg.Width, Height: cfg.Height})
	a.Runner.RunFrames(frames, 1/a.Config.Playback.FPS)
	log.Printf("Rendered %d frames", frames)
	if gifs != nil {
		return gifs.Save(gifPath)
	}
	return nil
}

func main() {
	// mqtt.DEBUG = log.New(os.Stdout, "", 0)
	mqtt.ERROR = log.New(os.Stdout, "", 0)

	// Parse command line parameters
	configPath := flag.String("config", "", "YAML config file.")
	scenePath := flag.String("scene", "", "YAML scene file; the built-in demo when empty.")
	mode := flag.String("mode", "window", "One of window, terminal, render or serve.")
	frames := flag.Int("frames", 0, "Frames to render; the config value when 0.")
	out := flag.String("out", "", "Directory for rendered PNG frames.")
	gifPath := flag.String("gif", "", "Write rendered frames to this GIF.")
	watch := flag.Bool("watch", false, "Reload the scene file when it changes.")
	flag.Parse()

	// Read the config
	a := newApp()
	a.readConfig(*configPath)
	a.ScenePath = *scenePath
	log.Printf("Config: %+v", a.Config)

	program, err := a.load()
	if err != nil {
		log.Fatalf("Loading scene: %v", err)
	}
	a.Runner = runner.New(program, a.Config.Playback.FPS)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if a.Config.Mqtt.Enabled {
		a.connect()
		defer a.Client.Disconnect(250)
	}
	if a.Config.Api.Enabled {
		go a.serveApi()
	}
	if a.ScenePath != "" && (*watch || a.Config.Watch) {
		go a.watch(ctx)
	}

	switch *mode {
	case "window":
		g := window.New(a.Runner, a.Config.Render.FontSize)
		err = window.Run(g, a.Config.Window.Title, a.Config.Window.Width, a.Config.Window.Height)
	case "terminal":
		var screen tcell.Screen
		if screen, err = tcell.NewScreen(); err == nil {
			err = terminal.New(screen, a.Runner).Run(ctx)
		}
	case "render":
		n := *frames
		if n <= 0 {
			n = a.Config.Render.Frames
		}
		dir := *out
		if dir == "" && *gifPath == "" {
			dir = a.Config.Render.Dir
		}
		gif := *gifPath
		if gif == "" && *out == "" {
			gif = a.Config.Render.GIF
		}
		err = a.renderFrames(n, dir, gif)
	case "serve":
		err = a.Runner.Run(ctx)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil && err != context.Canceled {
		log.Fatal(err)
	}
}

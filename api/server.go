// Package api serves the latest snapshot over HTTP and accepts transport
// commands.
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/matt-g-everett/linviz/render"
	"github.com/matt-g-everett/linviz/runner"
	"github.com/matt-g-everett/linviz/scene"
)

// Source provides the most recent snapshot, e.g. a *runner.Runner.
type Source interface {
	Latest() runner.Snapshot
}

// Commander accepts transport commands.
type Commander interface {
	Send(c scene.Command) bool
}

type Api struct {
	source    Source
	commander Commander

	mu     sync.Mutex
	raster *render.Rasterizer

	// Static is an optional directory served at /.
	Static string
}

func NewApi(source Source, commander Commander, raster *render.Rasterizer) *Api {
	a := new(Api)
	a.source = source
	a.commander = commander
	a.raster = raster
	return a
}

// Handler routes:
//
//	GET  /frame      latest snapshot as JSON
//	GET  /frame.png  latest snapshot rasterized
//	POST /command    one command per line, or {"commands": [...]}
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /frame", a.handleFrame)
	mux.HandleFunc("GET /frame.png", a.handleFramePNG)
	mux.HandleFunc("POST /command", a.handleCommand)
	if a.Static != "" {
		mux.Handle("/", http.FileServer(http.Dir(a.Static)))
	}
	return mux
}

func (a *Api) handleFrame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.source.Latest()); err != nil {
		log.Printf("Encoding frame: %v", err)
	}
}

func (a *Api) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	if a.raster == nil {
		http.Error(w, "rendering disabled", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	a.mu.Lock()
	err := a.raster.EncodePNG(&buf, a.source.Latest())
	a.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

type commandBody struct {
	Commands []scene.Command `json:"commands"`
}

func (a *Api) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var cmds []scene.Command
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		var cb commandBody
		if err := json.Unmarshal(trimmed, &cb); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cmds = cb.Commands
	} else {
		for _, line := range strings.Split(string(trimmed), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			c, err := scene.ParseCommand(line)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			cmds = append(cmds, c)
		}
	}
	if len(cmds) == 0 {
		http.Error(w, "no commands", http.StatusBadRequest)
		return
	}

	for _, c := range cmds {
		if !a.commander.Send(c) {
			http.Error(w, "command queue full", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusAccepted)
}

// Serve listens on addr until the server fails.
func (a *Api) Serve(addr string) error {
	log.Printf("Listening on %s...", addr)
	return http.ListenAndServe(addr, a.Handler())
}

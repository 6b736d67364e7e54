// Package web serves a small HTTP page that feeds command lines into the
// cooperative loop.
package web

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"xeweos/internal/module"
	"xeweos/pkg/ostypes"
)

const (
	defaultAddr      = ":8080"
	defaultQueueSize = 8

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 2 * time.Second
)

//go:embed index.html
var indexHTML []byte

// Options configures the Web_Interface module.
type Options struct {
	// Addr is the listen address, host:port.
	Addr string
	// QueueSize bounds command lines waiting for the loop.
	QueueSize int
	// LocalIP supplies the address announced on the console.
	LocalIP func() string
}

// Web is the Web_Interface module.
type Web struct {
	*module.Module

	opts       Options
	queue      chan string
	dispatcher ostypes.Dispatcher
	started    time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates the Web_Interface module. It expects the controller to add
// the Wifi requirement before Begin.
func New(env *module.Env, opts Options) *Web {
	if opts.Addr == "" {
		opts.Addr = defaultAddr
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	w := &Web{opts: opts, queue: make(chan string, opts.QueueSize), started: env.Now()}
	w.Module = module.New(env, module.Spec{
		Name:          "Web_Interface",
		Description:   "Allows to interact with other devices on the local network",
		NamespaceKey:  "wb",
		CanBeDisabled: true,
		HasCommands:   true,
	}, module.Hooks{
		Common:  w.serve,
		Loop:    w.drain,
		Reset:   w.Close,
		Disable: w.Close,
		Status:  w.status,
	})
	return w
}

// SetDispatcher sets where queued command lines are sent.
func (w *Web) SetDispatcher(d ostypes.Dispatcher) {
	w.dispatcher = d
}

// Handler returns the HTTP routes.
func (w *Web) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", w.servePage)
	mux.HandleFunc("GET /cmd", w.handleCommand)
	return mux
}

// Addr returns the bound listen address, or "" while not serving.
func (w *Web) Addr() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.listener == nil {
		return ""
	}
	return w.listener.Addr().String()
}

func (w *Web) serve() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.server != nil {
		return
	}

	ln, err := net.Listen("tcp", w.opts.Addr)
	if err != nil {
		w.Console().Println("Web Interface failed to start: " + err.Error())
		w.Logger().Error("Listen failed", "addr", w.opts.Addr, "error", err)
		return
	}
	srv := &http.Server{
		Handler:           w.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	w.server = srv
	w.listener = ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.Logger().Error("HTTP server stopped", "error", err)
		}
	}()

	host := ""
	if w.opts.LocalIP != nil {
		host = w.opts.LocalIP()
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	w.Console().Println("Web Interface now available at:\nhttp://" + net.JoinHostPort(host, port))
	w.Logger().Info("Listening", "addr", ln.Addr().String())
}

// Close stops the HTTP server. It is safe to call when not serving.
func (w *Web) Close() {
	w.mu.Lock()
	srv := w.server
	w.server = nil
	w.listener = nil
	w.mu.Unlock()
	if srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		w.Logger().Warn("HTTP shutdown failed", "error", err)
	}
}

func (w *Web) servePage(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = rw.Write(indexHTML)
}

func (w *Web) handleCommand(rw http.ResponseWriter, r *http.Request) {
	line := strings.TrimSpace(r.URL.Query().Get("c"))
	if line == "" {
		http.Error(rw, "Empty Command", http.StatusBadRequest)
		return
	}
	select {
	case w.queue <- line:
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = rw.Write([]byte("OK"))
	default:
		http.Error(rw, "Busy", http.StatusServiceUnavailable)
	}
}

// drain dispatches at most one queued line per loop pass.
func (w *Web) drain() {
	select {
	case line := <-w.queue:
		w.Console().Println("Got cmd from web:\n" + line)
		if w.dispatcher == nil {
			w.Logger().Warn("No dispatcher; dropping web command", "command", line)
			return
		}
		if err := w.dispatcher.Parse(line); err != nil {
			w.Logger().Debug("Web command rejected", "command", line, "error", err)
		}
	default:
	}
}

func (w *Web) status() string {
	up := int64(w.Env().Now().Sub(w.started) / time.Second)
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	usage := 0.0
	if mem.HeapSys > 0 {
		usage = float64(mem.HeapInuse) * 100 / float64(mem.HeapSys)
	}

	var b strings.Builder
	b.WriteString("--- Web Server Status ---\n")
	fmt.Fprintf(&b, "  - Uptime:       %dd %02d:%02d:%02d\n", up/86400, up%86400/3600, up%3600/60, up%60)
	fmt.Fprintf(&b, "  - Memory Usage: %.2f%% (%d / %d bytes)\n", usage, mem.HeapInuse, mem.HeapSys)
	b.WriteString("-------------------------")
	return b.String()
}

// Package preview serves a local page showing the active session's filed
// images and recent status lines, refreshed over server-sent events.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"auditsnap/internal/filing"
	"auditsnap/internal/logging"
	"auditsnap/internal/status"
)

const (
	DefaultAddr = "127.0.0.1:8765"
	maxClients  = 5
	recentLines = 50
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".webp": true,
}

// Sessions exposes the active session directory.
type Sessions interface {
	ActivePath() string
}

// Image describes one filed image.
type Image struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Snapshot is the state rendered by the page and /api/status.
type Snapshot struct {
	Session     string   `json:"session"`
	SessionPath string   `json:"session_path"`
	Images      []Image  `json:"images"`
	Lines       []string `json:"lines"`
}

// Server is the session viewer.
type Server struct {
	addr     string
	sessions Sessions
	view     *status.View
	logger   *slog.Logger
	page     *template.Template

	mu  sync.Mutex
	srv *http.Server
	url string

	clientsMu sync.Mutex
	clients   []chan string
}

func New(addr string, sessions Sessions, view *status.View, logger *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		addr:     addr,
		sessions: sessions,
		view:     view,
		logger:   logger.With(logging.String("component", "preview")),
		page:     template.Must(template.New("page").Parse(pageHTML)),
	}
}

// Handler returns the viewer routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/image", s.handleImage)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/api/status", s.handleStatus)
	return mux
}

// Start listens on the configured address. Starting a running server is a
// no-op.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("preview listen %s: %w", s.addr, err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.srv = srv
	s.url = "http://" + ln.Addr().String()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("preview server stopped", logging.Error(err))
		}
	}()
	s.logger.Info("preview server started", logging.String("url", s.url))
	return nil
}

// Shutdown stops the server and disconnects event clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.clientsMu.Lock()
	for _, ch := range s.clients {
		close(ch)
	}
	s.clients = nil
	s.clientsMu.Unlock()

	return srv.Shutdown(ctx)
}

// Running reports whether the server is listening.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srv != nil
}

// URL returns the base URL of a running server.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Observe is a filing result hook.
func (s *Server) Observe(res filing.Result) {
	if res.State == filing.StateMoved {
		s.notify("filed")
	}
}

// StatusSink forwards status entries to connected pages.
func (s *Server) StatusSink(status.Entry) {
	s.notify("status")
}

func (s *Server) notify(event string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for _, ch := range s.clients {
		select {
		case ch <- event:
		default:
		}
	}
}

func (s *Server) clientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// Snapshot collects the active session's images, newest first, and the most
// recent status lines.
func (s *Server) Snapshot() Snapshot {
	snap := Snapshot{Images: []Image{}, Lines: []string{}}
	if s.view != nil {
		lines := s.view.Lines()
		if len(lines) > recentLines {
			lines = lines[len(lines)-recentLines:]
		}
		for i := len(lines) - 1; i >= 0; i-- {
			snap.Lines = append(snap.Lines, lines[i].String())
		}
	}

	dir := s.sessions.ActivePath()
	if dir == "" {
		return snap
	}
	snap.Session, snap.SessionPath = filepath.Base(dir), dir

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("read session folder", logging.String(logging.FieldSession, dir), logging.Error(err))
		return snap
	}
	for _, e := range entries {
		if !isImageName(e.Name()) || !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snap.Images = append(snap.Images, Image{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(snap.Images, func(i, j int) bool {
		a, b := snap.Images[i], snap.Images[j]
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		return a.Name > b.Name
	})
	return snap
}

func isImageName(name string) bool {
	return !strings.HasPrefix(name, ".") && imageExts[strings.ToLower(filepath.Ext(name))]
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, s.Snapshot()); err != nil {
		s.logger.Warn("render page", logging.Error(err))
	}
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	dir := s.sessions.ActivePath()
	if dir == "" || name == "" || name != filepath.Base(name) || !isImageName(name) {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Snapshot()); err != nil {
		s.logger.Warn("encode status", logging.Error(err))
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := make(chan string, 10)
	s.clientsMu.Lock()
	if len(s.clients) >= maxClients {
		close(s.clients[0])
		s.clients = s.clients[1:]
	}
	s.clients = append(s.clients, ch)
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		defer s.clientsMu.Unlock()
		for i, c := range s.clients {
			if c == ch {
				s.clients = append(s.clients[:i], s.clients[i+1:]...)
				close(ch)
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

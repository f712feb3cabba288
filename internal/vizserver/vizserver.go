// Package vizserver serves a live view of one repository's commit graph:
// a small HTTP handler for the initial snapshot, and a websocket hub that
// pushes a fresh full snapshot as refs move (no incremental deltas). It is read-only and single-repository,
// unlike the multi-tenant browsing server this package is adapted from.
package vizserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/yuin/goldmark"

	"github.com/relayvcs/ugit/internal/commitgraph"
	"github.com/relayvcs/ugit/internal/objstore"
	"github.com/relayvcs/ugit/internal/refs"
)

const debounceTime = 100 * time.Millisecond

// CommitNode is one node of the graph snapshot sent to clients: the
// commit's own fields plus its message pre-rendered to HTML (goldmark),
// since commit messages are free-form text and the browser should not
// need its own markdown renderer just to show emphasis or a list.
type CommitNode struct {
	OID         string   `json:"oid"`
	Tree        string   `json:"tree"`
	Parents     []string `json:"parents"`
	Message     string   `json:"message"`
	MessageHTML string   `json:"messageHtml"`
}

// RefEntry mirrors a ref name to the OID it resolves to, for the graph's
// branch labels. Only refs/heads/* entries are included; tags are not.
type RefEntry struct {
	Name string `json:"name"`
	OID  string `json:"oid"`
}

// Snapshot is the full graph state pushed on connect and on every change.
type Snapshot struct {
	SessionID string       `json:"sessionId"`
	Commits   []CommitNode `json:"commits"`
	Refs      []RefEntry   `json:"refs"`
}

// Server watches one repository directory and serves its graph state over
// HTTP (snapshot) and websocket (snapshot on connect, then a new full
// snapshot after each change).
type Server struct {
	workDir string
	repoDir string
	store   *objstore.Store
	refs    *refs.Store
	graph   *commitgraph.Graph
	logger  *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

// New returns a Server over the repository rooted at workDir (whose
// metadata lives in workDir/.ugit).
func New(workDir, repoDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	store := objstore.New(repoDir)
	refStore := refs.New(repoDir)
	return &Server{
		workDir: workDir,
		repoDir: repoDir,
		store:   store,
		refs:    refStore,
		graph:   commitgraph.New(store, refStore),
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.buildSnapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Error("encoding snapshot", "err", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	snap, err := s.buildSnapshot()
	if err != nil {
		s.logger.Error("building initial snapshot", "err", err)
		conn.Close() //nolint:errcheck,gosec
		return
	}
	if err := conn.WriteJSON(snap); err != nil {
		conn.Close() //nolint:errcheck,gosec
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("viz client connected", "addr", conn.RemoteAddr())

	go s.readPump(conn)
}

// readPump drains and discards inbound frames until the client
// disconnects, at which point it deregisters the connection. This
// connection never expects client-initiated messages; it only needs to
// notice when the socket closes.
func (s *Server) readPump(conn *websocket.Conn) {
	defer s.removeClient(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close() //nolint:errcheck,gosec
}

func (s *Server) broadcast(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(snap); err != nil {
			s.logger.Warn("dropping viz client after write error", "err", err)
			delete(s.clients, conn)
			conn.Close() //nolint:errcheck,gosec
		}
	}
}

func (s *Server) buildSnapshot() (Snapshot, error) {
	entries, err := s.refs.IterRefs("refs/heads/", true)
	if err != nil {
		return Snapshot{}, err
	}

	refEntries := make([]RefEntry, 0, len(entries))
	seeds := make([]string, 0, len(entries))
	for _, e := range entries {
		refEntries = append(refEntries, RefEntry{Name: e.Name, OID: e.Value.Value})
		seeds = append(seeds, e.Value.Value)
	}

	oids, err := s.graph.IterCommitsAndParents(seeds)
	if err != nil {
		return Snapshot{}, err
	}

	nodes := make([]CommitNode, 0, len(oids))
	for _, oid := range oids {
		c, err := s.graph.GetCommit(oid)
		if err != nil {
			return Snapshot{}, err
		}
		html, err := renderMarkdown(c.Message)
		if err != nil {
			s.logger.Warn("rendering commit message", "oid", oid, "err", err)
			html = c.Message
		}
		nodes = append(nodes, CommitNode{
			OID:         oid,
			Tree:        c.Tree,
			Parents:     c.Parents,
			Message:     c.Message,
			MessageHTML: html,
		})
	}

	return Snapshot{SessionID: uuid.NewString(), Commits: nodes, Refs: refEntries}, nil
}

func renderMarkdown(message string) (string, error) {
	var buf []byte
	w := &byteBuf{buf: buf}
	if err := goldmark.Convert([]byte(message), w); err != nil {
		return "", err
	}
	return string(w.buf), nil
}

// byteBuf is the minimal io.Writer goldmark needs, avoiding a dependency
// on bytes.Buffer just to collect one conversion's output.
type byteBuf struct{ buf []byte }

func (b *byteBuf) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Watch starts an fsnotify watch on the repository's refs and HEAD,
// pushing a fresh snapshot to every connected client (debounced) whenever
// something changes. It runs until ctx is canceled.
func (s *Server) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(s.repoDir); err != nil {
		watcher.Close() //nolint:errcheck,gosec
		return err
	}
	for _, sub := range []string{"refs/heads", "refs/tags", "refs/remote"} {
		_ = watcher.Add(s.repoDir + "/" + sub) //nolint:errcheck // best effort: missing dirs are fine
	}

	go s.watchLoop(ctx, watcher)
	s.logger.Info("watching repository for graph changes", "dir", s.repoDir)
	return nil
}

func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close() //nolint:errcheck,gosec

	var timer *time.Timer
	push := func() {
		snap, err := s.buildSnapshot()
		if err != nil {
			s.logger.Error("rebuilding snapshot after change", "err", err)
			return
		}
		s.broadcast(snap)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-watcher.Events:
			if !ok {
				return
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceTime, push)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("watcher error", "err", err)
		}
	}
}

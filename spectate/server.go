// Package spectate streams game snapshots to websocket viewers.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gridsnake/driver"
	"gridsnake/game"
	"gridsnake/game/types"
	"gridsnake/log"

	"github.com/arl/statsviz"
	charmlog "github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

// Message types sent to spectators.
const (
	MsgHello    = "h"
	MsgSnapshot = "s"
)

const (
	shutdownTimeout = 2 * time.Second
	qrPath          = "/qr"
	qrSize          = 256
)

// Source is what the server needs from the game loop.
type Source interface {
	Subscribe() (<-chan driver.Frame, func())
}

// HelloMsg is the first message on every connection.
type HelloMsg struct {
	Type string     `json:"t"`
	ID   string     `json:"id"`
	Grid types.Grid `json:"grid"`
}

// SnapshotMsg carries one frame tagged with the round it belongs to.
type SnapshotMsg struct {
	Type string `json:"t"`
	Game string `json:"game"`
	game.Snapshot
}

type Server struct {
	src      Source
	grid     types.Grid
	path     string
	conns    *ConnManager
	upgrader websocket.Upgrader
	debug    bool
	logger   *charmlog.Logger
}

type Option func(*Server)

// WithDebug mounts the statsviz runtime dashboard under /debug/statsviz/.
func WithDebug(enabled bool) Option {
	return func(s *Server) {
		s.debug = enabled
	}
}

func NewServer(src Source, grid types.Grid, path string, opts ...Option) *Server {
	if path == "" {
		path = "/ws"
	}
	s := &Server{
		src:   src,
		grid:  grid,
		path:  path,
		conns: NewConnManager(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:    1024,
			WriteBufferSize:   4096,
			EnableCompression: true,
		},
		logger: log.Logger().With("component", "spectate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Viewers is the number of connected spectators.
func (s *Server) Viewers() int {
	return s.conns.Count()
}

// Handler serves the websocket endpoint, the QR code and, in debug mode,
// the runtime dashboard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleWS)
	mux.HandleFunc(qrPath, s.handleQR)
	if s.debug {
		if err := statsviz.Register(mux); err != nil {
			s.logger.Warn("statsviz unavailable", "err", err)
		}
	}
	return mux
}

// FeedURL is the websocket address viewers connect to through host.
func (s *Server) FeedURL(host string) string {
	return "ws://" + host + s.path
}

// handleQR serves a PNG QR code of the feed URL so a phone can join.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(s.FeedURL(r.Host), qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("qr encode", "err", err)
		http.Error(w, "qr encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	ws.EnableWriteCompression(true)

	conn := NewConn(ws)
	hello, err := json.Marshal(HelloMsg{Type: MsgHello, ID: conn.ID, Grid: s.grid})
	if err != nil {
		s.logger.Error("encode hello", "err", err)
		conn.Close()
		return
	}
	// Registered only after the hello, so no snapshot can precede it.
	if err := conn.Send(hello); err != nil {
		s.logger.Debug("hello failed", "conn", conn.ID, "err", err)
		conn.Close()
		return
	}
	s.conns.Add(conn)
	s.logger.Info("spectator connected", "conn", conn.ID, "viewers", s.conns.Count())

	conn.ReadLoop(s.logger, func(c *Conn) {
		s.conns.Remove(c.ID)
		s.logger.Info("spectator disconnected", "conn", c.ID)
	})
}

// Broadcast forwards every snapshot from the source until ctx is done.
func (s *Server) Broadcast(ctx context.Context) {
	frames, unsubscribe := s.src.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			s.send(frame)
		}
	}
}

func (s *Server) send(frame driver.Frame) {
	conns := s.conns.Snapshot()
	if len(conns) == 0 {
		return
	}
	data, err := json.Marshal(SnapshotMsg{Type: MsgSnapshot, Game: frame.GameID, Snapshot: frame.Snapshot})
	if err != nil {
		s.logger.Error("encode snapshot", "err", err)
		return
	}
	for _, c := range conns {
		if err := c.Send(data); err != nil {
			s.logger.Debug("dropping spectator", "conn", c.ID, "err", err)
			s.conns.Remove(c.ID)
			c.Close()
		}
	}
}

// ListenAndServe serves spectators on addr and broadcasts until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.Broadcast(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("spectate server listening", "addr", addr, "path", s.path, "debug", s.debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.conns.CloseAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

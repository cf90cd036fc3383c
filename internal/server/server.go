// Package server streams the live cell set to websocket clients and feeds
// interactive edits back into the generation loop. It is an optional
// collaborator: the engine itself has no network surface.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/golang/snappy"
	"github.com/gorilla/websocket"

	"sparse-ca/pkg/geom"
)

// Paint is one interactive cell edit received from a client.
type Paint struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	State int `json:"state"`
}

// Frame is the payload broadcast after each generation. Cells are
// [x, y, state] triples in coordinate order.
type Frame struct {
	Generation uint64   `json:"generation"`
	Cells      [][3]int `json:"cells"`
}

// Server fans generation frames out to connected websocket clients.
// Incoming messages are either the literal command "clear" or a JSON Paint;
// both are buffered until the runner drains them between generations, so
// edits never interleave with an evaluation.
type Server struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	pending []Paint
	clear   bool
}

// New creates a Server. A nil logger falls back to slog.Default.
func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		log: log.With("component", "server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the websocket endpoint handler.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveWS)
}

// ClientCount reports the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Drain returns the buffered edits since the last call. clearGrid reports
// whether any client asked for a wipe; it takes precedence over paints.
func (s *Server) Drain() (paints []Paint, clearGrid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	paints = s.pending
	clearGrid = s.clear
	s.pending = nil
	s.clear = false
	return paints, clearGrid
}

// Broadcast sends the current cell set to every client, snappy-framed.
// Clients that fail a write are dropped.
func (s *Server) Broadcast(generation uint64, cells map[geom.Point]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return
	}
	payload, err := EncodeFrame(generation, cells)
	if err != nil {
		s.log.Error("frame encode failed", "err", err)
		return
	}
	for c := range s.clients {
		if err := c.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			s.log.Warn("client write failed, dropping", "err", err)
			c.Close()
			delete(s.clients, c)
		}
	}
}

// EncodeFrame serializes one generation's cell set: JSON for structure,
// snappy for size. Cells are emitted in coordinate order so identical grids
// produce identical payloads.
func EncodeFrame(generation uint64, cells map[geom.Point]int) ([]byte, error) {
	points := make([]geom.Point, 0, len(cells))
	for p := range cells {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })

	frame := Frame{Generation: generation, Cells: make([][3]int, 0, len(points))}
	for _, p := range points {
		frame.Cells = append(frame.Cells, [3]int{p.X, p.Y, cells[p]})
	}
	raw, err := json.Marshal(frame)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

// DecodeFrame is the inverse of EncodeFrame.
func DecodeFrame(payload []byte) (Frame, error) {
	var frame Frame
	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return frame, err
	}
	err = json.Unmarshal(raw, &frame)
	return frame, err
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	s.clients[ws] = struct{}{}
	s.mu.Unlock()
	s.log.Info("client connected", "remote", ws.RemoteAddr().String())

	defer func() {
		s.mu.Lock()
		delete(s.clients, ws)
		s.mu.Unlock()
		ws.Close()
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			s.log.Info("client disconnected", "remote", ws.RemoteAddr().String())
			return
		}
		if string(msg) == "clear" {
			s.mu.Lock()
			s.clear = true
			s.mu.Unlock()
			continue
		}
		var p Paint
		if err := json.Unmarshal(msg, &p); err != nil {
			s.log.Warn("unparseable client message", "err", err)
			continue
		}
		s.mu.Lock()
		s.pending = append(s.pending, p)
		s.mu.Unlock()
	}
}

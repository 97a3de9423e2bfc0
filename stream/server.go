// Package stream serves the simulation over websockets: clients receive
// downsampled frames and may paint food.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/frame"
	"github.com/pthm-cable/physarum/sim"
)

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
	maxMessageSize  = 4096
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Server streams frames of one simulation to websocket clients.
type Server struct {
	sim        *sim.Simulation
	cfg        *config.Config
	interval   time.Duration
	downsample int
	gain       float32

	clientsMu sync.Mutex
	clients   map[*client]struct{}

	snap      sim.Snapshot
	intensity []float32
}

// NewServer creates a server for s using the stream section of its config.
func NewServer(s *sim.Simulation) *Server {
	cfg := s.Config()
	interval := time.Duration(cfg.Stream.FrameInterval * float64(time.Second))
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Server{
		sim:        s,
		cfg:        cfg,
		interval:   interval,
		downsample: max(cfg.Stream.Downsample, 1),
		gain:       0.1,
		clients:    make(map[*client]struct{}),
	}
}

// Handler returns the HTTP handler serving /ws.
func (srv *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "step %d\n", srv.sim.StepCount())
	})
	return mux
}

// ClientCount returns the number of connected clients.
func (srv *Server) ClientCount() int {
	srv.clientsMu.Lock()
	defer srv.clientsMu.Unlock()
	return len(srv.clients)
}

// ListenAndServe serves on addr and broadcasts frames until ctx is done.
func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return srv.Serve(ctx, ln)
}

// Serve serves on ln and broadcasts frames until ctx is done.
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{Handler: srv.Handler()}

	go srv.broadcastLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		hs.Shutdown(shutdownCtx)
		srv.closeClients()
	}()

	slog.Info("stream server started", "addr", ln.Addr().String(), "interval", srv.interval)
	if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (srv *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)
	c := &client{conn: conn}

	srv.clientsMu.Lock()
	srv.clients[c] = struct{}{}
	srv.clientsMu.Unlock()
	slog.Debug("client connected", "remote", r.RemoteAddr)

	defer srv.remove(c)

	if err := c.send(srv.configMessage()); err != nil {
		return
	}

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := c.send(srv.handleMessage(msg)); err != nil {
			return
		}
	}
}

// handleMessage applies a client message and returns the reply.
func (srv *Server) handleMessage(msg ClientMessage) any {
	switch msg.Type {
	case TypePaint:
		brush := srv.cfg.Food.BrushSize
		if msg.Brush != nil {
			brush = *msg.Brush
		}
		value := srv.cfg.Food.Value
		if msg.Value != nil {
			value = *msg.Value
		}
		n := srv.sim.PaintFood(msg.X, msg.Y, brush, float32(value))
		return PaintedMessage{Type: TypePainted, Cells: n}
	case TypeSpeed:
		if msg.Steps < 1 {
			return ErrorMessage{Type: TypeError, Error: "steps must be at least 1"}
		}
		srv.sim.SetStepsPerTick(msg.Steps)
		return SpeedMessage{Type: TypeSpeed, Steps: srv.sim.StepsPerTick()}
	default:
		return ErrorMessage{Type: TypeError, Error: fmt.Sprintf("unknown message type %q", msg.Type)}
	}
}

func (srv *Server) configMessage() ConfigMessage {
	fw, fh := frameSize(srv.cfg.Simulation.Width, srv.cfg.Simulation.Height, srv.downsample)
	msg := ConfigMessage{
		Type:        TypeConfig,
		Width:       srv.cfg.Simulation.Width,
		Height:      srv.cfg.Simulation.Height,
		FrameWidth:  fw,
		FrameHeight: fh,
		Downsample:  srv.downsample,
		FoodColor:   srv.cfg.Food.Color.String(),
		Brush:       srv.cfg.Food.BrushSize,
		FoodValue:   srv.cfg.Food.Value,
		FoodMax:     srv.cfg.Food.Max,
		Seed:        srv.sim.Seed(),
	}
	for _, sc := range srv.cfg.Species {
		msg.Species = append(msg.Species, SpeciesInfo{Name: sc.Name, Color: sc.Color.String()})
	}
	return msg
}

func frameSize(w, h, factor int) (int, int) {
	return (w + factor - 1) / factor, (h + factor - 1) / factor
}

func (srv *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(srv.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv.broadcast()
		}
	}
}

// broadcast sends the current frame to every client, dropping clients that
// fail to receive it.
func (srv *Server) broadcast() {
	srv.clientsMu.Lock()
	list := make([]*client, 0, len(srv.clients))
	for c := range srv.clients {
		list = append(list, c)
	}
	srv.clientsMu.Unlock()
	if len(list) == 0 {
		return
	}

	msg := srv.buildFrame()
	for _, c := range list {
		if err := c.send(msg); err != nil {
			slog.Debug("client send error", "error", err)
			srv.remove(c)
		}
	}
}

// buildFrame snapshots the simulation and downsamples trail and food.
func (srv *Server) buildFrame() FrameMessage {
	srv.sim.SnapshotInto(&srv.snap)
	snap := &srv.snap

	srv.intensity = frame.Intensity(srv.intensity, snap)
	trail, fw, fh := frame.Downsample(srv.intensity, snap.Width, snap.Height, srv.downsample)
	for i, v := range trail {
		trail[i] = frame.ToneMap(v * srv.gain)
	}
	food, _, _ := frame.Downsample(snap.Food, snap.Width, snap.Height, srv.downsample)

	return FrameMessage{
		Type:     TypeFrame,
		Step:     snap.Step,
		SimTime:  snap.SimTime,
		Agents:   len(snap.X),
		Width:    fw,
		Height:   fh,
		Trail:    frame.Quantize(trail, 1),
		Food:     frame.Quantize(food, float32(srv.cfg.Food.Max)),
		Coverage: srv.sim.LastStats().Coverage,
	}
}

func (srv *Server) remove(c *client) {
	srv.clientsMu.Lock()
	_, ok := srv.clients[c]
	delete(srv.clients, c)
	srv.clientsMu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (srv *Server) closeClients() {
	srv.clientsMu.Lock()
	list := make([]*client, 0, len(srv.clients))
	for c := range srv.clients {
		list = append(list, c)
	}
	srv.clientsMu.Unlock()
	for _, c := range list {
		srv.remove(c)
	}
}

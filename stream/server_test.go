package stream

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/sim"
)

func newTestServer(t *testing.T) (*Server, *sim.Simulation) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Simulation.Width = 40
	cfg.Simulation.Height = 30
	cfg.Simulation.NumAgents = 200
	cfg.Simulation.Seed = 3
	cfg.Stream.Downsample = 4
	s, err := sim.New(cfg, sim.Options{DisableTelemetry: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewServer(s), s
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readConfig(t *testing.T, conn *websocket.Conn) ConfigMessage {
	t.Helper()
	var msg ConfigMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, TypeConfig, msg.Type)
	return msg
}

func TestConfigOnConnect(t *testing.T) {
	srv, s := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	msg := readConfig(t, conn)

	assert.Equal(t, 40, msg.Width)
	assert.Equal(t, 30, msg.Height)
	assert.Equal(t, 10, msg.FrameWidth)
	assert.Equal(t, 8, msg.FrameHeight)
	assert.Equal(t, 4, msg.Downsample)
	assert.Equal(t, int64(3), msg.Seed)
	require.Len(t, msg.Species, 1)
	assert.Equal(t, s.Config().Species[0].Name, msg.Species[0].Name)
	assert.Equal(t, "#00ff00", msg.FoodColor)
	assert.Equal(t, 1, srv.ClientCount())
}

func TestPaintMessage(t *testing.T) {
	srv, s := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	readConfig(t, conn)

	brush := 2
	value := 0.75
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypePaint, X: 10, Y: 10, Brush: &brush, Value: &value}))

	var ack PaintedMessage
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, TypePainted, ack.Type)
	assert.Equal(t, 9, ack.Cells)

	snap := s.Snapshot()
	assert.Equal(t, float32(0.75), snap.Food[10*40+10])

	// Defaults come from the food config (brush 4, value 1).
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypePaint, X: 30, Y: 20}))
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, 49, ack.Cells)
	assert.Equal(t, float32(1), s.Snapshot().Food[20*40+30])

	// Entirely outside the field.
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypePaint, X: -50, Y: -50}))
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Zero(t, ack.Cells)
}

func TestSpeedAndUnknownMessages(t *testing.T) {
	srv, s := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	readConfig(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeSpeed, Steps: 4}))
	var speed SpeedMessage
	require.NoError(t, conn.ReadJSON(&speed))
	assert.Equal(t, 4, speed.Steps)
	assert.Equal(t, 4, s.StepsPerTick())

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeSpeed, Steps: 0}))
	var errMsg ErrorMessage
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Equal(t, TypeError, errMsg.Type)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "teleport"}))
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Contains(t, errMsg.Error, "teleport")
}

func TestBroadcastFrame(t *testing.T) {
	srv, s := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	readConfig(t, conn)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Step())
	}
	s.PaintFood(0, 0, 4, 1)
	srv.broadcast()

	var msg FrameMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, TypeFrame, msg.Type)

	assert.Equal(t, uint64(5), msg.Step)
	assert.Equal(t, 200, msg.Agents)
	assert.Equal(t, 10, msg.Width)
	assert.Equal(t, 8, msg.Height)
	require.Len(t, msg.Trail, 80)
	require.Len(t, msg.Food, 80)
	assert.Equal(t, byte(255), msg.Food[0], "painted corner block is full")

	var lit int
	for _, v := range msg.Trail {
		if v > 0 {
			lit++
		}
	}
	assert.Positive(t, lit)
}

func TestBroadcastDropsClosedClients(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	readConfig(t, conn)
	require.Equal(t, 1, srv.ClientCount())

	conn.Close()
	require.Eventually(t, func() bool {
		srv.broadcast()
		return srv.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealthz(t *testing.T) {
	srv, s := newTestServer(t)
	require.NoError(t, s.Step())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "step 1\n", rec.Body.String())
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simmer/config"
	"simmer/game"
	"simmer/protocol"
	"simmer/server/application"
	"simmer/server/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSnapshotter struct {
	snap protocol.StateSnapshot
	err  error
}

func (s stubSnapshotter) Snapshot(context.Context) (protocol.StateSnapshot, error) {
	return s.snap, s.err
}

func testDeps(state stubSnapshotter) RouteDeps {
	cfg := config.Default()
	return RouteDeps{
		PubSub:      domain.NewSimplePubSub(),
		RoomManager: domain.NewSimpleRoomManager("default"),
		Endpoint:    domain.DefaultEndpointOptions(),
		State:       state,
		Metrics:     cfg.Metrics,
		Gatherer:    application.NewMetrics().Registry(),
	}
}

func TestRoute_Health(t *testing.T) {
	router := Route(testDeps(stubSnapshotter{}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRoute_State(t *testing.T) {
	snap := protocol.StateSnapshot{Players: map[string]protocol.PlayerState{}, Score: 70}
	router := Route(testDeps(stubSnapshotter{snap: snap}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got protocol.StateSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 70, got.Score)
}

func TestRoute_StateRoomBusy(t *testing.T) {
	router := Route(testDeps(stubSnapshotter{err: domain.ErrRoomBusy}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRoute_StateFailure(t *testing.T) {
	router := Route(testDeps(stubSnapshotter{err: errors.New("boom")}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRoute_Metrics(t *testing.T) {
	deps := testDeps(stubSnapshotter{})
	m := application.NewMetrics()
	m.PlayersChanged(2)
	deps.Gatherer = m.Registry()
	router := Route(deps)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "simmer_players 2")
}

func TestRoute_MetricsDisabled(t *testing.T) {
	deps := testDeps(stubSnapshotter{})
	deps.Metrics.Enabled = false
	router := Route(deps)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func readEnvelope(t *testing.T, ctx context.Context, conn *websocket.Conn, want string) protocol.Envelope {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		env, err := protocol.DecodeEnvelope(data)
		require.NoError(t, err)
		if env.T == protocol.TypePing {
			continue
		}
		require.Equal(t, want, env.T)
		return env
	}
}

func TestRoute_WebSocketSession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tuning := game.DefaultTuning()
	state := application.NewState()
	orders := application.NewOrderManager(state, tuning.Orders, rand.New(rand.NewPCG(1, 2)), nil)
	app := application.NewKitchenApplication(state, orders, tuning, config.AuthorityClient, nil)

	pubsub := domain.NewSimplePubSub()
	room := domain.NewRoom("default", pubsub, app, time.Hour)
	roomCtx, stopRoom := context.WithCancel(context.Background())
	defer stopRoom()
	go func() { _ = room.Run(roomCtx) }()

	deps := testDeps(stubSnapshotter{})
	deps.PubSub = pubsub
	deps.State = application.NewSnapshotService(room, app)
	srv := httptest.NewServer(Route(deps))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	first, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer first.CloseNow()

	snap1, err := protocol.DecodePayload[protocol.StateSnapshot](readEnvelope(t, ctx, first, protocol.TypeStateSnapshot))
	require.NoError(t, err)
	require.NotEmpty(t, snap1.You)
	assert.Len(t, snap1.Players, 1)

	second, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer second.CloseNow()

	snap2, err := protocol.DecodePayload[protocol.StateSnapshot](readEnvelope(t, ctx, second, protocol.TypeStateSnapshot))
	require.NoError(t, err)
	assert.Len(t, snap2.Players, 2)

	joined, err := protocol.DecodePayload[protocol.PlayerState](readEnvelope(t, ctx, first, protocol.TypePlayerJoined))
	require.NoError(t, err)
	assert.Equal(t, snap2.You, joined.ConnectionID)

	move := protocol.MustEncode(protocol.TypePlayerMove, protocol.Move{Position: game.Position{X: 220, Y: 330}})
	require.NoError(t, second.Write(ctx, websocket.MessageText, move))

	relayed, err := protocol.DecodePayload[protocol.Move](readEnvelope(t, ctx, first, protocol.TypePlayerMove))
	require.NoError(t, err)
	assert.Equal(t, snap2.You, relayed.ConnectionID)
	assert.Equal(t, game.Position{X: 220, Y: 330}, relayed.Position)

	_ = second.Close(websocket.StatusNormalClosure, "bye")
	left, err := protocol.DecodePayload[protocol.PlayerLeft](readEnvelope(t, ctx, first, protocol.TypePlayerLeft))
	require.NoError(t, err)
	assert.Equal(t, snap2.You, left.ConnectionID)

	// HTTP側からも同じ状態が見える
	w := httptest.NewRecorder()
	Route(deps).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got protocol.StateSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Players, 1)
}

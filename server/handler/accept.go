package handler

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	adapterwebsocket "simmer/server/adapter/websocket"
	"simmer/server/domain"
)

type AcceptHandler struct {
	pubsub      domain.PubSub
	roomManager domain.RoomManager
	opts        domain.EndpointOptions
}

func NewAcceptHandler(pubsub domain.PubSub, roomManager domain.RoomManager, opts domain.EndpointOptions) *AcceptHandler {
	return &AcceptHandler{pubsub: pubsub, roomManager: roomManager, opts: opts}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // 開発用: Origin チェックをスキップ
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to accept", "err", err)
		return
	}

	session := domain.NewSession()
	transport := adapterwebsocket.NewTransportFrom(conn)
	connection := domain.NewConnection(session.ID(), transport)
	endpoint, err := domain.NewSessionEndpoint(ctx, session, connection, h.pubsub, h.roomManager, h.opts)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create session endpoint", "err", err)
		connection.Close("initialization failed")
		return
	}
	slog.DebugContext(ctx, "accepted new connection", "sessionID", session.ID(), "remote", r.RemoteAddr)
	if err := endpoint.Run(); err != nil {
		slog.ErrorContext(ctx, "failed to run session endpoint", "sessionID", session.ID(), "err", err)
	}
}

package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"simmer/protocol"
)

var (
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
	// ErrInitializationFailed はセッションエンドポイントの初期化に失敗した場合に返されるエラーです。
	ErrInitializationFailed = errors.New("failed to initialize session endpoint")
)

type EndpointOptions struct {
	HeartbeatInterval time.Duration
	IdleTimeout       time.Duration
	IdleCheckInterval time.Duration
}

func DefaultEndpointOptions() EndpointOptions {
	return EndpointOptions{
		HeartbeatInterval: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		IdleCheckInterval: time.Second,
	}
}

// SessionEndpoint は1接続分の読み書きを担当します。
// ゲーム状態には触れず、受信したメッセージをルームのトピックに流すだけです。
type SessionEndpoint struct {
	ctx    context.Context
	cancel context.CancelFunc

	session     *Session
	connection  *Connection
	pubsub      PubSub
	roomManager RoomManager
	roomID      RoomID // Run開始時にRoomManagerから取得
	opts        EndpointOptions

	ctrlCh  chan endpointEvent // 制御用チャネル
	writeCh chan []byte        // 書き込み用チャネル

	// lifecycle
	closed atomic.Bool
}

func NewSessionEndpoint(ctx context.Context, session *Session, connection *Connection, pubsub PubSub, roomManager RoomManager, opts EndpointOptions) (*SessionEndpoint, error) {
	if session == nil || connection == nil || pubsub == nil || roomManager == nil {
		return nil, ErrInitializationFailed
	}
	if opts.HeartbeatInterval <= 0 || opts.IdleCheckInterval <= 0 {
		return nil, fmt.Errorf("%w: non-positive interval", ErrInitializationFailed)
	}
	ctx, cancel := context.WithCancel(ctx)
	se := &SessionEndpoint{
		ctx:         ctx,
		cancel:      cancel,
		session:     session,
		connection:  connection,
		pubsub:      pubsub,
		roomManager: roomManager,
		opts:        opts,
		ctrlCh:      make(chan endpointEvent, 16),
		writeCh:     make(chan []byte, 1024),
	}
	return se, nil
}

// Run はルームに参加し、接続が閉じるまでブロックします。終了時にはルームから抜けます。
func (se *SessionEndpoint) Run() error {
	defer se.close("endpoint stopped")

	id := se.session.ID()
	roomID, err := se.roomManager.GetRoom(se.ctx, id)
	if err != nil {
		return fmt.Errorf("resolve room: %w", err)
	}
	se.roomID = roomID

	// 自分宛のメッセージを購読してからjoinする
	sessionTopic := SessionTopic(id)
	msgCh := se.pubsub.Subscribe(sessionTopic)
	defer se.pubsub.Unsubscribe(sessionTopic, msgCh)

	roomTopic := RoomTopic(roomID)
	if err := se.pubsub.Publish(se.ctx, roomTopic, Message{Kind: MessageJoin, SessionID: id}); err != nil {
		return fmt.Errorf("join room %s: %w", roomID, err)
	}
	slog.InfoContext(se.ctx, "session joined room", "sessionID", id, "roomID", roomID)
	defer func() {
		// se.ctxはキャンセル済みなので別のcontextで送る
		if err := se.pubsub.Publish(context.Background(), roomTopic, Message{Kind: MessageLeave, SessionID: id}); err != nil {
			slog.Error("failed to publish leave", "sessionID", id, "err", err)
		}
		slog.Info("session left room", "sessionID", id, "roomID", roomID)
	}()

	heartbeat := NewHeartbeatService(se.opts.HeartbeatInterval, id, se.Send)

	eg, ctx := errgroup.WithContext(se.ctx)
	eg.Go(func() error {
		se.ownerLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.readLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.writeLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.subscribeLoop(ctx, msgCh)
		return nil
	})
	eg.Go(func() error {
		heartbeat.Run(ctx)
		return nil
	})
	return eg.Wait()
}

func (se *SessionEndpoint) Send(data []byte) error {
	select {
	case se.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (se *SessionEndpoint) Close(ctx context.Context) {
	se.sendCtrlEvent(ctx, endpointEvent{kind: evClose})
}

func (se *SessionEndpoint) ForceClose() {
	se.close("force close")
}

// ownerLoop は論理セッションの状態を監視し、必要に応じて接続の管理を行います。
func (se *SessionEndpoint) ownerLoop(ctx context.Context) {
	ticker := time.NewTicker(se.opts.IdleCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-se.ctrlCh:
			se.handleControlEvent(ctx, ev)
		case <-ticker.C:
			if idle, reason := se.session.IsIdle(se.opts.IdleTimeout); idle {
				se.handleControlEvent(ctx, endpointEvent{
					kind: evClose,
					err:  fmt.Errorf("idle: %s", reason),
				})
			}
		}
	}
}

func (se *SessionEndpoint) readLoop(ctx context.Context) {
	for {
		data, err := se.connection.Read(ctx)
		if err != nil {
			se.sendCtrlEvent(ctx, endpointEvent{kind: evReadError, err: err})
			return
		}
		se.session.TouchRead()
		se.handleData(ctx, data)
	}
}

func (se *SessionEndpoint) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-se.writeCh:
			if err := se.connection.Write(ctx, data); err != nil {
				se.sendCtrlEvent(ctx, endpointEvent{kind: evWriteError, err: err})
				return
			}
			se.session.TouchWrite()
		}
	}
}

// subscribeLoop はpubsubからのメッセージをwriteChに転送します。
func (se *SessionEndpoint) subscribeLoop(ctx context.Context, msgCh <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			if err := se.Send(msg.Data); err != nil {
				slog.WarnContext(ctx, "subscribeLoop: writeCh full, message dropped", "sessionID", se.session.ID())
			}
		}
	}
}

func (se *SessionEndpoint) close(reason string) {
	if !se.closed.CompareAndSwap(false, true) {
		return
	}
	se.cancel()
	se.session.Close()
	se.connection.Close(reason)
}

func (se *SessionEndpoint) handleData(ctx context.Context, data []byte) {
	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		slog.WarnContext(ctx, "failed to decode envelope", "sessionID", se.session.ID(), "err", err)
		return
	}
	switch env.T {
	case protocol.TypePong:
		se.sendCtrlEvent(ctx, endpointEvent{kind: evPong})
	case protocol.TypePing:
		// クライアント側のpingは読み込み時刻の更新だけで十分
	default:
		if err := se.pubsub.Publish(ctx, RoomTopic(se.roomID), Message{
			Kind:      MessageData,
			SessionID: se.session.ID(),
			Data:      data,
		}); err != nil {
			slog.WarnContext(ctx, "failed to forward message to room", "sessionID", se.session.ID(), "type", env.T, "err", err)
		}
	}
}

// handleControlEvent は制御チャネルからのイベントを処理し論理セッションの状態を更新する唯一の関数です。
func (se *SessionEndpoint) handleControlEvent(ctx context.Context, ev endpointEvent) {
	switch ev.kind {
	case evPong:
		se.session.TouchPong()
	case evClose, evReadError, evWriteError:
		if ev.err != nil {
			slog.InfoContext(ctx, "closing session", "sessionID", se.session.ID(), "event", ev.kind, "err", ev.err)
		}
		se.close(ev.kind.String())
	default:
		slog.WarnContext(ctx, "unknown endpoint event kind", "kind", ev.kind)
	}
}

func (se *SessionEndpoint) sendCtrlEvent(ctx context.Context, ev endpointEvent) {
	select {
	case se.ctrlCh <- ev:
	case <-ctx.Done():
	}
}

package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type RoomID string

func (id RoomID) String() string { return string(id) }
func (id RoomID) IsEmpty() bool  { return id == "" }

var ErrRoomBusy = errors.New("room task channel is full")

// Room は1つのキッチンを1つのゴルーチンで回します。
// セッションからのメッセージとtickはすべてRunの中で逐次処理されるため、
// Applicationの状態を書き換えるのはこのゴルーチンだけです。
type Room struct {
	ID       RoomID
	sessions map[SessionID]struct{}

	pubsub      PubSub
	application Application

	taskCh chan func(context.Context)

	tickInterval time.Duration
}

func NewRoom(id RoomID, pubsub PubSub, application Application, tickInterval time.Duration) *Room {
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	return &Room{
		ID:           id,
		sessions:     make(map[SessionID]struct{}),
		pubsub:       pubsub,
		application:  application,
		taskCh:       make(chan func(context.Context), 64),
		tickInterval: tickInterval,
	}
}

func (r *Room) Run(ctx context.Context) error {
	roomTopic := RoomTopic(r.ID)
	msgCh := r.pubsub.Subscribe(roomTopic)
	defer r.pubsub.Unsubscribe(roomTopic, msgCh)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "room started", "roomID", r.ID, "tick", r.tickInterval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgCh:
			if !ok {
				return nil
			}
			r.handleMessage(ctx, msg)
		case task := <-r.taskCh:
			task(ctx)
		case <-ticker.C:
			r.deliver(ctx, r.application.Tick(ctx, r.tickInterval))
		}
	}
}

// Do はfnをルームのゴルーチンで実行し、終わるまで待ちます。
func (r *Room) Do(ctx context.Context, fn func(ctx context.Context)) error {
	done := make(chan struct{})
	task := func(ctx context.Context) {
		defer close(done)
		fn(ctx)
	}
	select {
	case r.taskCh <- task:
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrRoomBusy
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) handleMessage(ctx context.Context, msg Message) {
	switch msg.Kind {
	case MessageJoin:
		if _, ok := r.sessions[msg.SessionID]; ok {
			return
		}
		r.sessions[msg.SessionID] = struct{}{}
		r.deliver(ctx, r.application.Join(ctx, msg.SessionID))
	case MessageLeave:
		if _, ok := r.sessions[msg.SessionID]; !ok {
			return
		}
		delete(r.sessions, msg.SessionID)
		r.deliver(ctx, r.application.Leave(ctx, msg.SessionID))
	case MessageData:
		if _, ok := r.sessions[msg.SessionID]; !ok {
			slog.WarnContext(ctx, "room: message from session not in room", "sessionID", msg.SessionID)
			return
		}
		deliveries, err := r.application.HandleMessage(ctx, msg.SessionID, msg.Data)
		if err != nil {
			slog.WarnContext(ctx, "room handle message failed", "sessionID", msg.SessionID, "err", err)
		}
		r.deliver(ctx, deliveries)
	default:
		slog.WarnContext(ctx, "room: unknown message kind", "kind", msg.Kind)
	}
}

func (r *Room) deliver(ctx context.Context, deliveries []Delivery) {
	for _, d := range deliveries {
		switch d.Scope {
		case ScopeAll:
			for id := range r.sessions {
				r.send(ctx, id, d.Data)
			}
		case ScopeOthers:
			for id := range r.sessions {
				if id != d.SessionID {
					r.send(ctx, id, d.Data)
				}
			}
		case ScopeOne:
			if _, ok := r.sessions[d.SessionID]; ok {
				r.send(ctx, d.SessionID, d.Data)
			}
		}
	}
}

func (r *Room) send(ctx context.Context, id SessionID, data []byte) {
	// 満杯時のログはPubSub側で出している
	_ = r.pubsub.Publish(ctx, SessionTopic(id), Message{SessionID: id, Data: data})
}

// SessionCount はルームのゴルーチン以外から呼ぶときはDoの中で使ってください。
func (r *Room) SessionCount() int {
	return len(r.sessions)
}

package domain

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrTopicFull = errors.New("subscriber channel is full, message dropped")

type Topic string

func SessionTopic(id SessionID) Topic { return Topic("session:" + id.String()) }
func RoomTopic(id RoomID) Topic       { return Topic("room:" + id.String()) }

type MessageKind uint8

const (
	MessageData MessageKind = iota
	MessageJoin
	MessageLeave
)

type Message struct {
	Kind      MessageKind
	SessionID SessionID
	Data      []byte
}

//go:generate go tool mockgen -destination=./mocks/pubsub_mock.go -package=mocks . PubSub

// PubSub はセッションとルームの間のメッセージ配送を担当します。
type PubSub interface {
	Subscribe(topic Topic) <-chan Message
	Unsubscribe(topic Topic, ch <-chan Message)
	Publish(ctx context.Context, topic Topic, msg Message) error
}

type SimplePubSub struct {
	mu     sync.RWMutex
	subs   map[Topic][]chan Message
	buffer int
}

var _ PubSub = (*SimplePubSub)(nil)

func NewSimplePubSub() *SimplePubSub {
	return &SimplePubSub{
		subs:   make(map[Topic][]chan Message),
		buffer: 1024,
	}
}

func (p *SimplePubSub) Subscribe(topic Topic) <-chan Message {
	ch := make(chan Message, p.buffer)
	p.mu.Lock()
	p.subs[topic] = append(p.subs[topic], ch)
	p.mu.Unlock()
	return ch
}

func (p *SimplePubSub) Unsubscribe(topic Topic, ch <-chan Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := p.subs[topic]
	for i, sub := range subs {
		if sub == ch {
			p.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(p.subs[topic]) == 0 {
		delete(p.subs, topic)
	}
}

// Publish はブロックしません。購読者のチャネルが満杯ならそのメッセージは捨てます。
func (p *SimplePubSub) Publish(ctx context.Context, topic Topic, msg Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var err error
	for _, ch := range p.subs[topic] {
		select {
		case ch <- msg:
		default:
			slog.WarnContext(ctx, "pubsub: subscriber full, message dropped", "topic", topic, "sessionID", msg.SessionID)
			err = ErrTopicFull
		}
	}
	return err
}

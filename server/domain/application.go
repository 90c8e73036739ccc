package domain

import (
	"context"
	"time"
)

type Scope uint8

const (
	// ScopeAll はルームの全セッションに送ります。
	ScopeAll Scope = iota
	// ScopeOthers はSessionID以外の全セッションに送ります。
	ScopeOthers
	// ScopeOne はSessionIDだけに送ります。
	ScopeOne
)

// Delivery はアプリケーションが返す送信指示です。Roomが宛先を解決して配送します。
type Delivery struct {
	Scope     Scope
	SessionID SessionID
	Data      []byte
}

func ToAll(data []byte) Delivery { return Delivery{Scope: ScopeAll, Data: data} }
func ToOthers(except SessionID, data []byte) Delivery {
	return Delivery{Scope: ScopeOthers, SessionID: except, Data: data}
}
func ToOne(id SessionID, data []byte) Delivery {
	return Delivery{Scope: ScopeOne, SessionID: id, Data: data}
}

//go:generate go tool mockgen -destination=./mocks/application_mock.go -package=mocks . Application

// Application はルームのゴルーチンからだけ呼ばれます。実装はロックを持つ必要がありません。
type Application interface {
	Join(ctx context.Context, sessionID SessionID) []Delivery
	Leave(ctx context.Context, sessionID SessionID) []Delivery
	HandleMessage(ctx context.Context, sessionID SessionID, data []byte) ([]Delivery, error)
	Tick(ctx context.Context, elapsed time.Duration) []Delivery
}

package application

import (
	"simmer/game"
	"simmer/protocol"
	"simmer/server/domain"
)

// State はキッチン1つ分の共有状態です。ルームのゴルーチンだけが書き換えます。
type State struct {
	Players     map[domain.SessionID]*game.Player
	Ingredients []*game.Ingredient
	Orders      []game.Order
	Score       int

	nextOrderID int64
	joined      int
}

func NewState() *State {
	return &State{
		Players: make(map[domain.SessionID]*game.Player),
	}
}

// AddScore はスコアを加減します。0未満にはなりません。
func (s *State) AddScore(delta int) {
	s.Score = max(0, s.Score+delta)
}

func (s *State) NextOrderID() int64 {
	s.nextOrderID++
	return s.nextOrderID
}

// Snapshot は参加直後のクライアントに送る全体像を作ります。youが空なら自分の情報を含めません。
func (s *State) Snapshot(you domain.SessionID) protocol.StateSnapshot {
	players := make(map[string]protocol.PlayerState, len(s.Players))
	for id, p := range s.Players {
		players[id.String()] = playerState(p)
	}
	return protocol.StateSnapshot{
		You:         you.String(),
		Players:     players,
		Ingredients: protocol.FromIngredients(s.Ingredients),
		Orders:      protocol.FromOrders(s.Orders),
		Score:       s.Score,
	}
}

func playerState(p *game.Player) protocol.PlayerState {
	return protocol.PlayerState{
		ID:           p.ID,
		ConnectionID: p.ConnectionID,
		Position:     p.Position,
		Color:        p.Color,
		HeldItem:     protocol.FromHeld(p.Held),
	}
}

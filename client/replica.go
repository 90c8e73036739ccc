package client

import (
	"fmt"
	"maps"
	"slices"

	"simmer/game"
	"simmer/protocol"
)

// Replica はサーバーから受け取った状態のローカルコピーです。
// 他プレイヤーは差分で更新し、食材、注文、スコアは受信のたびに全件置き換えます。
type Replica struct {
	self        string
	selfState   *protocol.PlayerState
	remote      map[string]*game.Player
	Ingredients []*game.Ingredient
	Orders      []game.Order
	Score       int

	tuning game.PlayerTuning
}

func NewReplica(tuning game.PlayerTuning) *Replica {
	return &Replica{
		remote: make(map[string]*game.Player),
		tuning: tuning,
	}
}

// Self はサーバーが払い出した自分の接続IDです。スナップショット受信前は空です。
func (r *Replica) Self() string { return r.self }

// SelfState は直近のスナップショットに含まれていた自分の情報を返します。
func (r *Replica) SelfState() (protocol.PlayerState, bool) {
	if r.selfState == nil {
		return protocol.PlayerState{}, false
	}
	return *r.selfState, true
}

func (r *Replica) Remote(connectionID string) (*game.Player, bool) {
	p, ok := r.remote[connectionID]
	return p, ok
}

// RemotePlayers は接続ID順に並べた他プレイヤーです。
func (r *Replica) RemotePlayers() []*game.Player {
	ids := slices.Sorted(maps.Keys(r.remote))
	out := make([]*game.Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.remote[id])
	}
	return out
}

// Apply はサーバーからのメッセージを1件反映します。
// 知らない種別はprotocol.ErrUnknownTypeを返します。
func (r *Replica) Apply(env protocol.Envelope) error {
	switch env.T {
	case protocol.TypeStateSnapshot:
		msg, err := protocol.DecodePayload[protocol.StateSnapshot](env)
		if err != nil {
			return err
		}
		r.applySnapshot(msg)
	case protocol.TypePlayerJoined:
		msg, err := protocol.DecodePayload[protocol.PlayerState](env)
		if err != nil {
			return err
		}
		if msg.ConnectionID == "" || msg.ConnectionID == r.self {
			return nil
		}
		r.remote[msg.ConnectionID] = r.playerFrom(msg)
	case protocol.TypePlayerLeft:
		msg, err := protocol.DecodePayload[protocol.PlayerLeft](env)
		if err != nil {
			return err
		}
		delete(r.remote, msg.ConnectionID)
	case protocol.TypePlayerMove:
		msg, err := protocol.DecodePayload[protocol.Move](env)
		if err != nil {
			return err
		}
		if p, ok := r.remote[msg.ConnectionID]; ok {
			p.Position = msg.Position
		}
	case protocol.TypePlayerItemUpdate:
		msg, err := protocol.DecodePayload[protocol.ItemUpdate](env)
		if err != nil {
			return err
		}
		if p, ok := r.remote[msg.ConnectionID]; ok {
			p.Held = msg.Item.ToGame()
		}
	case protocol.TypeIngredientListUpdate:
		msg, err := protocol.DecodePayload[protocol.IngredientList](env)
		if err != nil {
			return err
		}
		r.Ingredients = protocol.ToIngredients(msg.Ingredients)
	case protocol.TypeOrderListUpdate:
		msg, err := protocol.DecodePayload[protocol.OrderList](env)
		if err != nil {
			return err
		}
		r.Orders = protocol.ToOrders(msg.Orders)
	case protocol.TypeScoreUpdate:
		msg, err := protocol.DecodePayload[protocol.Score](env)
		if err != nil {
			return err
		}
		r.Score = msg.Score
	default:
		return fmt.Errorf("%w: %q", protocol.ErrUnknownType, env.T)
	}
	return nil
}

func (r *Replica) applySnapshot(msg protocol.StateSnapshot) {
	r.self = msg.You
	r.selfState = nil
	clear(r.remote)
	for id, ps := range msg.Players {
		if id == r.self {
			s := ps
			r.selfState = &s
			continue
		}
		r.remote[id] = r.playerFrom(ps)
	}
	r.Ingredients = protocol.ToIngredients(msg.Ingredients)
	r.Orders = protocol.ToOrders(msg.Orders)
	r.Score = msg.Score
}

func (r *Replica) playerFrom(ps protocol.PlayerState) *game.Player {
	p := game.NewPlayer(ps.ID, ps.Position, ps.Color, r.tuning)
	p.ConnectionID = ps.ConnectionID
	p.Held = ps.HeldItem.ToGame()
	return p
}

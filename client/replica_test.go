package client

import (
	"errors"
	"testing"

	"simmer/game"
	"simmer/protocol"
)

func TestReplica_SnapshotSkipsSelf(t *testing.T) {
	r := NewReplica(game.DefaultTuning().Player)
	err := r.Apply(envelope(t, protocol.TypeStateSnapshot, protocol.StateSnapshot{
		You: "me",
		Players: map[string]protocol.PlayerState{
			"me":    {ID: "Player1", ConnectionID: "me"},
			"other": {ID: "Player2", ConnectionID: "other", Position: game.Position{X: 5, Y: 6}},
		},
		Ingredients: []protocol.Ingredient{{Type: game.Tomato, State: game.Raw}},
		Score:       15,
	}))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if r.Self() != "me" {
		t.Errorf("Self = %q", r.Self())
	}
	if _, ok := r.Remote("me"); ok {
		t.Errorf("self stored as remote player")
	}
	if p, ok := r.Remote("other"); !ok || p.Position != (game.Position{X: 5, Y: 6}) {
		t.Errorf("other = %+v", p)
	}
	if self, ok := r.SelfState(); !ok || self.ID != "Player1" {
		t.Errorf("SelfState = %+v, %v", self, ok)
	}
	if len(r.Ingredients) != 1 || r.Score != 15 {
		t.Errorf("ingredients = %d, score = %d", len(r.Ingredients), r.Score)
	}
}

func TestReplica_IncrementalPlayerUpdates(t *testing.T) {
	r := NewReplica(game.DefaultTuning().Player)
	mustApply := func(typ string, payload any) {
		t.Helper()
		if err := r.Apply(envelope(t, typ, payload)); err != nil {
			t.Fatalf("Apply %s: %v", typ, err)
		}
	}
	mustApply(protocol.TypeStateSnapshot, protocol.StateSnapshot{You: "me", Players: map[string]protocol.PlayerState{}})

	mustApply(protocol.TypePlayerJoined, protocol.PlayerState{ID: "Player2", ConnectionID: "b", Position: game.Position{X: 450, Y: 300}})
	mustApply(protocol.TypePlayerMove, protocol.Move{ConnectionID: "b", Position: game.Position{X: 100, Y: 200}})
	mustApply(protocol.TypePlayerItemUpdate, protocol.ItemUpdate{ConnectionID: "b", Item: protocol.FromHeld(heldIngredient(game.Lettuce, game.Chopped))})

	p, ok := r.Remote("b")
	if !ok {
		t.Fatalf("joined player missing")
	}
	if p.Position != (game.Position{X: 100, Y: 200}) || p.Held.Kind() != game.HeldIngredient {
		t.Errorf("player = %+v", p)
	}

	// 自分の参加通知と知らない接続の移動は無視する
	mustApply(protocol.TypePlayerJoined, protocol.PlayerState{ConnectionID: "me"})
	mustApply(protocol.TypePlayerMove, protocol.Move{ConnectionID: "ghost"})
	if len(r.RemotePlayers()) != 1 {
		t.Errorf("remote players = %d, want 1", len(r.RemotePlayers()))
	}

	mustApply(protocol.TypePlayerLeft, protocol.PlayerLeft{ConnectionID: "b"})
	if _, ok := r.Remote("b"); ok {
		t.Errorf("player not removed on leave")
	}
}

func TestReplica_ListsAreReplaced(t *testing.T) {
	r := NewReplica(game.DefaultTuning().Player)
	r.Ingredients = []*game.Ingredient{{Type: game.Cheese}, {Type: game.Bread}}
	r.Orders = []game.Order{{ID: 1}, {ID: 2}}

	if err := r.Apply(envelope(t, protocol.TypeIngredientListUpdate, protocol.IngredientList{Ingredients: []protocol.Ingredient{{Type: game.Tomato}}})); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := r.Apply(envelope(t, protocol.TypeOrderListUpdate, protocol.OrderList{Orders: []protocol.Order{{ID: 7, MaxTime: 120000, TimeRemaining: 1000}}})); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := r.Apply(envelope(t, protocol.TypeScoreUpdate, protocol.Score{Score: 3})); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(r.Ingredients) != 1 || r.Ingredients[0].Type != game.Tomato {
		t.Errorf("ingredients = %+v", r.Ingredients)
	}
	if len(r.Orders) != 1 || r.Orders[0].ID != 7 || r.Orders[0].TimeRemaining.Milliseconds() != 1000 {
		t.Errorf("orders = %+v", r.Orders)
	}
	if r.Score != 3 {
		t.Errorf("score = %d", r.Score)
	}
}

func TestReplica_UnknownType(t *testing.T) {
	r := NewReplica(game.DefaultTuning().Player)
	err := r.Apply(envelope(t, "mystery", protocol.Score{}))
	if !errors.Is(err, protocol.ErrUnknownType) {
		t.Errorf("err = %v, want %v", err, protocol.ErrUnknownType)
	}
}

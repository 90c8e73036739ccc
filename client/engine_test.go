package client

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"simmer/game"
	"simmer/protocol"
)

type sentMessage struct {
	t       string
	payload any
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, t string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{t: t, payload: payload})
	return nil
}

func (f *fakeSender) types() []string {
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.t)
	}
	return out
}

func envelope(t *testing.T, typ string, payload any) protocol.Envelope {
	t.Helper()
	env, err := protocol.DecodeEnvelope(protocol.MustEncode(typ, payload))
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	return env
}

// newReadyEngine は自分がposに立っている状態のスナップショットを受け取ったエンジンを返します。
func newReadyEngine(t *testing.T, mode SyncMode, pos game.Position, held game.HeldItem, edit func(*protocol.StateSnapshot)) (*Engine, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	e := NewEngine(game.DefaultTuning(), game.DefaultLayout(), mode, sender, rand.New(rand.NewPCG(1, 2)))
	snap := protocol.StateSnapshot{
		You: "me",
		Players: map[string]protocol.PlayerState{
			"me": {ID: "Player1", ConnectionID: "me", Position: pos, Color: "#ff6b6b", HeldItem: protocol.FromHeld(held)},
		},
	}
	if edit != nil {
		edit(&snap)
	}
	if err := e.Apply(context.Background(), envelope(t, protocol.TypeStateSnapshot, snap)); err != nil {
		t.Fatalf("Apply snapshot: %v", err)
	}
	return e, sender
}

func heldIngredient(typ game.IngredientType, state game.IngredientState) game.HeldItem {
	return game.HoldIngredient(&game.Ingredient{Type: typ, State: state})
}

func TestEngine_IdleUntilSnapshot(t *testing.T) {
	sender := &fakeSender{}
	e := NewEngine(game.DefaultTuning(), game.DefaultLayout(), SyncSnapshot, sender, nil)

	if err := e.Update(context.Background(), 100*time.Millisecond, Input{Right: true, Interact: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(sender.sent) != 0 || e.Ready() {
		t.Errorf("sent %v before joining", sender.types())
	}
}

func TestEngine_SnapshotPlacesLocalPlayer(t *testing.T) {
	e, _ := newReadyEngine(t, SyncSnapshot, game.Position{X: 450, Y: 300}, heldIngredient(game.Cheese, game.Raw), func(s *protocol.StateSnapshot) {
		s.Players["other"] = protocol.PlayerState{ID: "Player2", ConnectionID: "other", Position: game.Position{X: 10, Y: 10}}
		s.Score = 40
	})

	local := e.Local()
	if local.ID != "Player1" || local.Position != (game.Position{X: 450, Y: 300}) || local.Held.Kind() != game.HeldIngredient {
		t.Errorf("local = %+v", local)
	}
	f := e.Frame()
	if len(f.Remote) != 1 || f.Remote[0].ConnectionID != "other" || f.Score != 40 {
		t.Errorf("frame = %+v", f)
	}
}

func TestEngine_MoveSendsPosition(t *testing.T) {
	e, sender := newReadyEngine(t, SyncSnapshot, game.Position{X: 400, Y: 300}, game.HeldItem{}, nil)
	ctx := context.Background()

	if err := e.Update(ctx, 100*time.Millisecond, Input{Right: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := e.Update(ctx, 100*time.Millisecond, Input{}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0].t != protocol.TypePlayerMove {
		t.Fatalf("sent = %v, want one move", sender.types())
	}
	move := sender.sent[0].payload.(protocol.Move)
	if move.Position != (game.Position{X: 415, Y: 300}) {
		t.Errorf("move = %+v", move.Position)
	}
}

func TestEngine_CooksPoolWithSyntheticDeltas(t *testing.T) {
	e, _ := newReadyEngine(t, SyncSnapshot, game.Position{X: 400, Y: 300}, game.HeldItem{}, func(s *protocol.StateSnapshot) {
		s.Ingredients = []protocol.Ingredient{{Type: game.Bread, State: game.Chopped, Position: game.Position{X: 140, Y: 120}}}
	})

	for range 19 {
		_ = e.Update(context.Background(), time.Second, Input{})
	}
	if got := e.Frame().Ingredients[0].State; got != game.Chopped {
		t.Fatalf("state after 19s = %s", got)
	}
	_ = e.Update(context.Background(), time.Second, Input{})
	if got := e.Frame().Ingredients[0].State; got != game.Cooked {
		t.Errorf("state after 20s = %s, want cooked", got)
	}
}

func TestEngine_InteractionCooldown(t *testing.T) {
	// 皿置き場の中央
	e, sender := newReadyEngine(t, SyncSnapshot, game.Position{X: 530, Y: 120}, game.HeldItem{}, nil)
	ctx := context.Background()
	press := Input{Interact: true}

	_ = e.Update(ctx, 16*time.Millisecond, press)
	if e.Local().Held.Kind() != game.HeldPlate {
		t.Fatalf("held = %s, want plate", e.Local().Held.Kind())
	}
	_ = e.Update(ctx, 100*time.Millisecond, press)
	_ = e.Update(ctx, 100*time.Millisecond, press)
	if e.Local().Held.Kind() != game.HeldPlate {
		t.Fatalf("interaction fired during cooldown")
	}
	_ = e.Update(ctx, 100*time.Millisecond, press)
	if !e.Local().Held.IsEmpty() {
		t.Errorf("plate not returned after cooldown")
	}
	if len(sender.sent) != 2 {
		t.Errorf("sent = %v, want two item updates", sender.types())
	}
}

func TestEngine_StartCookingSnapshotMode(t *testing.T) {
	e, sender := newReadyEngine(t, SyncSnapshot, game.Position{X: 140, Y: 120}, heldIngredient(game.Bread, game.Chopped), nil)

	if err := e.Update(context.Background(), 16*time.Millisecond, Input{Interact: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []string{protocol.TypePlayerItemUpdate, protocol.TypeIngredientListUpdate}
	if got := sender.types(); !equalTypes(got, want) {
		t.Fatalf("sent = %v, want %v", got, want)
	}
	list := sender.sent[1].payload.(protocol.IngredientList)
	if len(list.Ingredients) != 1 || list.Ingredients[0].Position != (game.Position{X: 140, Y: 120}) {
		t.Errorf("list = %+v", list)
	}
	if item := sender.sent[0].payload.(protocol.ItemUpdate); item.Item != nil {
		t.Errorf("item update = %+v, want empty hands", item.Item)
	}
}

func TestEngine_StartCookingIntentMode(t *testing.T) {
	e, sender := newReadyEngine(t, SyncIntent, game.Position{X: 140, Y: 120}, heldIngredient(game.Bread, game.Chopped), nil)

	if err := e.Update(context.Background(), 16*time.Millisecond, Input{Interact: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []string{protocol.TypePlayerItemUpdate, protocol.TypeIngredientPlace}
	if got := sender.types(); !equalTypes(got, want) {
		t.Fatalf("sent = %v, want %v", got, want)
	}
	place := sender.sent[1].payload.(protocol.IngredientPlace)
	if place.Ingredient.Type != game.Bread || place.Ingredient.State != game.Chopped {
		t.Errorf("place = %+v", place)
	}
}

func TestEngine_RetrieveIntentModeRejected(t *testing.T) {
	slot := game.Position{X: 140, Y: 120}
	e, sender := newReadyEngine(t, SyncIntent, slot, game.HeldItem{}, func(s *protocol.StateSnapshot) {
		s.Ingredients = []protocol.Ingredient{{Type: game.Bread, State: game.Cooked, Position: slot}}
	})
	ctx := context.Background()

	if err := e.Update(ctx, 16*time.Millisecond, Input{Interact: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []string{protocol.TypePlayerItemUpdate, protocol.TypeIngredientTake}
	if got := sender.types(); !equalTypes(got, want) {
		t.Fatalf("sent = %v, want %v", got, want)
	}
	if take := sender.sent[1].payload.(protocol.IngredientTake); take.Position != slot {
		t.Errorf("take = %+v", take)
	}

	// 他のクライアントが先に取っていた
	if err := e.Apply(ctx, envelope(t, protocol.TypeIngredientTakeResult, protocol.IngredientTakeResult{OK: false})); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !e.Local().Held.IsEmpty() {
		t.Errorf("held ingredient kept after rejected take")
	}
	last := sender.sent[len(sender.sent)-1]
	if last.t != protocol.TypePlayerItemUpdate || last.payload.(protocol.ItemUpdate).Item != nil {
		t.Errorf("last sent = %+v", last)
	}
}

func TestEngine_RetrieveIntentModeConfirmed(t *testing.T) {
	slot := game.Position{X: 140, Y: 120}
	e, _ := newReadyEngine(t, SyncIntent, slot, game.HeldItem{}, func(s *protocol.StateSnapshot) {
		s.Ingredients = []protocol.Ingredient{{Type: game.Bread, State: game.Chopped, Position: slot}}
	})
	ctx := context.Background()
	_ = e.Update(ctx, 16*time.Millisecond, Input{Interact: true})

	// サーバー側ではすでに焼けていた
	cooked := protocol.Ingredient{Type: game.Bread, State: game.Cooked, Position: slot}
	if err := e.Apply(ctx, envelope(t, protocol.TypeIngredientTakeResult, protocol.IngredientTakeResult{OK: true, Ingredient: &cooked})); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ing, ok := e.Local().Held.Ingredient()
	if !ok || ing.State != game.Cooked {
		t.Errorf("held = %+v", e.Local().Held)
	}
}

func TestEngine_ServeSendsCompletion(t *testing.T) {
	e, sender := newReadyEngine(t, SyncSnapshot, game.Position{X: 340, Y: 120}, heldIngredient(game.Tomato, game.Chopped), func(s *protocol.StateSnapshot) {
		s.Orders = []protocol.Order{{ID: 3, Items: []game.OrderItem{{Type: game.Tomato, State: game.Chopped}}, TimeRemaining: 60000, MaxTime: 120000, Points: 77}}
	})

	if err := e.Update(context.Background(), 16*time.Millisecond, Input{Interact: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []string{protocol.TypePlayerItemUpdate, protocol.TypeOrderCompletion}
	if got := sender.types(); !equalTypes(got, want) {
		t.Fatalf("sent = %v, want %v", got, want)
	}
	if c := sender.sent[1].payload.(protocol.OrderCompletion); c.OrderID != 3 || c.Points != 77 {
		t.Errorf("completion = %+v", c)
	}
	if len(e.Frame().Orders) != 0 {
		t.Errorf("order still listed locally")
	}
}

func TestEngine_ServeMismatchIsNoop(t *testing.T) {
	e, sender := newReadyEngine(t, SyncSnapshot, game.Position{X: 340, Y: 120}, heldIngredient(game.Tomato, game.Chopped), func(s *protocol.StateSnapshot) {
		s.Orders = []protocol.Order{{ID: 1, Items: []game.OrderItem{{Type: game.Bread, State: game.Cooked}}, TimeRemaining: 60000, MaxTime: 120000, Points: 50}}
		s.Score = 20
	})

	if err := e.Update(context.Background(), 16*time.Millisecond, Input{Interact: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent = %v, want nothing", sender.types())
	}
	f := e.Frame()
	if len(f.Orders) != 1 || f.Score != 20 || f.Local.Held.Kind() != game.HeldIngredient {
		t.Errorf("frame changed: %+v", f)
	}
}

func TestEngine_SendFailureIsReturned(t *testing.T) {
	e, sender := newReadyEngine(t, SyncSnapshot, game.Position{X: 400, Y: 300}, game.HeldItem{}, nil)
	boom := errors.New("connection lost")
	sender.err = boom

	if err := e.Update(context.Background(), 100*time.Millisecond, Input{Left: true}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestInput_Direction(t *testing.T) {
	if d := (Input{Left: true, Right: true}).Direction(); d.X != 0 {
		t.Errorf("opposite keys = %+v", d)
	}
	if d := (Input{Up: true, Right: true}).Direction(); d != (game.Direction{X: 1, Y: -1}) {
		t.Errorf("up-right = %+v", d)
	}
}

func equalTypes(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

package game

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestPlayer_PickupWhileHoldingIsNoop(t *testing.T) {
	p := NewPlayer("Player1", Position{X: 100, Y: 100}, "#ff6b6b", DefaultTuning().Player)
	first := NewIngredient(Tomato, p.Position)
	if !p.PickupItem(HoldIngredient(first)) {
		t.Fatalf("pickup with empty hands refused")
	}
	if p.PickupItem(HoldPlate(NewPlate(p.Position))) {
		t.Fatalf("pickup while holding accepted")
	}
	got, ok := p.Held.Ingredient()
	if !ok || got != first {
		t.Errorf("held item changed: %+v", p.Held)
	}
}

func TestPlayer_DropReturnsItem(t *testing.T) {
	p := NewPlayer("Player1", Position{}, "", DefaultTuning().Player)
	plate := NewPlate(Position{})
	p.PickupItem(HoldPlate(plate))

	dropped := p.DropItem()
	if got, ok := dropped.Plate(); !ok || got != plate {
		t.Errorf("DropItem = %+v, want plate", dropped)
	}
	if !p.Held.IsEmpty() {
		t.Errorf("hands not empty after drop")
	}
}

func TestPlayer_MoveClampsToBounds(t *testing.T) {
	tuning := DefaultTuning()
	rapid.Check(t, func(t *rapid.T) {
		p := NewPlayer("p", Position{X: 400, Y: 300}, "", tuning.Player)
		for range rapid.IntRange(1, 50).Draw(t, "frames") {
			dir := Direction{
				X: float64(rapid.IntRange(-1, 1).Draw(t, "dx")),
				Y: float64(rapid.IntRange(-1, 1).Draw(t, "dy")),
			}
			p.Move(dir, time.Duration(rapid.IntRange(0, 2000).Draw(t, "ms"))*time.Millisecond, tuning.Canvas)
			half := p.Size / 2
			if p.Position.X < half || p.Position.X > tuning.Canvas.W-half ||
				p.Position.Y < half || p.Position.Y > tuning.Canvas.H-half {
				t.Fatalf("position %+v outside bounds", p.Position)
			}
		}
	})
}

func TestPlayer_MoveUsesSpeed(t *testing.T) {
	tuning := DefaultTuning()
	p := NewPlayer("p", Position{X: 400, Y: 300}, "", tuning.Player)
	p.Move(Direction{X: 1}, time.Second, tuning.Canvas)
	if p.Position.X != 550 {
		t.Errorf("X = %v, want 550", p.Position.X)
	}
}

package game

import (
	"math"
	"time"
)

// Direction はフレームごとの移動入力です。各軸 -1, 0, 1 を想定しています。
type Direction struct {
	X, Y float64
}

type Player struct {
	ID           string
	ConnectionID string
	Position     Position
	Size         float64
	Speed        float64
	Color        string
	Held         HeldItem
}

func NewPlayer(id string, pos Position, color string, t PlayerTuning) *Player {
	return &Player{
		ID:       id,
		Position: pos,
		Size:     t.Size,
		Speed:    t.Speed,
		Color:    color,
	}
}

// Move は速度とdeltaから移動し、キッチンの境界内にクランプします。
func (p *Player) Move(dir Direction, delta time.Duration, bounds Size) {
	if dir.X == 0 && dir.Y == 0 {
		return
	}
	length := math.Hypot(dir.X, dir.Y)
	step := p.Speed * delta.Seconds()
	p.SetPosition(Position{
		X: p.Position.X + dir.X/length*step,
		Y: p.Position.Y + dir.Y/length*step,
	}, bounds)
}

// SetPosition は位置を境界内にクランプして設定します。
func (p *Player) SetPosition(pos Position, bounds Size) {
	half := p.Size / 2
	p.Position = Position{
		X: clamp(pos.X, half, bounds.W-half),
		Y: clamp(pos.Y, half, bounds.H-half),
	}
}

// PickupItem は手が空いているときだけ持たせます。
func (p *Player) PickupItem(item HeldItem) bool {
	if !p.Held.IsEmpty() || item.IsEmpty() {
		return false
	}
	p.Held = item
	return true
}

func (p *Player) DropItem() HeldItem {
	item := p.Held
	p.Held = HeldItem{}
	return item
}

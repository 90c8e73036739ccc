package game

import "math"

// Position はキッチン上の座標(px)です。
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Near は各軸の差がwindow未満かどうかを返します。
func (p Position) Near(o Position, window float64) bool {
	return math.Abs(p.X-o.X) < window && math.Abs(p.Y-o.Y) < window
}

type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

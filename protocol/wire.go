package protocol

import (
	"time"

	"simmer/game"
)

// 時間はすべてミリ秒で送ります。

type Ingredient struct {
	Type        game.IngredientType  `json:"type"`
	State       game.IngredientState `json:"state"`
	Position    game.Position        `json:"position"`
	CookingTime int64                `json:"cookingTime"`
}

type Plate struct {
	Position game.Position    `json:"position"`
	Items    []game.OrderItem `json:"ingredients"`
}

type Order struct {
	ID            int64            `json:"id"`
	Items         []game.OrderItem `json:"items"`
	TimeRemaining int64            `json:"timeRemaining"`
	MaxTime       int64            `json:"maxTime"`
	Points        int              `json:"points"`
}

type HeldItem struct {
	Kind       string      `json:"kind"`
	Ingredient *Ingredient `json:"ingredient,omitempty"`
	Plate      *Plate      `json:"plate,omitempty"`
}

func FromIngredient(i *game.Ingredient) Ingredient {
	return Ingredient{
		Type:        i.Type,
		State:       i.State,
		Position:    i.Position,
		CookingTime: i.CookingTime.Milliseconds(),
	}
}

func (w Ingredient) ToGame() *game.Ingredient {
	return &game.Ingredient{
		Type:        w.Type,
		State:       w.State,
		Position:    w.Position,
		CookingTime: time.Duration(w.CookingTime) * time.Millisecond,
	}
}

func FromIngredients(pool []*game.Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(pool))
	for _, ing := range pool {
		out = append(out, FromIngredient(ing))
	}
	return out
}

func ToIngredients(list []Ingredient) []*game.Ingredient {
	out := make([]*game.Ingredient, 0, len(list))
	for _, w := range list {
		out = append(out, w.ToGame())
	}
	return out
}

func FromOrder(o game.Order) Order {
	return Order{
		ID:            o.ID,
		Items:         append([]game.OrderItem(nil), o.Items...),
		TimeRemaining: o.TimeRemaining.Milliseconds(),
		MaxTime:       o.MaxTime.Milliseconds(),
		Points:        o.Points,
	}
}

func (w Order) ToGame() game.Order {
	return game.Order{
		ID:            w.ID,
		Items:         append([]game.OrderItem(nil), w.Items...),
		TimeRemaining: time.Duration(w.TimeRemaining) * time.Millisecond,
		MaxTime:       time.Duration(w.MaxTime) * time.Millisecond,
		Points:        w.Points,
	}
}

func FromOrders(orders []game.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}

func ToOrders(list []Order) []game.Order {
	out := make([]game.Order, 0, len(list))
	for _, w := range list {
		out = append(out, w.ToGame())
	}
	return out
}

// FromHeld は何も持っていなければnilを返します。
func FromHeld(h game.HeldItem) *HeldItem {
	switch h.Kind() {
	case game.HeldIngredient:
		ing, _ := h.Ingredient()
		w := FromIngredient(ing)
		return &HeldItem{Kind: game.HeldIngredient.String(), Ingredient: &w}
	case game.HeldPlate:
		p, _ := h.Plate()
		return &HeldItem{Kind: game.HeldPlate.String(), Plate: &Plate{
			Position: p.Position,
			Items:    append([]game.OrderItem(nil), p.Items...),
		}}
	}
	return nil
}

// ToGame は不正な形のものを空の手として扱います。
func (w *HeldItem) ToGame() game.HeldItem {
	if w == nil {
		return game.HeldItem{}
	}
	switch w.Kind {
	case game.HeldIngredient.String():
		if w.Ingredient != nil {
			return game.HoldIngredient(w.Ingredient.ToGame())
		}
	case game.HeldPlate.String():
		if w.Plate != nil {
			return game.HoldPlate(&game.Plate{
				Position: w.Plate.Position,
				Items:    append([]game.OrderItem(nil), w.Plate.Items...),
			})
		}
	}
	return game.HeldItem{}
}

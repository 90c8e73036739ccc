package client

import (
	"math/rand/v2"

	"simmer/game"
)

const wanderChance = 0.02 // 注文がないとき毎フレーム2%の確率でふらつく

// RuleBot は注文を見て、食材を取る、刻む、焼く、出すを繰り返すルールベースの入力です。
// ボットごとに止まる距離が少しずつ違います。
type RuleBot struct {
	resolver *game.Resolver
	rng      *rand.Rand
	window   float64
	Deadband float64 // 目標との差がこれ未満なら止まる
}

func NewRuleBot(tuning game.Tuning, rng *rand.Rand) *RuleBot {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RuleBot{
		resolver: game.NewResolver(tuning, rng),
		rng:      rng,
		window:   tuning.Stove.PickupWindow,
		Deadband: 2 + rng.Float64()*4, // 2〜6
	}
}

func (b *RuleBot) Next(f Frame) Input {
	target, interact, ok := b.plan(f)
	if !ok {
		return b.wander()
	}
	in := b.steer(f.Local.Position, target.Center())
	if !interact {
		return in
	}
	if obj, ok := b.resolver.InRange(&f.Local, f.Objects); ok && obj.ID == target.ID {
		in.Interact = true
	}
	return in
}

// plan は次に向かう設備と、着いたら操作するかどうかを決めます。
func (b *RuleBot) plan(f Frame) (game.KitchenObject, bool, bool) {
	switch f.Local.Held.Kind() {
	case game.HeldPlate:
		obj, ok := findObject(f.Objects, game.PlateStack)
		return obj, true, ok
	case game.HeldIngredient:
		ing, _ := f.Local.Held.Ingredient()
		return b.planHolding(f, ing)
	}

	if stove, ok := findObject(f.Objects, game.Stove); ok {
		slot := b.resolver.StoveSlot(stove)
		if idx := game.FindNear(f.Ingredients, slot, b.window); idx >= 0 {
			switch ing := f.Ingredients[idx]; ing.State {
			case game.Cooked:
				return stove, true, true
			case game.Chopped:
				if wanted(f.Orders, game.OrderItem{Type: ing.Type, State: game.Cooked}) {
					// 焼き上がりを待つ
					return stove, false, true
				}
			}
		}
	}

	want, ok := firstWant(f.Orders)
	if !ok {
		return game.KitchenObject{}, false, false
	}
	box, ok := findBox(f.Objects, want.Type)
	return box, true, ok
}

func (b *RuleBot) planHolding(f Frame, ing *game.Ingredient) (game.KitchenObject, bool, bool) {
	switch ing.State {
	case game.Raw:
		obj, ok := findObject(f.Objects, game.PrepCounter)
		return obj, true, ok
	case game.Chopped:
		if wanted(f.Orders, ing.Item()) {
			obj, ok := findObject(f.Objects, game.ServingCounter)
			return obj, true, ok
		}
		obj, ok := findObject(f.Objects, game.Stove)
		return obj, true, ok
	default:
		// 焼けたものは注文が来るまでカウンターの前で待つ
		obj, ok := findObject(f.Objects, game.ServingCounter)
		return obj, wanted(f.Orders, ing.Item()), ok
	}
}

func (b *RuleBot) steer(from, to game.Position) Input {
	var in Input
	dx, dy := to.X-from.X, to.Y-from.Y
	switch {
	case dx > b.Deadband:
		in.Right = true
	case dx < -b.Deadband:
		in.Left = true
	}
	switch {
	case dy > b.Deadband:
		in.Down = true
	case dy < -b.Deadband:
		in.Up = true
	}
	return in
}

func (b *RuleBot) wander() Input {
	if b.rng.Float64() >= wanderChance {
		return Input{}
	}
	switch b.rng.IntN(4) {
	case 0:
		return Input{Up: true}
	case 1:
		return Input{Down: true}
	case 2:
		return Input{Left: true}
	default:
		return Input{Right: true}
	}
}

func findObject(objects []game.KitchenObject, t game.ObjectType) (game.KitchenObject, bool) {
	for _, o := range objects {
		if o.Type == t && o.Interactable {
			return o, true
		}
	}
	return game.KitchenObject{}, false
}

// findBox はその食材専用の箱を探し、なければ汎用の箱を返します。
func findBox(objects []game.KitchenObject, t game.IngredientType) (game.KitchenObject, bool) {
	for _, o := range objects {
		if kind, ok := o.Type.BoxIngredient(); ok && kind == t && o.Interactable {
			return o, true
		}
	}
	return findObject(objects, game.IngredientBox)
}

func firstWant(orders []game.Order) (game.OrderItem, bool) {
	for _, o := range orders {
		if len(o.Items) == 1 {
			return o.Items[0], true
		}
	}
	return game.OrderItem{}, false
}

func wanted(orders []game.Order, item game.OrderItem) bool {
	for _, o := range orders {
		if len(o.Items) == 1 && o.Items[0] == item {
			return true
		}
	}
	return false
}

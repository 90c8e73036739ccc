package game

import "math/rand/v2"

// Rule は発火したインタラクションの種類です。
type Rule uint8

const (
	RuleNone Rule = iota
	RulePlatePickup
	RulePlateReturn
	RuleIngredientPickup
	RuleChop
	RuleStartCooking
	RuleRetrieve
	RuleServe
)

func (r Rule) String() string {
	switch r {
	case RulePlatePickup:
		return "plate_pickup"
	case RulePlateReturn:
		return "plate_return"
	case RuleIngredientPickup:
		return "ingredient_pickup"
	case RuleChop:
		return "chop"
	case RuleStartCooking:
		return "start_cooking"
	case RuleRetrieve:
		return "retrieve"
	case RuleServe:
		return "serve"
	default:
		return "none"
	}
}

// Workspace はインタラクションが読み書きする共有状態です。
type Workspace struct {
	Objects     []KitchenObject
	Ingredients *[]*Ingredient
	Orders      *[]Order
}

type Completion struct {
	OrderID int64
	Points  int
}

// Outcome は1回のインタラクションの結果です。同期レイヤーはこれを見て送信内容を決めます。
type Outcome struct {
	Rule        Rule
	Object      *KitchenObject
	HeldChanged bool
	PoolChanged bool
	Placed      *Ingredient
	Taken       *Ingredient
	TakenAt     Position
	Completion  *Completion
}

func (o Outcome) Fired() bool { return o.Rule != RuleNone }

type Resolver struct {
	tuning Tuning
	rng    *rand.Rand
}

func NewResolver(t Tuning, rng *rand.Rand) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Resolver{tuning: t, rng: rng}
}

// InRange は範囲内にある最初の設備を返します。
func (r *Resolver) InRange(p *Player, objects []KitchenObject) (*KitchenObject, bool) {
	radius := p.Size/2 + r.tuning.Player.InteractionRange
	for i := range objects {
		obj := &objects[i]
		if !obj.Interactable {
			continue
		}
		if obj.IsColliding(p.Position, radius) {
			return obj, true
		}
	}
	return nil, false
}

// Interact は範囲内の最初の設備に対してルールを優先順に試し、最初に発火したものだけを適用します。
func (r *Resolver) Interact(p *Player, ws *Workspace) Outcome {
	obj, ok := r.InRange(p, ws.Objects)
	if !ok {
		return Outcome{}
	}
	rules := []func(*Player, *KitchenObject, *Workspace) Outcome{
		r.platePickup,
		r.ingredientPickup,
		r.chop,
		r.startCooking,
		r.retrieve,
		r.serve,
	}
	for _, rule := range rules {
		if out := rule(p, obj, ws); out.Fired() {
			out.Object = obj
			return out
		}
	}
	return Outcome{}
}

func (r *Resolver) platePickup(p *Player, obj *KitchenObject, _ *Workspace) Outcome {
	if obj.Type != PlateStack {
		return Outcome{}
	}
	switch p.Held.Kind() {
	case HeldNone:
		p.PickupItem(HoldPlate(NewPlate(p.Position)))
		return Outcome{Rule: RulePlatePickup, HeldChanged: true}
	case HeldPlate:
		p.DropItem()
		return Outcome{Rule: RulePlateReturn, HeldChanged: true}
	}
	return Outcome{}
}

func (r *Resolver) ingredientPickup(p *Player, obj *KitchenObject, _ *Workspace) Outcome {
	kind, ok := obj.Type.BoxIngredient()
	if !ok || !p.Held.IsEmpty() {
		return Outcome{}
	}
	if kind == "" {
		kind = IngredientTypes[r.rng.IntN(len(IngredientTypes))]
	}
	p.PickupItem(HoldIngredient(NewIngredient(kind, p.Position)))
	return Outcome{Rule: RuleIngredientPickup, HeldChanged: true}
}

func (r *Resolver) chop(p *Player, obj *KitchenObject, _ *Workspace) Outcome {
	if obj.Type != PrepCounter {
		return Outcome{}
	}
	ing, ok := p.Held.Ingredient()
	if !ok {
		return Outcome{}
	}
	ing.Chop()
	return Outcome{Rule: RuleChop, HeldChanged: true}
}

func (r *Resolver) startCooking(p *Player, obj *KitchenObject, ws *Workspace) Outcome {
	if obj.Type != Stove || ws.Ingredients == nil {
		return Outcome{}
	}
	ing, ok := p.Held.Ingredient()
	if !ok || ing.State != Chopped {
		return Outcome{}
	}
	ing.StartCooking()
	ing.Position = r.stoveSlot(obj)
	*ws.Ingredients = append(*ws.Ingredients, ing)
	p.DropItem()
	return Outcome{Rule: RuleStartCooking, HeldChanged: true, PoolChanged: true, Placed: ing}
}

func (r *Resolver) retrieve(p *Player, obj *KitchenObject, ws *Workspace) Outcome {
	if obj.Type != Stove || ws.Ingredients == nil || !p.Held.IsEmpty() {
		return Outcome{}
	}
	slot := r.stoveSlot(obj)
	idx := FindNear(*ws.Ingredients, slot, r.tuning.Stove.PickupWindow)
	if idx < 0 {
		return Outcome{}
	}
	ing := (*ws.Ingredients)[idx]
	*ws.Ingredients = RemoveAt(*ws.Ingredients, idx)
	p.PickupItem(HoldIngredient(ing))
	return Outcome{Rule: RuleRetrieve, HeldChanged: true, PoolChanged: true, Taken: ing, TakenAt: slot}
}

func (r *Resolver) serve(p *Player, obj *KitchenObject, ws *Workspace) Outcome {
	if obj.Type != ServingCounter || ws.Orders == nil {
		return Outcome{}
	}
	ing, ok := p.Held.Ingredient()
	if !ok {
		return Outcome{}
	}
	orders := *ws.Orders
	for i, o := range orders {
		if !o.MatchesIngredient(ing) {
			continue
		}
		p.DropItem()
		*ws.Orders = append(orders[:i:i], orders[i+1:]...)
		return Outcome{
			Rule:        RuleServe,
			HeldChanged: true,
			Completion:  &Completion{OrderID: o.ID, Points: o.Points},
		}
	}
	return Outcome{}
}

// StoveSlot はコンロに置いた食材の位置を返します。
func (r *Resolver) StoveSlot(obj KitchenObject) Position {
	return r.stoveSlot(&obj)
}

func (r *Resolver) stoveSlot(obj *KitchenObject) Position {
	return obj.Position.Add(r.tuning.Stove.DropOffset)
}

// FindNear はposからwindow以内にある最初の食材の添字を返します。見つからなければ-1です。
func FindNear(pool []*Ingredient, pos Position, window float64) int {
	for i, ing := range pool {
		if ing.Position.Near(pos, window) {
			return i
		}
	}
	return -1
}

func RemoveAt(pool []*Ingredient, i int) []*Ingredient {
	out := make([]*Ingredient, 0, len(pool)-1)
	out = append(out, pool[:i]...)
	return append(out, pool[i+1:]...)
}

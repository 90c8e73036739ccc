package game

type HeldKind uint8

const (
	HeldNone HeldKind = iota
	HeldIngredient
	HeldPlate
)

func (k HeldKind) String() string {
	switch k {
	case HeldIngredient:
		return "ingredient"
	case HeldPlate:
		return "plate"
	default:
		return "none"
	}
}

// HeldItem はプレイヤーが持っている物です。ゼロ値は何も持っていない状態です。
type HeldItem struct {
	kind       HeldKind
	ingredient *Ingredient
	plate      *Plate
}

func HoldIngredient(i *Ingredient) HeldItem {
	if i == nil {
		return HeldItem{}
	}
	return HeldItem{kind: HeldIngredient, ingredient: i}
}

func HoldPlate(p *Plate) HeldItem {
	if p == nil {
		return HeldItem{}
	}
	return HeldItem{kind: HeldPlate, plate: p}
}

func (h HeldItem) Kind() HeldKind { return h.kind }
func (h HeldItem) IsEmpty() bool  { return h.kind == HeldNone }

func (h HeldItem) Ingredient() (*Ingredient, bool) {
	return h.ingredient, h.kind == HeldIngredient
}

func (h HeldItem) Plate() (*Plate, bool) {
	return h.plate, h.kind == HeldPlate
}

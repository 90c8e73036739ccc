package game

// Plate は複数の食材を載せる皿です。今のルールでは載せる操作はありません。
type Plate struct {
	Position Position
	Items    []OrderItem
}

func NewPlate(pos Position) *Plate {
	return &Plate{Position: pos}
}

func (p *Plate) AddIngredient(i *Ingredient) {
	p.Items = append(p.Items, i.Item())
}

func (p *Plate) Clear() {
	p.Items = nil
}

func (p *Plate) Clone() *Plate {
	if p == nil {
		return nil
	}
	c := *p
	c.Items = append([]OrderItem(nil), p.Items...)
	return &c
}

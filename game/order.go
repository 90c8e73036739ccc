package game

import "time"

// OrderItem は注文や皿に載る (種類, 状態) の組です。
type OrderItem struct {
	Type  IngredientType  `json:"type" yaml:"type"`
	State IngredientState `json:"state" yaml:"state"`
}

type Order struct {
	ID            int64
	Items         []OrderItem
	TimeRemaining time.Duration
	MaxTime       time.Duration
	Points        int
}

// Recipe は注文として出せる品目の組み合わせです。
type Recipe struct {
	Name  string
	Items []OrderItem
}

func (r Recipe) IsPlate() bool { return len(r.Items) > 1 }

// Catalog は注文候補の一覧です。複数品目の皿注文は EnablePlateOrders が有効なときだけ出ます。
var Catalog = []Recipe{
	{Name: "chopped tomato", Items: []OrderItem{{Tomato, Chopped}}},
	{Name: "chopped lettuce", Items: []OrderItem{{Lettuce, Chopped}}},
	{Name: "toast", Items: []OrderItem{{Bread, Cooked}}},
	{Name: "salad burger", Items: []OrderItem{{Bread, Cooked}, {Tomato, Chopped}, {Lettuce, Chopped}}},
	{Name: "cheese burger", Items: []OrderItem{{Bread, Cooked}, {Cheese, Cooked}, {Tomato, Chopped}}},
}

// EnabledRecipes は生成対象のレシピを返します。
func EnabledRecipes(t OrderTuning) []Recipe {
	out := make([]Recipe, 0, len(Catalog))
	for _, r := range Catalog {
		if r.IsPlate() && !t.EnablePlateOrders {
			continue
		}
		out = append(out, r)
	}
	return out
}

// PointsFor は残り時間から得点を計算します。
// max(minPoints, floor(basePoints * remaining / maxTime))
func PointsFor(remaining, maxTime time.Duration, t OrderTuning) int {
	if maxTime <= 0 || remaining <= 0 {
		return t.MinPoints
	}
	points := int(int64(t.BasePoints) * int64(remaining) / int64(maxTime))
	return max(t.MinPoints, points)
}

// Decay は残り時間を減らして得点を再計算します。期限切れならtrueを返します。
func (o *Order) Decay(elapsed time.Duration, t OrderTuning) bool {
	o.TimeRemaining -= elapsed
	o.Points = PointsFor(o.TimeRemaining, o.MaxTime, t)
	return o.TimeRemaining <= 0
}

// MatchesIngredient は単品注文に対して食材が一致するかを返します。
func (o Order) MatchesIngredient(i *Ingredient) bool {
	if i == nil || len(o.Items) != 1 {
		return false
	}
	return o.Items[0] == i.Item()
}

// MatchesPlate は必要な組が順不同ですべて揃っているかを返します。
func (o Order) MatchesPlate(items []OrderItem) bool {
	if len(items) != len(o.Items) {
		return false
	}
	remaining := make(map[OrderItem]int, len(o.Items))
	for _, it := range o.Items {
		remaining[it]++
	}
	for _, it := range items {
		if remaining[it] == 0 {
			return false
		}
		remaining[it]--
	}
	return true
}

func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}

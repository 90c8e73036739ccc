package game

import "time"

type IngredientType string

const (
	Tomato  IngredientType = "tomato"
	Lettuce IngredientType = "lettuce"
	Bread   IngredientType = "bread"
	Cheese  IngredientType = "cheese"
)

// IngredientTypes は汎用の食材箱から出てくる候補です。
var IngredientTypes = []IngredientType{Tomato, Lettuce, Bread, Cheese}

func (t IngredientType) Valid() bool {
	switch t {
	case Tomato, Lettuce, Bread, Cheese:
		return true
	}
	return false
}

// IngredientState は raw -> chopped -> cooked|burnt の順にしか進みません。
type IngredientState string

const (
	Raw     IngredientState = "raw"
	Chopped IngredientState = "chopped"
	Cooked  IngredientState = "cooked"
	Burnt   IngredientState = "burnt"
)

// Rank は状態の進み具合を返します。cookedとburntは同じ段です。
func (s IngredientState) Rank() int {
	switch s {
	case Raw:
		return 0
	case Chopped:
		return 1
	case Cooked, Burnt:
		return 2
	}
	return -1
}

type Ingredient struct {
	Type        IngredientType
	State       IngredientState
	Position    Position
	CookingTime time.Duration
}

func NewIngredient(t IngredientType, pos Position) *Ingredient {
	return &Ingredient{Type: t, State: Raw, Position: pos}
}

// Chop は生の食材だけを刻みます。それ以外は何もしません。
func (i *Ingredient) Chop() {
	if i.State != Raw {
		return
	}
	i.State = Chopped
	i.CookingTime = 0
}

// StartCooking は調理時間をリセットします。状態は変えません。
func (i *Ingredient) StartCooking() {
	if i.State != Chopped {
		return
	}
	i.CookingTime = 0
}

// UpdateCooking は刻んだ食材の調理時間を進め、状態が変わればtrueを返します。
func (i *Ingredient) UpdateCooking(delta time.Duration, c CookingTuning) bool {
	if i.State != Chopped || delta <= 0 {
		return false
	}
	i.CookingTime += delta
	// burntを先に判定する
	switch {
	case i.CookingTime >= c.BurnTime():
		i.State = Burnt
	case i.CookingTime >= c.MaxTime:
		i.State = Cooked
	default:
		return false
	}
	return true
}

func (i *Ingredient) Item() OrderItem {
	return OrderItem{Type: i.Type, State: i.State}
}

func (i *Ingredient) Clone() *Ingredient {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

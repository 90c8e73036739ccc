package game

type ObjectType string

const (
	Stove          ObjectType = "stove"
	PrepCounter    ObjectType = "prep_counter"
	ServingCounter ObjectType = "serving_counter"
	IngredientBox  ObjectType = "ingredient_box"
	TomatoBox      ObjectType = "tomato_box"
	LettuceBox     ObjectType = "lettuce_box"
	BreadBox       ObjectType = "bread_box"
	CheeseBox      ObjectType = "cheese_box"
	PlateStack     ObjectType = "plate_stack"
)

// BoxIngredient は食材箱から出る食材の種類を返します。汎用箱はokがtrueでtypeが空です。
func (t ObjectType) BoxIngredient() (IngredientType, bool) {
	switch t {
	case IngredientBox:
		return "", true
	case TomatoBox:
		return Tomato, true
	case LettuceBox:
		return Lettuce, true
	case BreadBox:
		return Bread, true
	case CheeseBox:
		return Cheese, true
	}
	return "", false
}

// KitchenObject はセッション中に変化しない設備です。
type KitchenObject struct {
	ID           string     `json:"id" yaml:"id"`
	Type         ObjectType `json:"type" yaml:"type"`
	Position     Position   `json:"position" yaml:"position"`
	Size         Size       `json:"size" yaml:"size"`
	Interactable bool       `json:"interactable" yaml:"interactable"`
}

// IsColliding は点をradiusだけ広げた矩形と設備の矩形が重なっているかを返します。
func (o KitchenObject) IsColliding(p Position, radius float64) bool {
	return p.X-radius < o.Position.X+o.Size.W &&
		p.X+radius > o.Position.X &&
		p.Y-radius < o.Position.Y+o.Size.H &&
		p.Y+radius > o.Position.Y
}

func (o KitchenObject) Center() Position {
	return Position{X: o.Position.X + o.Size.W/2, Y: o.Position.Y + o.Size.H/2}
}

func DefaultLayout() []KitchenObject {
	return []KitchenObject{
		{ID: "stove1", Type: Stove, Position: Position{X: 100, Y: 100}, Size: Size{W: 80, H: 40}, Interactable: true},
		{ID: "prep1", Type: PrepCounter, Position: Position{X: 200, Y: 100}, Size: Size{W: 80, H: 40}, Interactable: true},
		{ID: "serve1", Type: ServingCounter, Position: Position{X: 300, Y: 100}, Size: Size{W: 80, H: 40}, Interactable: true},
		{ID: "ingredients1", Type: IngredientBox, Position: Position{X: 50, Y: 200}, Size: Size{W: 60, H: 60}, Interactable: true},
		{ID: "plates1", Type: PlateStack, Position: Position{X: 500, Y: 100}, Size: Size{W: 60, H: 40}, Interactable: true},
		{ID: "tomatoes", Type: TomatoBox, Position: Position{X: 50, Y: 320}, Size: Size{W: 50, H: 50}, Interactable: true},
		{ID: "lettuce", Type: LettuceBox, Position: Position{X: 50, Y: 420}, Size: Size{W: 50, H: 50}, Interactable: true},
		{ID: "bread", Type: BreadBox, Position: Position{X: 50, Y: 520}, Size: Size{W: 50, H: 50}, Interactable: true},
		{ID: "cheese", Type: CheeseBox, Position: Position{X: 680, Y: 520}, Size: Size{W: 50, H: 50}, Interactable: true},
	}
}

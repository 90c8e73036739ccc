package protocol

import "simmer/game"

// メッセージ種別
const (
	TypeStateSnapshot        = "state-snapshot"
	TypePlayerJoined         = "player-joined"
	TypePlayerLeft           = "player-left"
	TypePlayerMove           = "player-move"
	TypePlayerItemUpdate     = "player-item-update"
	TypeIngredientListUpdate = "ingredient-list-update"
	TypeIngredientPlace      = "ingredient-place"
	TypeIngredientTake       = "ingredient-take"
	TypeIngredientTakeResult = "ingredient-take-result"
	TypeOrderListUpdate      = "order-list-update"
	TypeScoreUpdate          = "score-update"
	TypeOrderCompletion      = "order-completion-request"
	TypePing                 = "ping"
	TypePong                 = "pong"
)

type StateSnapshot struct {
	You         string                 `json:"you,omitempty"`
	Players     map[string]PlayerState `json:"players"`
	Ingredients []Ingredient           `json:"ingredients"`
	Orders      []Order                `json:"orders"`
	Score       int                    `json:"score"`
}

type PlayerState struct {
	ID           string        `json:"id"`
	ConnectionID string        `json:"connectionId"`
	Position     game.Position `json:"position"`
	Color        string        `json:"color"`
	HeldItem     *HeldItem     `json:"heldItem"`
}

// Move はクライアントから送るときConnectionIDを空にします。中継時にサーバーが埋めます。
type Move struct {
	ConnectionID string        `json:"connectionId,omitempty"`
	Position     game.Position `json:"position"`
}

type ItemUpdate struct {
	ConnectionID string    `json:"connectionId,omitempty"`
	Item         *HeldItem `json:"item"`
}

type IngredientList struct {
	Ingredients []Ingredient `json:"ingredients"`
}

type IngredientPlace struct {
	Ingredient Ingredient `json:"ingredient"`
}

type IngredientTake struct {
	Position game.Position `json:"position"`
}

type IngredientTakeResult struct {
	OK         bool        `json:"ok"`
	Ingredient *Ingredient `json:"ingredient,omitempty"`
}

type OrderList struct {
	Orders []Order `json:"orders"`
}

type Score struct {
	Score int `json:"score"`
}

type OrderCompletion struct {
	OrderID int64 `json:"orderId"`
	Points  int   `json:"points"`
}

type PlayerLeft struct {
	ConnectionID string `json:"connectionId"`
}

type Ping struct {
	At int64 `json:"at"`
}

package game

import "time"

// Tuning はゲーム全体の定数をまとめたものです。YAMLから上書きできます。
type Tuning struct {
	Canvas      Size          `yaml:"canvas"`
	Player      PlayerTuning  `yaml:"player"`
	Cooking     CookingTuning `yaml:"cooking"`
	Stove       StoveTuning   `yaml:"stove"`
	Orders      OrderTuning   `yaml:"orders"`
	TickPeriod  time.Duration `yaml:"tick_period"`
	PlayerColor []string      `yaml:"player_colors"`
}

type PlayerTuning struct {
	Speed               float64       `yaml:"speed"` // px/s
	Size                float64       `yaml:"size"`
	InteractionRange    float64       `yaml:"interaction_range"`
	InteractionCooldown time.Duration `yaml:"interaction_cooldown"`
}

type CookingTuning struct {
	MaxTime        time.Duration `yaml:"max_time"`
	BurnMultiplier float64       `yaml:"burn_multiplier"`
}

// BurnTime は焦げるまでの累積時間です。
func (c CookingTuning) BurnTime() time.Duration {
	return time.Duration(float64(c.MaxTime) * c.BurnMultiplier)
}

// StoveTuning はコンロに置いた食材の位置と回収判定の範囲です。
type StoveTuning struct {
	DropOffset   Position `yaml:"drop_offset"`
	PickupWindow float64  `yaml:"pickup_window"`
}

type OrderTuning struct {
	MaxOrders         int           `yaml:"max_orders"`
	FirstOrderDelay   time.Duration `yaml:"first_order_delay"`
	MinInterval       time.Duration `yaml:"min_interval"`
	MaxInterval       time.Duration `yaml:"max_interval"`
	BaseTime          time.Duration `yaml:"base_time"`
	BasePoints        int           `yaml:"base_points"`
	MinPoints         int           `yaml:"min_points"`
	ExpiryPenalty     int           `yaml:"expiry_penalty"`
	EnablePlateOrders bool          `yaml:"enable_plate_orders"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Canvas: Size{W: 800, H: 600},
		Player: PlayerTuning{
			Speed:               150,
			Size:                24,
			InteractionRange:    20,
			InteractionCooldown: 300 * time.Millisecond,
		},
		Cooking: CookingTuning{
			MaxTime:        20 * time.Second,
			BurnMultiplier: 1.5,
		},
		Stove: StoveTuning{
			DropOffset:   Position{X: 40, Y: 20},
			PickupWindow: 20,
		},
		Orders: OrderTuning{
			MaxOrders:       3,
			FirstOrderDelay: 20 * time.Second,
			MinInterval:     60 * time.Second,
			MaxInterval:     100 * time.Second,
			BaseTime:        120 * time.Second,
			BasePoints:      100,
			MinPoints:       10,
			ExpiryPenalty:   50,
		},
		TickPeriod:  time.Second,
		PlayerColor: []string{"#ff6b6b", "#4ecdc4", "#45b7d1", "#f9ca24"},
	}
}

// ColorFor はn番目に参加したプレイヤーの色を返します。
func (t Tuning) ColorFor(n int) string {
	if len(t.PlayerColor) == 0 {
		return "#ffffff"
	}
	return t.PlayerColor[n%len(t.PlayerColor)]
}

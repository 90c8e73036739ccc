package application

import (
	"math/rand/v2"
	"time"

	"simmer/game"
)

// OrderManager は注文の生成、減衰、期限切れ、完了を担当します。
// State.Orders と State.Score を書き換えるのはこの型だけです。
type OrderManager struct {
	state   *State
	tuning  game.OrderTuning
	recipes []game.Recipe
	rng     *rand.Rand
	metrics Recorder

	untilNext time.Duration
}

type TickResult struct {
	OrdersChanged bool
	ScoreChanged  bool
	Generated     []game.Order
	Expired       []int64
}

func NewOrderManager(state *State, tuning game.OrderTuning, rng *rand.Rand, metrics Recorder) *OrderManager {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if metrics == nil {
		metrics = NopRecorder{}
	}
	return &OrderManager{
		state:     state,
		tuning:    tuning,
		recipes:   game.EnabledRecipes(tuning),
		rng:       rng,
		metrics:   metrics,
		untilNext: tuning.FirstOrderDelay,
	}
}

// Tick は既存の注文を減衰させてから、必要なら新しい注文を出します。
// 生成したばかりの注文はそのtickでは減りません。
func (m *OrderManager) Tick(elapsed time.Duration) TickResult {
	var res TickResult
	if len(m.state.Orders) > 0 {
		res.OrdersChanged = true
	}

	live := m.state.Orders[:0]
	for _, o := range m.state.Orders {
		if o.Decay(elapsed, m.tuning) {
			res.Expired = append(res.Expired, o.ID)
			continue
		}
		live = append(live, o)
	}
	clear(m.state.Orders[len(live):])
	m.state.Orders = live

	if len(res.Expired) > 0 {
		before := m.state.Score
		for range res.Expired {
			m.state.AddScore(-m.tuning.ExpiryPenalty)
			m.metrics.OrderExpired()
		}
		if m.state.Score != before {
			res.ScoreChanged = true
			m.metrics.ScoreChanged(m.state.Score)
		}
	}

	m.untilNext -= elapsed
	if m.untilNext <= 0 && len(m.state.Orders) < m.tuning.MaxOrders && len(m.recipes) > 0 {
		o := m.generate()
		m.state.Orders = append(m.state.Orders, o)
		res.Generated = append(res.Generated, o)
		res.OrdersChanged = true
		m.untilNext = m.nextInterval()
	}
	return res
}

// Complete は注文を取り除き、その時点の得点をスコアに加えます。
func (m *OrderManager) Complete(id int64) (int, bool) {
	for i, o := range m.state.Orders {
		if o.ID != id {
			continue
		}
		m.state.Orders = append(m.state.Orders[:i:i], m.state.Orders[i+1:]...)
		m.state.AddScore(o.Points)
		m.metrics.OrderCompleted(o.Points)
		m.metrics.ScoreChanged(m.state.Score)
		return o.Points, true
	}
	return 0, false
}

// UntilNext は次の注文までの残り時間です。
func (m *OrderManager) UntilNext() time.Duration { return m.untilNext }

func (m *OrderManager) generate() game.Order {
	recipe := m.recipes[m.rng.IntN(len(m.recipes))]
	o := game.Order{
		ID:            m.state.NextOrderID(),
		Items:         append([]game.OrderItem(nil), recipe.Items...),
		TimeRemaining: m.tuning.BaseTime,
		MaxTime:       m.tuning.BaseTime,
		Points:        m.tuning.BasePoints,
	}
	m.metrics.OrderGenerated(o.Items)
	return o
}

func (m *OrderManager) nextInterval() time.Duration {
	span := m.tuning.MaxInterval - m.tuning.MinInterval
	if span <= 0 {
		return m.tuning.MinInterval
	}
	return m.tuning.MinInterval + time.Duration(m.rng.Int64N(int64(span)+1))
}

package application

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"simmer/game"
)

// Recorder はゲーム内のイベントを計測系に通知します。
type Recorder interface {
	OrderGenerated(items []game.OrderItem)
	OrderCompleted(points int)
	OrderExpired()
	ScoreChanged(score int)
	PlayersChanged(n int)
}

type NopRecorder struct{}

func (NopRecorder) OrderGenerated([]game.OrderItem) {}
func (NopRecorder) OrderCompleted(int)              {}
func (NopRecorder) OrderExpired()                   {}
func (NopRecorder) ScoreChanged(int)                {}
func (NopRecorder) PlayersChanged(int)              {}

// Metrics はPrometheusのコレクタをまとめたものです。
type Metrics struct {
	registry  *prometheus.Registry
	generated *prometheus.CounterVec
	completed prometheus.Counter
	expired   prometheus.Counter
	points    prometheus.Histogram
	score     prometheus.Gauge
	players   prometheus.Gauge
}

var _ Recorder = (*Metrics)(nil)

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simmer_orders_generated_total",
				Help: "Orders generated by the order lifecycle manager",
			},
			[]string{"recipe"},
		),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simmer_orders_completed_total",
			Help: "Orders delivered before expiry",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simmer_orders_expired_total",
			Help: "Orders that ran out of time",
		}),
		points: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simmer_order_points",
			Help:    "Points awarded per delivered order",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simmer_score",
			Help: "Current shared kitchen score",
		}),
		players: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simmer_players",
			Help: "Connected players",
		}),
	}
	m.registry.MustRegister(m.generated, m.completed, m.expired, m.points, m.score, m.players)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OrderGenerated(items []game.OrderItem) {
	m.generated.WithLabelValues(recipeLabel(items)).Inc()
}

func (m *Metrics) OrderCompleted(points int) {
	m.completed.Inc()
	m.points.Observe(float64(points))
}

func (m *Metrics) OrderExpired()          { m.expired.Inc() }
func (m *Metrics) ScoreChanged(score int) { m.score.Set(float64(score)) }
func (m *Metrics) PlayersChanged(n int)   { m.players.Set(float64(n)) }

func recipeLabel(items []game.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, string(it.State)+"_"+string(it.Type))
	}
	return strings.Join(parts, "+")
}

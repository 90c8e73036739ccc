package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"simmer/config"
	"simmer/game"
	"simmer/protocol"
	"simmer/server/domain"
)

var (
	ErrUnknownSession      = errors.New("session has no player")
	ErrClientWriteRejected = errors.New("ingredient pool is server owned")
)

// KitchenApplication はクライアントからのメッセージを共有状態に反映し、送信先を決めます。
// メソッドはすべてルームのゴルーチンから呼ばれます。
type KitchenApplication struct {
	state     *State
	orders    *OrderManager
	tuning    game.Tuning
	authority config.Authority
	metrics   Recorder
}

var _ domain.Application = (*KitchenApplication)(nil)

func NewKitchenApplication(state *State, orders *OrderManager, tuning game.Tuning, authority config.Authority, metrics Recorder) *KitchenApplication {
	if metrics == nil {
		metrics = NopRecorder{}
	}
	return &KitchenApplication{
		state:     state,
		orders:    orders,
		tuning:    tuning,
		authority: authority,
		metrics:   metrics,
	}
}

// Join はプレイヤーを生成し、本人に全体像、他の全員に参加通知を送ります。
func (a *KitchenApplication) Join(ctx context.Context, sessionID domain.SessionID) []domain.Delivery {
	n := len(a.state.Players)
	a.state.joined++
	p := game.NewPlayer(
		fmt.Sprintf("Player%d", a.state.joined),
		game.Position{X: 400 + float64(n)*50, Y: 300},
		a.tuning.ColorFor(n),
		a.tuning.Player,
	)
	p.ConnectionID = sessionID.String()
	p.SetPosition(p.Position, a.tuning.Canvas)
	a.state.Players[sessionID] = p
	a.metrics.PlayersChanged(len(a.state.Players))

	slog.InfoContext(ctx, "player joined", "sessionID", sessionID, "player", p.ID, "players", len(a.state.Players))
	return []domain.Delivery{
		domain.ToOne(sessionID, protocol.MustEncode(protocol.TypeStateSnapshot, a.state.Snapshot(sessionID))),
		domain.ToOthers(sessionID, protocol.MustEncode(protocol.TypePlayerJoined, playerState(p))),
	}
}

func (a *KitchenApplication) Leave(ctx context.Context, sessionID domain.SessionID) []domain.Delivery {
	p, ok := a.state.Players[sessionID]
	if !ok {
		return nil
	}
	delete(a.state.Players, sessionID)
	a.metrics.PlayersChanged(len(a.state.Players))

	slog.InfoContext(ctx, "player left", "sessionID", sessionID, "player", p.ID)
	return []domain.Delivery{
		domain.ToOthers(sessionID, protocol.MustEncode(protocol.TypePlayerLeft, protocol.PlayerLeft{ConnectionID: sessionID.String()})),
	}
}

func (a *KitchenApplication) HandleMessage(ctx context.Context, sessionID domain.SessionID, data []byte) ([]domain.Delivery, error) {
	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	player, ok := a.state.Players[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}

	switch env.T {
	case protocol.TypePlayerMove:
		return a.handleMove(sessionID, player, env)
	case protocol.TypePlayerItemUpdate:
		return a.handleItemUpdate(sessionID, player, env)
	case protocol.TypeIngredientListUpdate:
		return a.handleIngredientList(sessionID, env)
	case protocol.TypeIngredientPlace:
		return a.handleIngredientPlace(env)
	case protocol.TypeIngredientTake:
		return a.handleIngredientTake(sessionID, env)
	case protocol.TypeOrderCompletion:
		return a.handleCompletion(ctx, sessionID, env)
	default:
		return nil, fmt.Errorf("%w: %q", protocol.ErrUnknownType, env.T)
	}
}

func (a *KitchenApplication) handleMove(id domain.SessionID, p *game.Player, env protocol.Envelope) ([]domain.Delivery, error) {
	msg, err := protocol.DecodePayload[protocol.Move](env)
	if err != nil {
		return nil, err
	}
	p.SetPosition(msg.Position, a.tuning.Canvas)
	relay := protocol.Move{ConnectionID: id.String(), Position: p.Position}
	return []domain.Delivery{domain.ToOthers(id, protocol.MustEncode(protocol.TypePlayerMove, relay))}, nil
}

// handleItemUpdate は持ち物の正当性を検証しません。
func (a *KitchenApplication) handleItemUpdate(id domain.SessionID, p *game.Player, env protocol.Envelope) ([]domain.Delivery, error) {
	msg, err := protocol.DecodePayload[protocol.ItemUpdate](env)
	if err != nil {
		return nil, err
	}
	p.Held = msg.Item.ToGame()
	relay := protocol.ItemUpdate{ConnectionID: id.String(), Item: protocol.FromHeld(p.Held)}
	return []domain.Delivery{domain.ToOthers(id, protocol.MustEncode(protocol.TypePlayerItemUpdate, relay))}, nil
}

// handleIngredientList は全件を後勝ちで置き換えます。
func (a *KitchenApplication) handleIngredientList(id domain.SessionID, env protocol.Envelope) ([]domain.Delivery, error) {
	if a.authority == config.AuthorityServer {
		return nil, ErrClientWriteRejected
	}
	msg, err := protocol.DecodePayload[protocol.IngredientList](env)
	if err != nil {
		return nil, err
	}
	a.state.Ingredients = protocol.ToIngredients(msg.Ingredients)
	return []domain.Delivery{domain.ToOthers(id, a.encodeIngredients())}, nil
}

func (a *KitchenApplication) handleIngredientPlace(env protocol.Envelope) ([]domain.Delivery, error) {
	msg, err := protocol.DecodePayload[protocol.IngredientPlace](env)
	if err != nil {
		return nil, err
	}
	if !msg.Ingredient.Type.Valid() {
		return nil, fmt.Errorf("place: unknown ingredient type %q", msg.Ingredient.Type)
	}
	a.state.Ingredients = append(a.state.Ingredients, msg.Ingredient.ToGame())
	return []domain.Delivery{domain.ToAll(a.encodeIngredients())}, nil
}

// handleIngredientTake は先着順です。取れなかったクライアントにはok=falseを返します。
func (a *KitchenApplication) handleIngredientTake(id domain.SessionID, env protocol.Envelope) ([]domain.Delivery, error) {
	msg, err := protocol.DecodePayload[protocol.IngredientTake](env)
	if err != nil {
		return nil, err
	}
	idx := game.FindNear(a.state.Ingredients, msg.Position, a.tuning.Stove.PickupWindow)
	if idx < 0 {
		return []domain.Delivery{
			domain.ToOne(id, protocol.MustEncode(protocol.TypeIngredientTakeResult, protocol.IngredientTakeResult{OK: false})),
		}, nil
	}
	taken := protocol.FromIngredient(a.state.Ingredients[idx])
	a.state.Ingredients = game.RemoveAt(a.state.Ingredients, idx)
	if p, ok := a.state.Players[id]; ok {
		p.Held = game.HoldIngredient(taken.ToGame())
	}
	return []domain.Delivery{
		domain.ToOne(id, protocol.MustEncode(protocol.TypeIngredientTakeResult, protocol.IngredientTakeResult{OK: true, Ingredient: &taken})),
		domain.ToAll(a.encodeIngredients()),
	}, nil
}

// handleCompletion はクライアントが申告した得点ではなく、サーバー側の現在の得点を使います。
func (a *KitchenApplication) handleCompletion(ctx context.Context, id domain.SessionID, env protocol.Envelope) ([]domain.Delivery, error) {
	msg, err := protocol.DecodePayload[protocol.OrderCompletion](env)
	if err != nil {
		return nil, err
	}
	points, ok := a.orders.Complete(msg.OrderID)
	if !ok {
		slog.DebugContext(ctx, "completion for unknown order ignored", "sessionID", id, "orderID", msg.OrderID)
		return nil, nil
	}
	slog.InfoContext(ctx, "order completed", "sessionID", id, "orderID", msg.OrderID, "points", points, "claimed", msg.Points, "score", a.state.Score)
	return []domain.Delivery{
		domain.ToAll(a.encodeOrders()),
		domain.ToAll(a.encodeScore()),
	}, nil
}

func (a *KitchenApplication) Tick(ctx context.Context, elapsed time.Duration) []domain.Delivery {
	var out []domain.Delivery
	if a.authority == config.AuthorityServer {
		changed := false
		for _, ing := range a.state.Ingredients {
			if ing.UpdateCooking(elapsed, a.tuning.Cooking) {
				changed = true
			}
		}
		if changed {
			out = append(out, domain.ToAll(a.encodeIngredients()))
		}
	}

	res := a.orders.Tick(elapsed)
	for _, o := range res.Generated {
		slog.InfoContext(ctx, "order generated", "orderID", o.ID, "items", o.Items)
	}
	for _, id := range res.Expired {
		slog.InfoContext(ctx, "order expired", "orderID", id, "score", a.state.Score)
	}
	if res.OrdersChanged {
		out = append(out, domain.ToAll(a.encodeOrders()))
	}
	if res.ScoreChanged {
		out = append(out, domain.ToAll(a.encodeScore()))
	}
	return out
}

// Snapshot はルームのゴルーチン上で呼んでください。
func (a *KitchenApplication) Snapshot() protocol.StateSnapshot {
	return a.state.Snapshot("")
}

func (a *KitchenApplication) encodeIngredients() []byte {
	return protocol.MustEncode(protocol.TypeIngredientListUpdate, protocol.IngredientList{Ingredients: protocol.FromIngredients(a.state.Ingredients)})
}

func (a *KitchenApplication) encodeOrders() []byte {
	return protocol.MustEncode(protocol.TypeOrderListUpdate, protocol.OrderList{Orders: protocol.FromOrders(a.state.Orders)})
}

func (a *KitchenApplication) encodeScore() []byte {
	return protocol.MustEncode(protocol.TypeScoreUpdate, protocol.Score{Score: a.state.Score})
}

package client

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"simmer/config"
	"simmer/game"
	"simmer/protocol"
)

// Sender はサーバーへメッセージを送ります。*Conn が実装しています。
type Sender interface {
	Send(ctx context.Context, t string, payload any) error
}

// SyncMode は食材プールの変更をどう送るかです。
type SyncMode uint8

const (
	// SyncSnapshot は変更のたびにプール全体を送ります。後勝ちです。
	SyncSnapshot SyncMode = iota
	// SyncIntent は置く、取るの意図だけを送り、結果はサーバーからの配信に従います。
	SyncIntent
)

func ModeFor(a config.Authority) SyncMode {
	if a == config.AuthorityServer {
		return SyncIntent
	}
	return SyncSnapshot
}

// Input は1フレーム分のキー入力です。
type Input struct {
	Up, Down, Left, Right bool
	Interact              bool
}

func (in Input) Direction() game.Direction {
	var d game.Direction
	if in.Left {
		d.X--
	}
	if in.Right {
		d.X++
	}
	if in.Up {
		d.Y--
	}
	if in.Down {
		d.Y++
	}
	return d
}

// Frame は描画側に渡す1フレーム分の状態です。
type Frame struct {
	Objects     []game.KitchenObject
	Ingredients []*game.Ingredient
	Plates      []*game.Plate
	Local       game.Player
	Remote      []game.Player
	Orders      []game.Order
	Score       int
}

// Engine はクライアント1台分のゲームループ本体です。1つのゴルーチンからだけ呼んでください。
type Engine struct {
	tuning   game.Tuning
	objects  []game.KitchenObject
	resolver *game.Resolver
	replica  *Replica
	local    *game.Player
	sender   Sender
	mode     SyncMode

	cooldown time.Duration
}

func NewEngine(tuning game.Tuning, objects []game.KitchenObject, mode SyncMode, sender Sender, rng *rand.Rand) *Engine {
	return &Engine{
		tuning:   tuning,
		objects:  objects,
		resolver: game.NewResolver(tuning, rng),
		replica:  NewReplica(tuning.Player),
		local:    game.NewPlayer("", game.Position{X: 400, Y: 300}, tuning.ColorFor(0), tuning.Player),
		sender:   sender,
		mode:     mode,
	}
}

// Ready はサーバーからスナップショットを受け取ったかどうかです。
func (e *Engine) Ready() bool { return e.replica.Self() != "" }

func (e *Engine) Local() *game.Player { return e.local }
func (e *Engine) Replica() *Replica   { return e.replica }

// Update は1フレーム進めます。参加前は何もしません。
func (e *Engine) Update(ctx context.Context, delta time.Duration, in Input) error {
	if !e.Ready() {
		return nil
	}

	prev := e.local.Position
	e.local.Move(in.Direction(), delta, e.tuning.Canvas)

	for _, ing := range e.replica.Ingredients {
		ing.UpdateCooking(delta, e.tuning.Cooking)
	}

	if e.local.Position != prev {
		if err := e.sender.Send(ctx, protocol.TypePlayerMove, protocol.Move{Position: e.local.Position}); err != nil {
			return fmt.Errorf("send move: %w", err)
		}
	}

	if e.cooldown > 0 {
		e.cooldown -= delta
	}
	if !in.Interact || e.cooldown > 0 {
		return nil
	}
	e.cooldown = e.tuning.Player.InteractionCooldown

	out := e.resolver.Interact(e.local, &game.Workspace{
		Objects:     e.objects,
		Ingredients: &e.replica.Ingredients,
		Orders:      &e.replica.Orders,
	})
	if !out.Fired() {
		return nil
	}
	slog.DebugContext(ctx, "interaction", "rule", out.Rule, "object", out.Object.ID)
	return e.publish(ctx, out)
}

// publish はインタラクションの結果をサーバーへ送ります。
func (e *Engine) publish(ctx context.Context, out game.Outcome) error {
	if out.HeldChanged {
		if err := e.sendHeld(ctx); err != nil {
			return err
		}
	}
	if out.PoolChanged {
		switch e.mode {
		case SyncIntent:
			if out.Placed != nil {
				if err := e.sender.Send(ctx, protocol.TypeIngredientPlace, protocol.IngredientPlace{Ingredient: protocol.FromIngredient(out.Placed)}); err != nil {
					return fmt.Errorf("send place: %w", err)
				}
			}
			if out.Taken != nil {
				if err := e.sender.Send(ctx, protocol.TypeIngredientTake, protocol.IngredientTake{Position: out.TakenAt}); err != nil {
					return fmt.Errorf("send take: %w", err)
				}
			}
		default:
			list := protocol.IngredientList{Ingredients: protocol.FromIngredients(e.replica.Ingredients)}
			if err := e.sender.Send(ctx, protocol.TypeIngredientListUpdate, list); err != nil {
				return fmt.Errorf("send ingredient list: %w", err)
			}
		}
	}
	if c := out.Completion; c != nil {
		if err := e.sender.Send(ctx, protocol.TypeOrderCompletion, protocol.OrderCompletion{OrderID: c.OrderID, Points: c.Points}); err != nil {
			return fmt.Errorf("send completion: %w", err)
		}
	}
	return nil
}

func (e *Engine) sendHeld(ctx context.Context) error {
	if err := e.sender.Send(ctx, protocol.TypePlayerItemUpdate, protocol.ItemUpdate{Item: protocol.FromHeld(e.local.Held)}); err != nil {
		return fmt.Errorf("send held item: %w", err)
	}
	return nil
}

// Apply はサーバーからのメッセージを反映します。
func (e *Engine) Apply(ctx context.Context, env protocol.Envelope) error {
	if env.T == protocol.TypeIngredientTakeResult {
		return e.applyTakeResult(ctx, env)
	}
	if err := e.replica.Apply(env); err != nil {
		return err
	}
	if env.T == protocol.TypeStateSnapshot {
		if self, ok := e.replica.SelfState(); ok {
			e.local.ID = self.ID
			e.local.ConnectionID = self.ConnectionID
			e.local.Color = self.Color
			e.local.Position = self.Position
			e.local.Held = self.HeldItem.ToGame()
		}
	}
	return nil
}

// applyTakeResult は先に手に持った食材をサーバーの結果で確定させます。取れなかった場合は手放します。
func (e *Engine) applyTakeResult(ctx context.Context, env protocol.Envelope) error {
	res, err := protocol.DecodePayload[protocol.IngredientTakeResult](env)
	if err != nil {
		return err
	}
	if res.OK && res.Ingredient != nil {
		if _, holding := e.local.Held.Ingredient(); holding {
			e.local.Held = game.HoldIngredient(res.Ingredient.ToGame())
		}
		return nil
	}
	if e.local.Held.Kind() != game.HeldIngredient {
		return nil
	}
	e.local.DropItem()
	slog.DebugContext(ctx, "take rejected by server, dropping held ingredient")
	return e.sendHeld(ctx)
}

// Frame は現在の状態を描画用にコピーして返します。
func (e *Engine) Frame() Frame {
	f := Frame{
		Objects:     e.objects,
		Ingredients: make([]*game.Ingredient, 0, len(e.replica.Ingredients)),
		Local:       *e.local,
		Orders:      append([]game.Order(nil), e.replica.Orders...),
		Score:       e.replica.Score,
	}
	for _, ing := range e.replica.Ingredients {
		f.Ingredients = append(f.Ingredients, ing.Clone())
	}
	if p, ok := e.local.Held.Plate(); ok {
		f.Plates = append(f.Plates, p.Clone())
	}
	for _, p := range e.replica.RemotePlayers() {
		f.Remote = append(f.Remote, *p)
		if plate, ok := p.Held.Plate(); ok {
			f.Plates = append(f.Plates, plate.Clone())
		}
	}
	return f
}

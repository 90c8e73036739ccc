package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"simmer/protocol"
)

var ErrInboxClosed = errors.New("inbox closed")

// TickSource はフレームごとの経過時間を流します。ctxが終わるとチャネルを閉じます。
type TickSource interface {
	Ticks(ctx context.Context) <-chan time.Duration
}

// InputSource は直前のフレームを見て次の入力を決めます。
type InputSource interface {
	Next(f Frame) Input
}

// WallTicker は実時間で一定間隔のtickを出します。
type WallTicker struct {
	period time.Duration
}

func NewWallTicker(period time.Duration) *WallTicker {
	if period <= 0 {
		period = time.Second / 60
	}
	return &WallTicker{period: period}
}

func (w *WallTicker) Ticks(ctx context.Context) <-chan time.Duration {
	ch := make(chan time.Duration)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(w.period)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				delta := now.Sub(last)
				last = now
				select {
				case ch <- delta:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}

// Run は受信メッセージの反映とフレーム更新を1つのゴルーチンで交互に行います。
// tickが尽きたらnilを返します。
func Run(ctx context.Context, e *Engine, ticks TickSource, input InputSource, inbox <-chan protocol.Envelope) error {
	tickCh := ticks.Ticks(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-inbox:
			if !ok {
				return ErrInboxClosed
			}
			if err := e.Apply(ctx, env); err != nil {
				if errors.Is(err, protocol.ErrUnknownType) {
					slog.DebugContext(ctx, "client: ignoring message", "type", env.T)
					continue
				}
				return err
			}
		case delta, ok := <-tickCh:
			if !ok {
				return nil
			}
			if err := e.Update(ctx, delta, input.Next(e.Frame())); err != nil {
				return err
			}
		}
	}
}

package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"simmer/protocol"
)

// Conn はサーバーとのwebsocket接続です。Sendは複数のゴルーチンから呼べますが、ReadLoopは1つだけです。
type Conn struct {
	ws *websocket.Conn
}

func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Conn{ws: ws}, nil
}

func (c *Conn) Send(ctx context.Context, t string, payload any) error {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	return c.ws.Write(ctx, websocket.MessageText, data)
}

// ReadLoop は受信したメッセージをinboxに流します。pingにはその場でpongを返します。
// 接続が切れるかctxが終わるまで戻りません。
func (c *Conn) ReadLoop(ctx context.Context, inbox chan<- protocol.Envelope) error {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			slog.WarnContext(ctx, "client: dropping malformed message", "err", err)
			continue
		}
		if env.T == protocol.TypePing {
			if err := c.Send(ctx, protocol.TypePong, protocol.Ping{At: time.Now().UnixMilli()}); err != nil {
				return fmt.Errorf("pong: %w", err)
			}
			continue
		}
		select {
		case inbox <- env:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Conn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "bye")
}

// CloseNow はハンドシェイクを待たずに閉じます。
func (c *Conn) CloseNow() error {
	return c.ws.CloseNow()
}

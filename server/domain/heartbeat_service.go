package domain

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"simmer/protocol"
)

// HeartbeatService は一定間隔でクライアントにpingを送ります。
// 応答のpongはSessionEndpointが受け取り、Sessionの時刻を更新します。
type HeartbeatService struct {
	interval  time.Duration
	sessionID SessionID
	send      func([]byte) error

	dropped atomic.Int64
}

func NewHeartbeatService(interval time.Duration, sessionID SessionID, send func([]byte) error) *HeartbeatService {
	return &HeartbeatService{
		interval:  interval,
		sessionID: sessionID,
		send:      send,
	}
}

// Run はctxが終わるまでpingを送り続けます。送れなかったpingは数えて捨てます。
func (h *HeartbeatService) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			ping := protocol.MustEncode(protocol.TypePing, protocol.Ping{At: now.UnixMilli()})
			if err := h.send(ping); err != nil {
				h.dropped.Add(1)
				slog.WarnContext(ctx, "heartbeat: ping dropped", "sessionID", h.sessionID, "err", err)
				continue
			}
			slog.DebugContext(ctx, "heartbeat: ping sent", "sessionID", h.sessionID)
		}
	}
}

// Dropped は送れなかったpingの数です。
func (h *HeartbeatService) Dropped() int64 { return h.dropped.Load() }

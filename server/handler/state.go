package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"simmer/protocol"
	"simmer/server/domain"
)

// Snapshotter はルームの状態を安全に読み出します。
type Snapshotter interface {
	Snapshot(ctx context.Context) (protocol.StateSnapshot, error)
}

const stateTimeout = 2 * time.Second

// NewStateHandler は現在のキッチンの全体像をJSONで返します。
func NewStateHandler(s Snapshotter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), stateTimeout)
		defer cancel()

		snap, err := s.Snapshot(ctx)
		switch {
		case errors.Is(err, domain.ErrRoomBusy), errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		case err != nil:
			slog.ErrorContext(ctx, "state snapshot failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

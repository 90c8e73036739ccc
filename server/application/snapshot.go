package application

import (
	"context"

	"simmer/protocol"
)

// Executor はルームのゴルーチンで関数を実行します。domain.Room が実装しています。
type Executor interface {
	Do(ctx context.Context, fn func(ctx context.Context)) error
}

// SnapshotService はHTTPハンドラなどルーム外のゴルーチンから状態を読むための窓口です。
type SnapshotService struct {
	exec Executor
	app  *KitchenApplication
}

func NewSnapshotService(exec Executor, app *KitchenApplication) *SnapshotService {
	return &SnapshotService{exec: exec, app: app}
}

func (s *SnapshotService) Snapshot(ctx context.Context) (protocol.StateSnapshot, error) {
	result := make(chan protocol.StateSnapshot, 1)
	err := s.exec.Do(ctx, func(context.Context) {
		result <- s.app.Snapshot()
	})
	if err != nil {
		return protocol.StateSnapshot{}, err
	}
	return <-result, nil
}

package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/room_manager_mock.go -package=mocks . RoomManager

// RoomManager はセッションが参加するルームを決めます。
type RoomManager interface {
	GetRoom(ctx context.Context, sessionID SessionID) (RoomID, error)
}

// SimpleRoomManager は全セッションを同じキッチンに割り当てます。
type SimpleRoomManager struct {
	defaultRoom RoomID
}

func NewSimpleRoomManager(defaultRoom RoomID) *SimpleRoomManager {
	return &SimpleRoomManager{defaultRoom: defaultRoom}
}

func (m *SimpleRoomManager) GetRoom(_ context.Context, _ SessionID) (RoomID, error) {
	return m.defaultRoom, nil
}

package storage_room

import (
	"context"
	"sync"

	"github.com/DMQQ/movie-picker-server/internal/model"
)

// IssuedIDs remembers every room id handed out by this process.
// Used when no shared id set is configured.
type IssuedIDs struct {
	mu  sync.Mutex
	ids map[model.RoomID]struct{}
}

func NewIssuedIDs() *IssuedIDs {
	return &IssuedIDs{
		ids: make(map[model.RoomID]struct{}),
	}
}

// Reserve reports false when roomID was issued before.
func (s *IssuedIDs) Reserve(_ context.Context, roomID model.RoomID) (bool, error) {
	if roomID == model.EmptyRoomID {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[roomID]; ok {
		return false, nil
	}
	s.ids[roomID] = struct{}{}
	return true, nil
}

package storage_room

import (
	"errors"
	"sync"

	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/samber/lo"
)

var ErrDuplicateID = errors.New("room id already registered")

// Registry owns which rooms exist. It never touches room state.
type Registry struct {
	mu    sync.RWMutex
	rooms map[model.RoomID]*model.Room
}

func New() *Registry {
	return &Registry{
		rooms: make(map[model.RoomID]*model.Room),
	}
}

func (r *Registry) Create(room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[room.ID()]; exists {
		return ErrDuplicateID
	}
	r.rooms[room.ID()] = room
	return nil
}

func (r *Registry) Get(id model.RoomID) (*model.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	return room, ok
}

func (r *Registry) Delete(id model.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, id)
}

// Holds reports whether id still maps to this exact room instance.
// Used to re-validate a room after its lock was (re)acquired.
func (r *Registry) Holds(id model.RoomID, room *model.Room) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cur, ok := r.rooms[id]
	return ok && cur == room
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

func (r *Registry) IDs() []model.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Keys(r.rooms)
}

package storage_connection

import (
	"sync"

	"github.com/DMQQ/movie-picker-server/internal/model"
)

// Entry is what is known about a live connection.
type Entry struct {
	UserID model.UserID
	RoomID model.RoomID
}

func (e Entry) InRoom() bool {
	return e.RoomID != model.EmptyRoomID
}

// Directory maps transport connections to the logical user and the room
// they last entered, so an abrupt disconnect can be cleaned up.
type Directory struct {
	mu      sync.RWMutex
	entries map[model.ConnRef]Entry
}

func New() *Directory {
	return &Directory{
		entries: make(map[model.ConnRef]Entry),
	}
}

func (d *Directory) Bind(conn model.ConnRef, userID model.UserID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries[conn] = Entry{UserID: userID}
}

func (d *Directory) Lookup(conn model.ConnRef) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.entries[conn]
	return e, ok
}

// EnterRoom records roomID as the connection's room and returns the
// entry as it was before.
func (d *Directory) EnterRoom(conn model.ConnRef, roomID model.RoomID) (Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev, ok := d.entries[conn]
	if !ok {
		return Entry{}, false
	}
	next := prev
	next.RoomID = roomID
	d.entries[conn] = next
	return prev, true
}

// LeaveRoom clears the room only if it is still roomID.
func (d *Directory) LeaveRoom(conn model.ConnRef, roomID model.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[conn]; ok && e.RoomID == roomID {
		e.RoomID = model.EmptyRoomID
		d.entries[conn] = e
	}
}

func (d *Directory) Remove(conn model.ConnRef) (Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[conn]
	delete(d.entries, conn)
	return e, ok
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.entries)
}

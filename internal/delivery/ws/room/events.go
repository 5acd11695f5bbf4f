package ws_room

import (
	"bytes"
	"encoding/json"

	"github.com/DMQQ/movie-picker-server/internal/model"
)

// Inbound events.
const (
	EventCreateRoom     = "create-room"
	EventJoinRoom       = "join-room"
	EventLeaveRoom      = "leave-room"
	EventGetMovies      = "get-movies"
	EventGetOverview    = "get-overview"
	EventGetRoomDetails = "get-room-details"
	EventGetBuddyStatus = "get-buddy-status"
	EventPickMovie      = "pick-movie"
	EventFinish         = "finish"
	EventDeleteRoom     = "delete-room"
)

// Outbound events.
const (
	EventAck         = "ack"
	EventMovies      = "movies"
	EventRoomDetails = "room-details"
	EventRoomJoined  = "room-joined"
	EventActive      = "active"
	EventOverview    = "overview"
	EventBuddyStatus = "buddy-status"
	EventMatched     = "matched"
	EventRoomDeleted = "room-deleted"
	EventError       = "error"
)

type Inbound struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type Outbound struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

type CreateRoomPayload struct {
	MediaType   string `json:"mediaType" validate:"required,media_type"`
	PageRange   int    `json:"pageRange" validate:"required,min=1"`
	Genres      []int  `json:"genres" validate:"omitempty,dive,gte=0"`
	DisplayName string `json:"displayName" validate:"max=64"`
}

type JoinRoomPayload struct {
	RoomID      string `json:"roomId" validate:"required"`
	DisplayName string `json:"displayName" validate:"max=64"`
}

// RoomPayload also accepts a bare JSON string holding the room id.
type RoomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

func (p *RoomPayload) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return json.Unmarshal(data, &p.RoomID)
	}
	type plain RoomPayload
	return json.Unmarshal(data, (*plain)(p))
}

type PickPayload struct {
	RoomID string       `json:"roomId" validate:"required"`
	ItemID model.ItemID `json:"itemId" validate:"gte=0"`
}

type CreateRoomAck struct {
	RoomID  model.RoomID   `json:"roomId"`
	Details model.Snapshot `json:"details"`
}

type JoinRoomAck struct {
	Joined bool `json:"joined"`
}

type MoviesMessage struct {
	Movies []model.Item `json:"movies"`
}

type BuddyStatusMessage struct {
	Finished bool `json:"finished"`
}

type ErrorMessage struct {
	Event   string       `json:"event"`
	RoomID  model.RoomID `json:"roomId,omitempty"`
	Message string       `json:"message"`
}

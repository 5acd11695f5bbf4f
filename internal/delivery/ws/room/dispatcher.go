package ws_room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/DMQQ/movie-picker-server/internal/model"
	storage_connection "github.com/DMQQ/movie-picker-server/internal/storage/connection"
	usecase_room "github.com/DMQQ/movie-picker-server/internal/usecase/room"
	"github.com/go-playground/validator/v10"
)

type Usecase interface {
	Create(ctx context.Context, userID model.UserID, conn model.ConnRef, in usecase_room.CreateInput) (model.Snapshot, error)
	Join(ctx context.Context, roomID model.RoomID, userID model.UserID, conn model.ConnRef, displayName string) (usecase_room.JoinResult, error)
	Leave(ctx context.Context, roomID model.RoomID, userID model.UserID) (usecase_room.LeaveResult, error)
	Delete(ctx context.Context, roomID model.RoomID, userID model.UserID) (usecase_room.Outcome[model.RoomID], error)
	Batch(ctx context.Context, roomID model.RoomID, userID model.UserID) ([]model.Item, error)
	Overview(ctx context.Context, roomID model.RoomID, userID model.UserID) (usecase_room.Outcome[[]model.Match], error)
	Details(ctx context.Context, roomID model.RoomID, userID model.UserID) (usecase_room.Outcome[model.Snapshot], error)
	BuddyStatus(ctx context.Context, roomID model.RoomID, userID model.UserID) (usecase_room.Outcome[bool], error)
	Pick(ctx context.Context, roomID model.RoomID, userID model.UserID, itemID model.ItemID) (usecase_room.PickResult, error)
	Finish(ctx context.Context, roomID model.RoomID, userID model.UserID) (usecase_room.FinishResult, error)
}

// Sender delivers outbound events. Implemented by Hub.
type Sender interface {
	SendTo(ref model.ConnRef, event Outbound)
	Broadcast(audience []model.ConnRef, event Outbound)
}

// Dispatcher turns inbound events into room operations and routes the
// results back out. A connection is Connected after Connect, InRoom once
// it created or joined a room, and gone after Disconnect.
type Dispatcher struct {
	usecase   Usecase
	directory *storage_connection.Directory
	sender    Sender
	validate  *validator.Validate

	logger *slog.Logger
}

func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("media_type", func(fl validator.FieldLevel) bool {
		return model.MediaType(fl.Field().String()).Valid()
	})
	return v
}

func NewDispatcher(usecase Usecase, directory *storage_connection.Directory, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		usecase:   usecase,
		directory: directory,
		sender:    sender,
		validate:  NewValidator(),
		logger:    logger,
	}
}

func (d *Dispatcher) Connect(ref model.ConnRef, userID model.UserID) {
	d.directory.Bind(ref, userID)
	d.logger.Info("connected", slog.String("conn_id", string(ref)), slog.String("user_id", userID))
}

// Disconnect runs the leave-room cleanup for the connection's last room
// and forgets the connection.
func (d *Dispatcher) Disconnect(ctx context.Context, ref model.ConnRef) {
	entry, ok := d.directory.Remove(ref)
	if !ok {
		return
	}
	if entry.InRoom() {
		d.leave(ctx, ref, entry.UserID, entry.RoomID)
	}
	d.logger.Info("disconnected", slog.String("conn_id", string(ref)), slog.String("user_id", entry.UserID))
}

// Handle processes one inbound frame.
func (d *Dispatcher) Handle(ctx context.Context, ref model.ConnRef, raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil || in.Type == "" {
		d.sender.SendTo(ref, Outbound{Type: EventError, Data: ErrorMessage{Message: "malformed message"}})
		return
	}

	entry, ok := d.directory.Lookup(ref)
	if !ok {
		d.logger.Warn("event from unknown connection", slog.String("conn_id", string(ref)), slog.String("event", in.Type))
		return
	}

	var err error
	switch in.Type {
	case EventCreateRoom:
		err = d.createRoom(ctx, ref, entry, in)
	case EventJoinRoom:
		err = d.joinRoom(ctx, ref, entry, in)
	case EventLeaveRoom:
		err = d.withRoom(in, func(roomID model.RoomID) error {
			d.directory.LeaveRoom(ref, roomID)
			return d.leave(ctx, ref, entry.UserID, roomID)
		})
	case EventGetMovies:
		err = d.withRoom(in, func(roomID model.RoomID) error {
			batch, err := d.usecase.Batch(ctx, roomID, entry.UserID)
			if err != nil {
				return err
			}
			d.sender.SendTo(ref, Outbound{Type: EventMovies, Data: MoviesMessage{Movies: batch}})
			return nil
		})
	case EventGetOverview:
		err = d.withRoom(in, func(roomID model.RoomID) error {
			out, err := d.usecase.Overview(ctx, roomID, entry.UserID)
			if err != nil {
				return err
			}
			d.sender.Broadcast(out.Audience, Outbound{Type: EventOverview, Data: out.Value})
			return nil
		})
	case EventGetRoomDetails:
		err = d.withRoom(in, func(roomID model.RoomID) error {
			out, err := d.usecase.Details(ctx, roomID, entry.UserID)
			if err != nil {
				return err
			}
			d.sender.Broadcast(out.Audience, Outbound{Type: EventRoomDetails, Data: out.Value})
			return nil
		})
	case EventGetBuddyStatus:
		err = d.withRoom(in, func(roomID model.RoomID) error {
			out, err := d.usecase.BuddyStatus(ctx, roomID, entry.UserID)
			if err != nil {
				return err
			}
			d.sender.Broadcast(out.Audience, Outbound{Type: EventBuddyStatus, Data: BuddyStatusMessage{Finished: out.Value}})
			return nil
		})
	case EventPickMovie:
		err = d.pickMovie(ctx, entry, in)
	case EventFinish:
		err = d.withRoom(in, func(roomID model.RoomID) error {
			res, err := d.usecase.Finish(ctx, roomID, entry.UserID)
			if err != nil {
				return err
			}
			if res.Advanced {
				d.sender.Broadcast(res.Audience, Outbound{Type: EventMovies, Data: MoviesMessage{Movies: res.Batch}})
			}
			return nil
		})
	case EventDeleteRoom:
		err = d.withRoom(in, func(roomID model.RoomID) error {
			out, err := d.usecase.Delete(ctx, roomID, entry.UserID)
			if err != nil {
				return err
			}
			for _, member := range out.Audience {
				d.directory.LeaveRoom(member, roomID)
			}
			d.sender.Broadcast(out.Audience, Outbound{Type: EventRoomDeleted, Data: out.Value})
			return nil
		})
	default:
		d.sender.SendTo(ref, Outbound{
			Type:      EventError,
			RequestID: in.RequestID,
			Data:      ErrorMessage{Event: in.Type, Message: "unknown event"},
		})
		return
	}

	if err != nil {
		d.fail(ref, entry.UserID, in, err)
	}
}

func (d *Dispatcher) createRoom(ctx context.Context, ref model.ConnRef, entry storage_connection.Entry, in Inbound) error {
	var p CreateRoomPayload
	if err := d.decode(in.Data, &p); err != nil {
		return err
	}

	snapshot, err := d.usecase.Create(ctx, entry.UserID, ref, usecase_room.CreateInput{
		MediaType:   model.MediaType(p.MediaType),
		PageRange:   p.PageRange,
		Genres:      p.Genres,
		DisplayName: p.DisplayName,
	})
	if err != nil {
		return err
	}

	d.switchRoom(ctx, ref, entry, snapshot.ID)
	d.directory.EnterRoom(ref, snapshot.ID)
	d.sender.SendTo(ref, Outbound{
		Type:      EventAck,
		RequestID: in.RequestID,
		Data:      CreateRoomAck{RoomID: snapshot.ID, Details: snapshot},
	})
	return nil
}

func (d *Dispatcher) joinRoom(ctx context.Context, ref model.ConnRef, entry storage_connection.Entry, in Inbound) error {
	var p JoinRoomPayload
	if err := d.decode(in.Data, &p); err != nil {
		return err
	}
	roomID := model.RoomID(p.RoomID)

	res, err := d.usecase.Join(ctx, roomID, entry.UserID, ref, p.DisplayName)
	if err != nil && !errors.Is(err, usecase_room.ErrCatalogUnavailable) {
		if errors.Is(err, usecase_room.ErrResourceNotFound) {
			d.sender.SendTo(ref, Outbound{Type: EventAck, RequestID: in.RequestID, Data: JoinRoomAck{Joined: false}})
			return nil
		}
		return err
	}

	// Only a join that went through gives up the previous room.
	d.switchRoom(ctx, ref, entry, roomID)
	d.directory.EnterRoom(ref, roomID)
	d.sender.SendTo(ref, Outbound{Type: EventAck, RequestID: in.RequestID, Data: JoinRoomAck{Joined: true}})
	d.sender.SendTo(ref, Outbound{Type: EventMovies, Data: MoviesMessage{Movies: res.Batch}})
	d.sender.SendTo(ref, Outbound{Type: EventRoomDetails, Data: res.Snapshot})
	d.sender.SendTo(ref, Outbound{Type: EventRoomJoined, Data: res.Snapshot})
	d.sender.Broadcast(res.Audience, Outbound{Type: EventActive, Data: res.Roster})

	// Membership stands; the first batch is still missing.
	return err
}

func (d *Dispatcher) pickMovie(ctx context.Context, entry storage_connection.Entry, in Inbound) error {
	var p PickPayload
	if err := d.decode(in.Data, &p); err != nil {
		return err
	}

	res, err := d.usecase.Pick(ctx, model.RoomID(p.RoomID), entry.UserID, p.ItemID)
	if err != nil {
		return err
	}
	if res.Matched {
		d.sender.Broadcast(res.Audience, Outbound{Type: EventMatched, Data: res.Item})
	}
	return nil
}

// switchRoom leaves the room the connection was in before it entered next.
// Callers run it once next is known to exist.
func (d *Dispatcher) switchRoom(ctx context.Context, ref model.ConnRef, entry storage_connection.Entry, next model.RoomID) {
	if !entry.InRoom() || entry.RoomID == next {
		return
	}
	d.directory.LeaveRoom(ref, entry.RoomID)
	if err := d.leave(ctx, ref, entry.UserID, entry.RoomID); err != nil {
		d.logger.Debug("previous room already gone",
			slog.String("room_id", string(entry.RoomID)),
			slog.String("user_id", entry.UserID))
	}
}

func (d *Dispatcher) leave(ctx context.Context, ref model.ConnRef, userID model.UserID, roomID model.RoomID) error {
	res, err := d.usecase.Leave(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !res.Deleted {
		d.sender.Broadcast(res.Audience, Outbound{Type: EventActive, Data: res.Roster})
	}
	return nil
}

// withRoom decodes a room-only payload and runs fn with its room id.
func (d *Dispatcher) withRoom(in Inbound, fn func(roomID model.RoomID) error) error {
	var p RoomPayload
	if err := d.decode(in.Data, &p); err != nil {
		return err
	}
	return fn(model.RoomID(p.RoomID))
}

func (d *Dispatcher) decode(data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return usecase_room.ErrInvalidRequest
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Join(usecase_room.ErrInvalidRequest, err)
	}
	if err := d.validate.Struct(dst); err != nil {
		return errors.Join(usecase_room.ErrInvalidRequest, err)
	}
	return nil
}

func (d *Dispatcher) fail(ref model.ConnRef, userID model.UserID, in Inbound, err error) {
	log := d.logger.With(
		slog.String("event", in.Type),
		slog.String("conn_id", string(ref)),
		slog.String("user_id", userID))

	switch {
	case errors.Is(err, usecase_room.ErrInvalidRequest):
		log.Debug("invalid request", slog.Any("error", err))
		if in.RequestID != "" {
			d.sender.SendTo(ref, Outbound{Type: EventAck, RequestID: in.RequestID, Error: "invalid request"})
		}
	case errors.Is(err, usecase_room.ErrResourceNotFound), errors.Is(err, usecase_room.ErrUnauthorized):
		log.Debug("request ignored", slog.Any("error", err))
	case errors.Is(err, usecase_room.ErrCatalogUnavailable):
		d.sender.SendTo(ref, Outbound{
			Type:      EventError,
			RequestID: in.RequestID,
			Data:      ErrorMessage{Event: in.Type, RoomID: roomOf(in), Message: "catalog unavailable, try again"},
		})
	default:
		log.Error("event failed", slog.Any("error", err))
		d.sender.SendTo(ref, Outbound{
			Type:      EventError,
			RequestID: in.RequestID,
			Data:      ErrorMessage{Event: in.Type, RoomID: roomOf(in), Message: "internal error"},
		})
	}
}

func roomOf(in Inbound) model.RoomID {
	var p RoomPayload
	if err := json.Unmarshal(in.Data, &p); err != nil {
		return model.EmptyRoomID
	}
	return model.RoomID(p.RoomID)
}

package usecase_room

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/DMQQ/movie-picker-server/internal/model"
	storage_room "github.com/DMQQ/movie-picker-server/internal/storage/room"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrResourceNotFound   = errors.New("no such resource")
	ErrUnauthorized       = errors.New("not allowed")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrRoomsUnavailable   = errors.New("no available rooms")
	ErrInternal           = errors.New("internal error")
)

const (
	defaultFetchTimeout = 5 * time.Second
	defaultIDRetries    = 3

	DefaultDisplayName = "guest"
)

//go:generate mockery --name=Catalog --output=./mocks/catalog --filename=catalog.go
type Catalog interface {
	FetchBatch(ctx context.Context, mediaType model.MediaType, page int, genres []int) ([]model.Item, error)
	FetchItemDetail(ctx context.Context, itemID model.ItemID, mediaType model.MediaType) (model.Item, error)
}

//go:generate mockery --name=IDSet --output=./mocks/idset --filename=idset.go
type IDSet interface {
	Reserve(ctx context.Context, roomID model.RoomID) (bool, error)
}

//go:generate mockery --name=MatchJournal --output=./mocks/journal --filename=journal.go
type MatchJournal interface {
	Append(ctx context.Context, record model.MatchRecord) error
}

type Registry interface {
	Create(room *model.Room) error
	Get(id model.RoomID) (*model.Room, bool)
	Delete(id model.RoomID)
	Holds(id model.RoomID, room *model.Room) bool
}

type Usecase struct {
	registry Registry
	catalog  Catalog
	ids      IDSet
	journal  MatchJournal

	fetchTimeout time.Duration
	idRetries    int
	intn         func(n int) int
	now          func() time.Time

	logger *slog.Logger
}

type Option func(*Usecase)

func WithIDSet(ids IDSet) Option {
	return func(u *Usecase) {
		u.ids = ids
	}
}

func WithJournal(journal MatchJournal) Option {
	return func(u *Usecase) {
		u.journal = journal
	}
}

func WithFetchTimeout(timeout time.Duration) Option {
	return func(u *Usecase) {
		if timeout > 0 {
			u.fetchTimeout = timeout
		}
	}
}

func WithIDRetries(retries int) Option {
	return func(u *Usecase) {
		if retries > 0 {
			u.idRetries = retries
		}
	}
}

// WithRand replaces the source used for initial pages and room ids.
// intn must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(u *Usecase) {
		u.intn = intn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(
	registry Registry,
	catalog Catalog,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		registry:     registry,
		catalog:      catalog,
		ids:          storage_room.NewIssuedIDs(),
		fetchTimeout: defaultFetchTimeout,
		idRetries:    defaultIDRetries,
		intn:         rand.IntN,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type CreateInput struct {
	MediaType   model.MediaType
	PageRange   int
	Genres      []int
	DisplayName string
}

// Outcome carries a payload and the connections it is meant for.
type Outcome[T any] struct {
	Value    T
	Audience []model.ConnRef
}

type JoinResult struct {
	Batch    []model.Item
	Snapshot model.Snapshot
	Roster   []string
	Audience []model.ConnRef
}

type LeaveResult struct {
	Deleted  bool
	Roster   []string
	Audience []model.ConnRef
}

type PickResult struct {
	Matched  bool
	Item     model.Item
	Audience []model.ConnRef
}

type FinishResult struct {
	Advanced bool
	Page     int
	Batch    []model.Item
	Audience []model.ConnRef
}

// Create opens a room with the caller as its host.
func (u *Usecase) Create(ctx context.Context, userID model.UserID, conn model.ConnRef, in CreateInput) (model.Snapshot, error) {
	if !in.MediaType.Valid() || in.PageRange < 1 || userID == "" {
		return model.Snapshot{}, ErrInvalidRequest
	}
	if in.DisplayName == "" {
		in.DisplayName = DefaultDisplayName
	}
	page := 1 + u.intn(in.PageRange)

	// Assuming that ids can conflict.
	// Retrying...
	for range u.idRetries {
		id := u.buildRoomID()

		reserved, err := u.ids.Reserve(ctx, id)
		if err != nil {
			return model.Snapshot{}, errors.Join(ErrInternal, err)
		}
		if !reserved {
			continue
		}

		room, err := model.NewRoom(model.RoomSpec{
			ID:        id,
			MediaType: in.MediaType,
			Page:      page,
			Genres:    in.Genres,
		})
		if err != nil {
			return model.Snapshot{}, errors.Join(ErrInvalidRequest, err)
		}
		// Nobody else can see the room before Create.
		if err := room.AssignHost(userID, conn, in.DisplayName); err != nil {
			return model.Snapshot{}, errors.Join(ErrInvalidRequest, err)
		}
		snapshot := room.Snapshot()

		if err := u.registry.Create(room); err != nil {
			if errors.Is(err, storage_room.ErrDuplicateID) {
				continue
			}
			return model.Snapshot{}, errors.Join(ErrInternal, err)
		}

		u.logger.Info("room created",
			slog.String("room_id", string(id)),
			slog.String("user_id", userID),
			slog.String("media_type", string(in.MediaType)),
			slog.Int("page", page))
		return snapshot, nil
	}
	return model.Snapshot{}, ErrRoomsUnavailable
}

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// XXXXXX-XXXXXX-ROOM
func (u *Usecase) buildRoomID() model.RoomID {
	const groupLen = 6
	var builder strings.Builder
	builder.Grow(2*groupLen + len("--ROOM"))

	for g := range 2 {
		for range groupLen {
			builder.WriteByte(idAlphabet[u.intn(len(idAlphabet))])
		}
		if g == 0 {
			builder.WriteByte('-')
		}
	}
	builder.WriteString("-ROOM")

	return model.RoomID(builder.String())
}

// acquire returns the room locked. The caller must Unlock it.
func (u *Usecase) acquire(roomID model.RoomID) (*model.Room, error) {
	room, ok := u.registry.Get(roomID)
	if !ok {
		return nil, ErrResourceNotFound
	}
	room.Lock()
	// Deleted while we were waiting for the lock.
	if !u.registry.Holds(roomID, room) {
		room.Unlock()
		return nil, ErrResourceNotFound
	}
	return room, nil
}

// acquireMember is acquire plus a membership check.
func (u *Usecase) acquireMember(roomID model.RoomID, userID model.UserID) (*model.Room, error) {
	room, err := u.acquire(roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(userID) {
		room.Unlock()
		return nil, ErrResourceNotFound
	}
	return room, nil
}

// Join adds the caller to the room. Joining twice is tolerated.
// The first batch is fetched when the room has none yet; on a catalog
// failure the membership stands and ErrCatalogUnavailable is returned
// together with the result, so a retried join fetches again.
func (u *Usecase) Join(ctx context.Context, roomID model.RoomID, userID model.UserID, conn model.ConnRef, displayName string) (JoinResult, error) {
	if roomID == model.EmptyRoomID || userID == "" {
		return JoinResult{}, ErrInvalidRequest
	}
	if displayName == "" {
		displayName = DefaultDisplayName
	}

	room, err := u.acquire(roomID)
	if err != nil {
		return JoinResult{}, err
	}

	if err := room.AddMember(userID, conn, displayName); err != nil && !errors.Is(err, model.ErrAlreadyMember) {
		room.Unlock()
		return JoinResult{}, errors.Join(ErrInvalidRequest, err)
	}

	var fetchErr error
	if len(room.Batch()) == 0 {
		mediaType, page, genres := room.MediaType(), room.Page(), room.Genres()
		room.Unlock()

		batch, err := u.fetchBatch(ctx, mediaType, page, genres)

		if room, err = u.relock(room, roomID, userID, err); err != nil {
			if !errors.Is(err, ErrCatalogUnavailable) {
				return JoinResult{}, err
			}
			fetchErr = err
		} else if len(room.Batch()) == 0 && room.Page() == page {
			room.SetBatch(batch)
		}
	}
	defer room.Unlock()

	u.logger.Debug("member joined",
		slog.String("room_id", string(roomID)),
		slog.String("user_id", userID),
		slog.Int("members", room.Len()))

	return JoinResult{
		Batch:    room.Batch(),
		Snapshot: room.Snapshot(),
		Roster:   room.Roster(),
		Audience: room.Audience(),
	}, fetchErr
}

// relock takes the room lock back after a fetch and checks the room and
// the member are still there. A fetch error is reported only when the room
// survived, and then the room is returned locked.
func (u *Usecase) relock(room *model.Room, roomID model.RoomID, userID model.UserID, fetchErr error) (*model.Room, error) {
	room.Lock()
	if !u.registry.Holds(roomID, room) || (userID != "" && !room.HasMember(userID)) {
		room.Unlock()
		return nil, ErrResourceNotFound
	}
	if fetchErr != nil {
		return room, fetchErr
	}
	return room, nil
}

// Leave removes the caller. The room is deleted in the same step that
// leaves it empty.
func (u *Usecase) Leave(ctx context.Context, roomID model.RoomID, userID model.UserID) (LeaveResult, error) {
	room, err := u.acquireMember(roomID, userID)
	if err != nil {
		return LeaveResult{}, err
	}
	defer room.Unlock()

	if err := room.RemoveMember(userID); err != nil {
		return LeaveResult{}, errors.Join(ErrResourceNotFound, err)
	}

	if room.IsEmpty() {
		u.registry.Delete(roomID)
		u.logger.Info("room deleted, last member left",
			slog.String("room_id", string(roomID)),
			slog.String("user_id", userID))
		return LeaveResult{Deleted: true, Roster: []string{}, Audience: []model.ConnRef{}}, nil
	}

	return LeaveResult{
		Roster:   room.Roster(),
		Audience: room.Audience(),
	}, nil
}

// Delete closes the room. Only the host may do it.
func (u *Usecase) Delete(ctx context.Context, roomID model.RoomID, userID model.UserID) (Outcome[model.RoomID], error) {
	room, err := u.acquire(roomID)
	if err != nil {
		return Outcome[model.RoomID]{}, err
	}
	defer room.Unlock()

	if !room.IsHost(userID) {
		return Outcome[model.RoomID]{}, ErrUnauthorized
	}

	audience := room.Audience()
	u.registry.Delete(roomID)

	u.logger.Info("room deleted by host",
		slog.String("room_id", string(roomID)),
		slog.String("user_id", userID))
	return Outcome[model.RoomID]{Value: roomID, Audience: audience}, nil
}

func (u *Usecase) Batch(ctx context.Context, roomID model.RoomID, userID model.UserID) ([]model.Item, error) {
	room, err := u.acquireMember(roomID, userID)
	if err != nil {
		return nil, err
	}
	defer room.Unlock()

	return room.Batch(), nil
}

func (u *Usecase) Overview(ctx context.Context, roomID model.RoomID, userID model.UserID) (Outcome[[]model.Match], error) {
	room, err := u.acquireMember(roomID, userID)
	if err != nil {
		return Outcome[[]model.Match]{}, err
	}
	defer room.Unlock()

	return Outcome[[]model.Match]{Value: room.Matches(), Audience: room.Audience()}, nil
}

func (u *Usecase) Details(ctx context.Context, roomID model.RoomID, userID model.UserID) (Outcome[model.Snapshot], error) {
	room, err := u.acquireMember(roomID, userID)
	if err != nil {
		return Outcome[model.Snapshot]{}, err
	}
	defer room.Unlock()

	return Outcome[model.Snapshot]{Value: room.Snapshot(), Audience: room.Audience()}, nil
}

// BuddyStatus reports whether every member finished the round.
func (u *Usecase) BuddyStatus(ctx context.Context, roomID model.RoomID, userID model.UserID) (Outcome[bool], error) {
	room, err := u.acquireMember(roomID, userID)
	if err != nil {
		return Outcome[bool]{}, err
	}
	defer room.Unlock()

	return Outcome[bool]{Value: room.AllFinished(), Audience: room.Audience()}, nil
}

package model

import (
	"errors"
	"slices"
	"sync"

	"github.com/samber/lo"
)

var (
	ErrInvalidRoomID    = errors.New("empty room id")
	ErrInvalidMediaType = errors.New("unknown media type")
	ErrInvalidPage      = errors.New("page must be positive")
	ErrInvalidMember    = errors.New("empty user id")
	ErrAlreadyMember    = errors.New("already a member")
	ErrMemberNotFound   = errors.New("no such member")
	ErrRoundPending     = errors.New("round is not complete")
)

type RoomID string

const EmptyRoomID RoomID = ""

type UserID = string

// ConnRef addresses a connection owned by the transport layer.
// The room only uses it to tell the transport where to deliver.
type ConnRef string

type Member struct {
	UserID      UserID
	ConnRef     ConnRef
	DisplayName string
	Picks       []ItemID
	Finished    bool
	IsAdmin     bool
}

type Match struct {
	ItemID ItemID `json:"id"`
	Title  string `json:"title"`
}

type MatchOutcome struct {
	Matched bool
	ItemID  ItemID
}

var NoMatch = MatchOutcome{}

type RoundOutcome int

const (
	RoundPending RoundOutcome = iota
	RoundComplete
)

func (o RoundOutcome) String() string {
	if o == RoundComplete {
		return "complete"
	}
	return "pending"
}

// RoomSpec carries everything a room needs at construction time.
type RoomSpec struct {
	ID        RoomID
	MediaType MediaType
	Page      int
	Genres    []int
}

// Snapshot is the read-only view broadcast as room details.
type Snapshot struct {
	ID        RoomID    `json:"id"`
	Host      UserID    `json:"host"`
	MediaType MediaType `json:"type"`
	Page      int       `json:"page"`
	Genres    []int     `json:"genres"`
	Users     []string  `json:"users"`
	Matches   int       `json:"matches"`
}

// Room is one matching session.
//
// Room methods do not synchronize. Callers serialize access by holding
// the room lock (Lock/Unlock) for the whole read-modify-write.
type Room struct {
	mu sync.Mutex

	id         RoomID
	hostUserID UserID
	mediaType  MediaType
	genres     []int
	page       int

	batch   []Item
	matches []Match

	members map[UserID]*Member
	order   []UserID
}

func NewRoom(spec RoomSpec) (*Room, error) {
	if spec.ID == EmptyRoomID {
		return nil, ErrInvalidRoomID
	}
	if !spec.MediaType.Valid() {
		return nil, ErrInvalidMediaType
	}
	if spec.Page < 1 {
		return nil, ErrInvalidPage
	}

	return &Room{
		id:        spec.ID,
		mediaType: spec.MediaType,
		genres:    lo.Uniq(spec.Genres),
		page:      spec.Page,
		members:   make(map[UserID]*Member),
	}, nil
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// AssignHost makes userID the host, inserting it as a member if needed.
// Any previous host loses admin rights.
func (r *Room) AssignHost(userID UserID, conn ConnRef, displayName string) error {
	if userID == "" {
		return ErrInvalidMember
	}

	if prev, ok := r.members[r.hostUserID]; ok {
		prev.IsAdmin = false
	}

	m, ok := r.members[userID]
	if !ok {
		m = &Member{UserID: userID, ConnRef: conn, DisplayName: displayName, Picks: []ItemID{}}
		r.members[userID] = m
		r.order = append(r.order, userID)
	}
	m.IsAdmin = true
	r.hostUserID = userID
	return nil
}

func (r *Room) AddMember(userID UserID, conn ConnRef, displayName string) error {
	if userID == "" {
		return ErrInvalidMember
	}
	if _, ok := r.members[userID]; ok {
		return ErrAlreadyMember
	}

	r.members[userID] = &Member{
		UserID:      userID,
		ConnRef:     conn,
		DisplayName: displayName,
		Picks:       []ItemID{},
	}
	r.order = append(r.order, userID)
	return nil
}

// RemoveMember deletes the member. When the host leaves and others remain,
// the earliest joined member becomes host.
func (r *Room) RemoveMember(userID UserID) error {
	if _, ok := r.members[userID]; !ok {
		return ErrMemberNotFound
	}

	delete(r.members, userID)
	r.order = slices.DeleteFunc(r.order, func(id UserID) bool { return id == userID })

	if userID == r.hostUserID {
		r.hostUserID = ""
		if len(r.order) > 0 {
			next := r.members[r.order[0]]
			next.IsAdmin = true
			r.hostUserID = next.UserID
		}
	}
	return nil
}

// RecordPick appends the pick and reports a match when every member
// has picked itemID at some point during the current round.
func (r *Room) RecordPick(userID UserID, itemID ItemID) (MatchOutcome, error) {
	m, ok := r.members[userID]
	if !ok {
		return NoMatch, ErrMemberNotFound
	}
	m.Picks = append(m.Picks, itemID)

	if !r.AllPicked(itemID) {
		return NoMatch, nil
	}
	return MatchOutcome{Matched: true, ItemID: itemID}, nil
}

// AllPicked reports whether itemID is a match right now: at least two
// members, and every current member has picked it this round.
func (r *Room) AllPicked(itemID ItemID) bool {
	if itemID == NoSelection || len(r.members) <= 1 {
		return false
	}
	return lo.EveryBy(r.order, func(id UserID) bool {
		return lo.Contains(r.members[id].Picks, itemID)
	})
}

// RecordMatch appends the match unless itemID is already recorded.
// Reports whether the match was new.
func (r *Room) RecordMatch(itemID ItemID, title string) bool {
	if r.HasMatch(itemID) {
		return false
	}
	r.matches = append(r.matches, Match{ItemID: itemID, Title: title})
	return true
}

func (r *Room) HasMatch(itemID ItemID) bool {
	return lo.ContainsBy(r.matches, func(m Match) bool { return m.ItemID == itemID })
}

func (r *Room) MarkFinished(userID UserID) (RoundOutcome, error) {
	m, ok := r.members[userID]
	if !ok {
		return RoundPending, ErrMemberNotFound
	}
	m.Finished = true

	if r.AllFinished() {
		return RoundComplete, nil
	}
	return RoundPending, nil
}

func (r *Room) AllFinished() bool {
	if len(r.members) == 0 {
		return false
	}
	return lo.EveryBy(lo.Values(r.members), func(m *Member) bool { return m.Finished })
}

// AdvanceRound moves to the next page. It refuses to run unless every
// member has finished, in which case nothing changes.
func (r *Room) AdvanceRound(next []Item) error {
	if !r.AllFinished() {
		return ErrRoundPending
	}

	r.page++
	r.batch = slices.Clone(next)
	for _, m := range r.members {
		m.Picks = []ItemID{}
		m.Finished = false
	}
	return nil
}

func (r *Room) SetBatch(batch []Item) {
	r.batch = slices.Clone(batch)
}

func (r *Room) ID() RoomID { return r.id }

func (r *Room) Host() UserID { return r.hostUserID }

func (r *Room) Page() int { return r.page }

func (r *Room) MediaType() MediaType { return r.mediaType }

func (r *Room) Genres() []int { return slices.Clone(r.genres) }

func (r *Room) Batch() []Item { return append([]Item{}, r.batch...) }

func (r *Room) Matches() []Match { return append([]Match{}, r.matches...) }

func (r *Room) Len() int { return len(r.members) }

func (r *Room) IsEmpty() bool { return len(r.members) == 0 }

func (r *Room) IsHost(id UserID) bool { return id != "" && id == r.hostUserID }

func (r *Room) HasMember(id UserID) bool {
	_, ok := r.members[id]
	return ok
}

// Members returns copies in join order.
func (r *Room) Members() []Member {
	return lo.Map(r.order, func(id UserID, _ int) Member {
		m := *r.members[id]
		m.Picks = slices.Clone(m.Picks)
		return m
	})
}

func (r *Room) Member(id UserID) (Member, bool) {
	m, ok := r.members[id]
	if !ok {
		return Member{}, false
	}
	c := *m
	c.Picks = slices.Clone(m.Picks)
	return c, true
}

// Audience lists the connections of all current members.
func (r *Room) Audience() []ConnRef {
	return lo.Map(r.order, func(id UserID, _ int) ConnRef { return r.members[id].ConnRef })
}

// Roster lists display names in join order.
func (r *Room) Roster() []string {
	return lo.Map(r.order, func(id UserID, _ int) string { return r.members[id].DisplayName })
}

func (r *Room) Snapshot() Snapshot {
	return Snapshot{
		ID:        r.id,
		Host:      r.hostUserID,
		MediaType: r.mediaType,
		Page:      r.page,
		Genres:    r.Genres(),
		Users:     r.Roster(),
		Matches:   len(r.matches),
	}
}

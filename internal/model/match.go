package model

import "time"

// MatchRecord is one journaled match.
type MatchRecord struct {
	RoomID    RoomID
	ItemID    ItemID
	Title     string
	MediaType MediaType
	MatchedAt time.Time
}

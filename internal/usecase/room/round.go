package usecase_room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DMQQ/movie-picker-server/internal/model"
)

// Pick records the caller's reaction to itemID. When every member has
// picked it, the item detail is fetched with the room unlocked and the
// match is recorded only if the room still exists and every current
// member still holds the pick in the same round.
// Matched is true only for a newly recorded match.
func (u *Usecase) Pick(ctx context.Context, roomID model.RoomID, userID model.UserID, itemID model.ItemID) (PickResult, error) {
	room, err := u.acquire(roomID)
	if err != nil {
		return PickResult{}, err
	}

	outcome, err := room.RecordPick(userID, itemID)
	if err != nil {
		room.Unlock()
		return PickResult{}, errors.Join(ErrResourceNotFound, err)
	}
	if !outcome.Matched || room.HasMatch(outcome.ItemID) {
		room.Unlock()
		return PickResult{}, nil
	}
	page, mediaType := room.Page(), room.MediaType()
	room.Unlock()

	item, err := u.fetchDetail(ctx, outcome.ItemID, mediaType)

	// The match broadcast goes to the room, so only the room must survive.
	room, err = u.relock(room, roomID, "", err)
	if err != nil {
		if room != nil {
			room.Unlock()
		}
		return PickResult{}, err
	}
	// Members came or went, or the round advanced, while we fetched.
	if room.Page() != page || !room.AllPicked(outcome.ItemID) {
		room.Unlock()
		u.logger.Debug("stale match dropped",
			slog.String("room_id", string(roomID)),
			slog.Int64("item_id", outcome.ItemID))
		return PickResult{}, nil
	}
	matched := room.RecordMatch(outcome.ItemID, item.Title)
	audience := room.Audience()
	room.Unlock()

	if !matched {
		return PickResult{}, nil
	}

	u.logger.Info("match",
		slog.String("room_id", string(roomID)),
		slog.Int64("item_id", outcome.ItemID),
		slog.String("title", item.Title))

	u.journalMatch(ctx, model.MatchRecord{
		RoomID:    roomID,
		ItemID:    outcome.ItemID,
		Title:     item.Title,
		MediaType: mediaType,
		MatchedAt: u.now(),
	})

	return PickResult{Matched: true, Item: item, Audience: audience}, nil
}

// Finish marks the caller done with the round. When that completes the
// round, the next page is fetched with the room unlocked and the round
// advances only if nobody else advanced it meanwhile. On a catalog
// failure nothing changes and the round stays pending.
func (u *Usecase) Finish(ctx context.Context, roomID model.RoomID, userID model.UserID) (FinishResult, error) {
	room, err := u.acquire(roomID)
	if err != nil {
		return FinishResult{}, err
	}

	round, err := room.MarkFinished(userID)
	if err != nil {
		room.Unlock()
		return FinishResult{}, errors.Join(ErrResourceNotFound, err)
	}
	if round == model.RoundPending {
		room.Unlock()
		return FinishResult{}, nil
	}
	page, mediaType, genres := room.Page(), room.MediaType(), room.Genres()
	room.Unlock()

	batch, err := u.fetchBatch(ctx, mediaType, page+1, genres)

	room, err = u.relock(room, roomID, "", err)
	if err != nil {
		if room != nil {
			room.Unlock()
		}
		return FinishResult{}, err
	}
	defer room.Unlock()

	// Another finish advanced the round, or a new member joined, while we fetched.
	if room.Page() != page || !room.AllFinished() {
		u.logger.Debug("stale round completion dropped",
			slog.String("room_id", string(roomID)),
			slog.Int("page", page))
		return FinishResult{}, nil
	}

	if err := room.AdvanceRound(batch); err != nil {
		return FinishResult{}, errors.Join(ErrInternal, err)
	}

	u.logger.Info("round advanced",
		slog.String("room_id", string(roomID)),
		slog.Int("page", room.Page()))

	return FinishResult{
		Advanced: true,
		Page:     room.Page(),
		Batch:    room.Batch(),
		Audience: room.Audience(),
	}, nil
}

func (u *Usecase) fetchBatch(ctx context.Context, mediaType model.MediaType, page int, genres []int) ([]model.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, u.fetchTimeout)
	defer cancel()

	batch, err := u.catalog.FetchBatch(ctx, mediaType, page, genres)
	if err != nil {
		u.logger.Warn("batch fetch failed",
			slog.String("media_type", string(mediaType)),
			slog.Int("page", page),
			slog.Any("error", err))
		return nil, errors.Join(ErrCatalogUnavailable, err)
	}
	return batch, nil
}

func (u *Usecase) fetchDetail(ctx context.Context, itemID model.ItemID, mediaType model.MediaType) (model.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, u.fetchTimeout)
	defer cancel()

	item, err := u.catalog.FetchItemDetail(ctx, itemID, mediaType)
	if err != nil {
		u.logger.Warn("item detail fetch failed",
			slog.Int64("item_id", itemID),
			slog.String("media_type", string(mediaType)),
			slog.Any("error", err))
		return model.Item{}, errors.Join(ErrCatalogUnavailable, err)
	}
	return item, nil
}

// Journal failures never touch room state.
func (u *Usecase) journalMatch(ctx context.Context, record model.MatchRecord) {
	if u.journal == nil {
		return
	}
	if err := u.journal.Append(ctx, record); err != nil {
		u.logger.Warn("match journal append failed",
			slog.String("room_id", string(record.RoomID)),
			slog.Int64("item_id", record.ItemID),
			slog.Any("error", err))
	}
}

package infra_postgres_match

import (
	"context"
	"time"

	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/jmoiron/sqlx"
)

// Driver appends matches to an audit table. Rooms are never read back.
type Driver struct {
	db *sqlx.DB
}

func New(
	db *sqlx.DB,
) *Driver {
	return &Driver{db: db}
}

type matchDTO struct {
	RoomID    string    `db:"room_id"`
	ItemID    int64     `db:"item_id"`
	Title     string    `db:"title"`
	MediaType string    `db:"media_type"`
	MatchedAt time.Time `db:"matched_at"`
}

const schema = `
	CREATE TABLE IF NOT EXISTS room_matches (
		id         BIGSERIAL PRIMARY KEY,
		room_id    TEXT        NOT NULL,
		item_id    BIGINT      NOT NULL,
		title      TEXT        NOT NULL,
		media_type TEXT        NOT NULL,
		matched_at TIMESTAMPTZ NOT NULL,
		UNIQUE (room_id, item_id)
	)
`

func (d *Driver) EnsureSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, schema)
	return err
}

func (d *Driver) Append(ctx context.Context, record model.MatchRecord) error {
	dto := matchDTO{
		RoomID:    string(record.RoomID),
		ItemID:    record.ItemID,
		Title:     record.Title,
		MediaType: string(record.MediaType),
		MatchedAt: record.MatchedAt.UTC(),
	}

	query := `
		INSERT INTO room_matches (room_id, item_id, title, media_type, matched_at)
		VALUES (:room_id, :item_id, :title, :media_type, :matched_at)
		ON CONFLICT (room_id, item_id) DO NOTHING
	`

	_, err := d.db.NamedExecContext(ctx, query, dto)
	return err
}

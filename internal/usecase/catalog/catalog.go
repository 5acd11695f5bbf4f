package usecase_catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DMQQ/movie-picker-server/internal/model"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// MaxPages is the deepest page the catalog serves.
const MaxPages = 500

//go:generate mockery --name=Catalog --output=./mocks/catalog --filename=catalog.go
type Catalog interface {
	FetchBatch(ctx context.Context, mediaType model.MediaType, page int, genres []int) ([]model.Item, error)
	FetchItemDetail(ctx context.Context, itemID model.ItemID, mediaType model.MediaType) (model.Item, error)
	Genres(ctx context.Context, kind model.Kind) ([]model.Genre, error)
	TotalPages(ctx context.Context, mediaType model.MediaType, page int, genres []int) (int, error)
}

// Usecase answers stateless catalog queries. No room is involved.
type Usecase struct {
	catalog Catalog
	timeout time.Duration

	logger *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(catalog Catalog, timeout time.Duration, opts ...Option) *Usecase {
	u := &Usecase{
		catalog: catalog,
		timeout: timeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Usecase) Batch(ctx context.Context, mediaType string, page int) ([]model.Item, error) {
	if !model.MediaType(mediaType).Valid() || page < 1 {
		return nil, ErrInvalidRequest
	}

	ctx, cancel := u.withTimeout(ctx)
	defer cancel()

	items, err := u.catalog.FetchBatch(ctx, model.MediaType(mediaType), page, nil)
	if err != nil {
		return nil, u.unavailable("batch", err)
	}
	return items, nil
}

func (u *Usecase) Genres(ctx context.Context, kind string) ([]model.Genre, error) {
	k, ok := model.ParseKind(kind)
	if !ok {
		return nil, ErrInvalidRequest
	}

	ctx, cancel := u.withTimeout(ctx)
	defer cancel()

	genres, err := u.catalog.Genres(ctx, k)
	if err != nil {
		return nil, u.unavailable("genres", err)
	}
	return genres, nil
}

// MaxCount is how many pages a room created with these filters may roll.
func (u *Usecase) MaxCount(ctx context.Context, mediaType string, page int, genres []int) (int, error) {
	mt, ok := resolveMediaType(mediaType)
	if !ok || page < 1 {
		return 0, ErrInvalidRequest
	}

	ctx, cancel := u.withTimeout(ctx)
	defer cancel()

	total, err := u.catalog.TotalPages(ctx, mt, page, genres)
	if err != nil {
		return 0, u.unavailable("max-count", err)
	}
	return min(total, MaxPages), nil
}

func (u *Usecase) Detail(ctx context.Context, itemID model.ItemID, mediaType string) (model.Item, error) {
	mt, ok := resolveMediaType(mediaType)
	if !ok || itemID <= 0 {
		return model.Item{}, ErrInvalidRequest
	}

	ctx, cancel := u.withTimeout(ctx)
	defer cancel()

	item, err := u.catalog.FetchItemDetail(ctx, itemID, mt)
	if err != nil {
		return model.Item{}, u.unavailable("detail", err)
	}
	return item, nil
}

func (u *Usecase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.timeout)
}

func (u *Usecase) unavailable(op string, err error) error {
	u.logger.Warn("catalog query failed", slog.String("op", op), slog.Any("error", err))
	return errors.Join(ErrCatalogUnavailable, err)
}

// Accepts a listing path or a bare family name ("movie", "tv").
func resolveMediaType(s string) (model.MediaType, bool) {
	if mt := model.MediaType(s); mt.Valid() {
		return mt, true
	}
	switch kind, ok := model.ParseKind(s); {
	case !ok:
		return "", false
	case kind == model.KindTV:
		return model.MediaDiscoverTV, true
	default:
		return model.MediaDiscoverMovie, true
	}
}

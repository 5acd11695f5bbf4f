package storage_catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/samber/lo"
)

//go:generate mockery --name=Client --output=./mocks/client --filename=client.go
type Client interface {
	FetchBatch(ctx context.Context, mediaType model.MediaType, page int, genres []int) ([]model.Item, error)
	FetchItemDetail(ctx context.Context, itemID model.ItemID, mediaType model.MediaType) (model.Item, error)
	Genres(ctx context.Context, kind model.Kind) ([]model.Genre, error)
	TotalPages(ctx context.Context, mediaType model.MediaType, page int, genres []int) (int, error)
}

// Cache returns "" on a miss.
//
//go:generate mockery --name=Cache --output=./mocks/cache --filename=cache.go
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value string, ttl time.Duration) error
}

type Storage struct {
	client Client
	cache  Cache
	ttl    time.Duration

	logger *slog.Logger
}

type Option func(*Storage)

func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Storage) {
		s.cache = cache
		s.ttl = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		s.logger = logger
	}
}

func New(client Client, opts ...Option) *Storage {
	s := &Storage{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) FetchBatch(ctx context.Context, mediaType model.MediaType, page int, genres []int) ([]model.Item, error) {
	key := fmt.Sprintf("batch:%s:%d:%s", mediaType, page, genresKey(genres))
	return cached(s, key, func() ([]model.Item, error) {
		return s.client.FetchBatch(ctx, mediaType, page, genres)
	})
}

func (s *Storage) FetchItemDetail(ctx context.Context, itemID model.ItemID, mediaType model.MediaType) (model.Item, error) {
	key := fmt.Sprintf("item:%s:%d", mediaType.Kind(), itemID)
	return cached(s, key, func() (model.Item, error) {
		return s.client.FetchItemDetail(ctx, itemID, mediaType)
	})
}

func (s *Storage) Genres(ctx context.Context, kind model.Kind) ([]model.Genre, error) {
	return cached(s, "genres:"+string(kind), func() ([]model.Genre, error) {
		return s.client.Genres(ctx, kind)
	})
}

// Page counts move with the catalog; never cached.
func (s *Storage) TotalPages(ctx context.Context, mediaType model.MediaType, page int, genres []int) (int, error) {
	return s.client.TotalPages(ctx, mediaType, page, genres)
}

// At first try a fast path:
// decode the value stored under key.
//
// On a miss (or any cache failure) go slow:
// ask the catalog and store the answer for the next caller.
func cached[T any](s *Storage, key string, fetch func() (T, error)) (T, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(key)
		if err != nil {
			s.logger.Warn("catalog cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		if raw != "" {
			var v T
			if err := json.Unmarshal([]byte(raw), &v); err == nil {
				// Fast path
				return v, nil
			}
			s.logger.Warn("catalog cache entry is corrupt", slog.String("key", key))
		}
	}

	// Slow path
	v, err := fetch()
	if err != nil {
		return v, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(v); err == nil {
			if err := s.cache.Set(key, string(raw), s.ttl); err != nil {
				s.logger.Warn("catalog cache write failed", slog.String("key", key), slog.Any("error", err))
			}
		}
	}
	return v, nil
}

func genresKey(genres []int) string {
	if len(genres) == 0 || genres[0] == 0 {
		return "any"
	}
	return strings.Join(lo.Map(genres, func(g int, _ int) string {
		return strconv.Itoa(g)
	}), ",")
}

package infra_tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/DMQQ/movie-picker-server/internal/config"
	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/samber/lo"
)

var (
	ErrMissingAPIKey = errors.New("tmdb api key is not set")
	ErrUpstream      = errors.New("tmdb responded with an error")
	ErrDecode        = errors.New("malformed tmdb response")
)

const monetization = "flatrate,free,ads,rent,purchase"

type Client struct {
	http     *http.Client
	apiKey   string
	baseURL  string
	language string
	region   string

	logger *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(cfg config.Catalog, opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		language: cfg.Language,
		region:   cfg.Region,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listResponse struct {
	Page         int          `json:"page"`
	Results      []model.Item `json:"results"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

type genresResponse struct {
	Genres []model.Genre `json:"genres"`
}

func (c *Client) FetchBatch(ctx context.Context, mediaType model.MediaType, page int, genres []int) ([]model.Item, error) {
	var resp listResponse
	if err := c.get(ctx, string(mediaType), c.listQuery(page, genres), &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []model.Item{}, nil
	}
	return resp.Results, nil
}

func (c *Client) TotalPages(ctx context.Context, mediaType model.MediaType, page int, genres []int) (int, error) {
	var resp listResponse
	if err := c.get(ctx, string(mediaType), c.listQuery(page, genres), &resp); err != nil {
		return 0, err
	}
	return resp.TotalPages, nil
}

func (c *Client) FetchItemDetail(ctx context.Context, itemID model.ItemID, mediaType model.MediaType) (model.Item, error) {
	path := fmt.Sprintf("/%s/%d", mediaType.Kind(), itemID)

	var item model.Item
	if err := c.get(ctx, path, c.baseQuery(), &item); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

func (c *Client) Genres(ctx context.Context, kind model.Kind) ([]model.Genre, error) {
	var resp genresResponse
	if err := c.get(ctx, "/genre/"+string(kind)+"/list", c.baseQuery(), &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

func (c *Client) baseQuery() url.Values {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	return q
}

// Genre 0 stands for "any genre" and disables the filter.
func (c *Client) listQuery(page int, genres []int) url.Values {
	q := c.baseQuery()
	q.Set("page", strconv.Itoa(page))
	q.Set("sort_by", "popularity.desc")
	q.Set("include_adult", "true")
	q.Set("without_keywords", "Anime,Talk")
	q.Set("region", c.region)
	q.Set("with_watch_monetization_types", monetization)

	if len(genres) > 0 && genres[0] != 0 {
		q.Set("with_genres", strings.Join(lo.Map(genres, func(g int, _ int) string {
			return strconv.Itoa(g)
		}), "|"))
	}
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("tmdb request failed",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))
		return fmt.Errorf("%w: %s %d", ErrUpstream, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

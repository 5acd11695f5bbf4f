package infra_tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/DMQQ/movie-picker-server/internal/config"
	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TMDBClientSuite struct {
	suite.Suite
}

func newClient(baseURL, apiKey string) *Client {
	return New(config.Catalog{
		APIKey:   apiKey,
		BaseURL:  baseURL,
		Language: "en-US",
		Region:   "PL",
		Timeout:  time.Second,
	})
}

func (s *TMDBClientSuite) TestFetchBatch(t provider.T) {
	t.Parallel()

	requests := make(chan *http.Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":3,"results":[{"id":1,"title":"One"},{"id":2,"name":"Two"}],"total_pages":900}`))
	}))
	defer server.Close()

	items, err := newClient(server.URL, "key").FetchBatch(context.Background(), model.MediaDiscoverMovie, 3, []int{28, 12})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "One", items[0].Title)
	assert.Equal(t, "Two", items[1].Title)

	got := <-requests
	assert.Equal(t, "/discover/movie", got.URL.Path)
	assert.Equal(t, "Bearer key", got.Header.Get("Authorization"))
	q := got.URL.Query()
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "28|12", q.Get("with_genres"))
	assert.Equal(t, "popularity.desc", q.Get("sort_by"))
	assert.Equal(t, "PL", q.Get("region"))
}

func (s *TMDBClientSuite) TestGenreFilterDisabledByZero(t provider.T) {
	t.Parallel()

	queries := make(chan url.Values, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	items, err := newClient(server.URL, "key").FetchBatch(context.Background(), model.MediaTVPopular, 1, []int{0, 18})

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, (<-queries).Has("with_genres"))
}

func (s *TMDBClientSuite) TestFetchItemDetailUsesKind(t provider.T) {
	t.Parallel()

	paths := make(chan string, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		_, _ = w.Write([]byte(`{"id":1399,"name":"Game of Thrones"}`))
	}))
	defer server.Close()
	client := newClient(server.URL, "key")

	item, err := client.FetchItemDetail(context.Background(), 1399, model.MediaTVOnTheAir)
	require.NoError(t, err)
	assert.Equal(t, "Game of Thrones", item.Title)
	assert.Equal(t, "/tv/1399", <-paths)

	_, err = client.FetchItemDetail(context.Background(), 1399, model.MediaMovieTopRated)
	require.NoError(t, err)
	assert.Equal(t, "/movie/1399", <-paths)
}

func (s *TMDBClientSuite) TestErrors(t provider.T) {
	t.Parallel()

	t.Run("Should fail without api key", func(t provider.T) {
		_, err := newClient("http://127.0.0.1:0", "").FetchBatch(context.Background(), model.MediaDiscoverMovie, 1, nil)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("Should report upstream status", func(t provider.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := newClient(server.URL, "key").Genres(context.Background(), model.KindMovie)
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("Should report malformed bodies", func(t provider.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results":[{"title":"no id"}]}`))
		}))
		defer server.Close()

		_, err := newClient(server.URL, "key").FetchBatch(context.Background(), model.MediaDiscoverMovie, 1, nil)
		assert.ErrorIs(t, err, ErrDecode)
	})
}

func (s *TMDBClientSuite) TestGenresAndTotalPages(t provider.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/genre/tv/list" {
			_, _ = w.Write([]byte(`{"genres":[{"id":18,"name":"Drama"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[],"total_pages":42}`))
	}))
	defer server.Close()
	client := newClient(server.URL, "key")

	genres, err := client.Genres(context.Background(), model.KindTV)
	require.NoError(t, err)
	assert.Equal(t, []model.Genre{{ID: 18, Name: "Drama"}}, genres)

	total, err := client.TotalPages(context.Background(), model.MediaDiscoverTV, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, total)
}

func TestTMDBClientSuite(t *testing.T) {
	suite.RunSuite(t, new(TMDBClientSuite))
}

package http_catalog

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DMQQ/movie-picker-server/internal/model"
	usecase_catalog "github.com/DMQQ/movie-picker-server/internal/usecase/catalog"
	catalog_mocks "github.com/DMQQ/movie-picker-server/internal/usecase/catalog/mocks/catalog"
	"github.com/gin-gonic/gin"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type CatalogControllerSuite struct {
	suite.Suite
}

type resources struct {
	router  *gin.Engine
	catalog *catalog_mocks.Catalog
}

func initResources(t provider.T) *resources {
	gin.SetMode(gin.TestMode)
	catalog := catalog_mocks.NewCatalog(t)

	router := gin.New()
	New(usecase_catalog.New(catalog, time.Second)).RegisterRoutes(router.Group("/api/v1"))

	return &resources{router: router, catalog: catalog}
}

func (r *resources) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *CatalogControllerSuite) TestList(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		target       string
		setupMocks   func(r *resources)
		expectedCode int
		expectedBody string
	}{
		{
			name:   "Should list a page",
			target: "/api/v1/movies?searchType=/movie/popular&page=2",
			setupMocks: func(r *resources) {
				r.catalog.On("FetchBatch", mock.Anything, model.MediaMoviePopular, 2, []int(nil)).
					Return([]model.Item{{ID: 1, Title: "One"}}, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedBody: `[{"id":1,"title":"One"}]`,
		},
		{
			name:         "Should require a type",
			target:       "/api/v1/movies?page=2",
			setupMocks:   func(r *resources) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"invalid request format"}`,
		},
		{
			name:         "Should require a page",
			target:       "/api/v1/movies?searchType=/movie/popular",
			setupMocks:   func(r *resources) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"invalid request format"}`,
		},
		{
			name:         "Should reject a zero page",
			target:       "/api/v1/movies?searchType=/movie/popular&page=0",
			setupMocks:   func(r *resources) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"invalid request format"}`,
		},
		{
			name:         "Should reject a non numeric page",
			target:       "/api/v1/movies?searchType=/movie/popular&page=two",
			setupMocks:   func(r *resources) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"invalid request format"}`,
		},
		{
			name:         "Should reject unknown types",
			target:       "/api/v1/movies?searchType=/books&page=1",
			setupMocks:   func(r *resources) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"invalid request"}`,
		},
		{
			name:   "Should map catalog failures to bad gateway",
			target: "/api/v1/movies?searchType=/tv/popular&page=1",
			setupMocks: func(r *resources) {
				r.catalog.On("FetchBatch", mock.Anything, model.MediaTVPopular, 1, []int(nil)).
					Return(nil, errors.New("boom")).Once()
			},
			expectedCode: http.StatusBadGateway,
			expectedBody: `{"message":"catalog unavailable"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			r := initResources(t)
			tc.setupMocks(r)

			rec := r.get(tc.target)

			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func (s *CatalogControllerSuite) TestMovieRoutes(t provider.T) {
	t.Parallel()

	t.Run("Should serve genres", func(t provider.T) {
		r := initResources(t)
		r.catalog.On("Genres", mock.Anything, model.KindMovie).Return([]model.Genre{{ID: 28, Name: "Action"}}, nil).Once()

		rec := r.get("/api/v1/movie/genres/movie")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{"id":28,"name":"Action"}]`, rec.Body.String())
	})

	t.Run("Should cap max count", func(t provider.T) {
		r := initResources(t)
		r.catalog.On("TotalPages", mock.Anything, model.MediaDiscoverTV, 1, []int{18, 35}).Return(731, nil).Once()

		rec := r.get("/api/v1/movie/max-count?type=/discover/tv&genres=18,35")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"maxCount":500}`, rec.Body.String())
	})

	t.Run("Should reject malformed genres", func(t provider.T) {
		r := initResources(t)

		rec := r.get("/api/v1/movie/max-count?type=movie&genres=drama")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should serve detail by family", func(t provider.T) {
		r := initResources(t)
		r.catalog.On("FetchItemDetail", mock.Anything, int64(1399), model.MediaDiscoverTV).
			Return(model.Item{ID: 1399, Title: "Game of Thrones"}, nil).Once()

		rec := r.get("/api/v1/movie/1399?type=tv")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":1399,"title":"Game of Thrones"}`, rec.Body.String())
	})

	t.Run("Should reject malformed detail requests", func(t provider.T) {
		for _, target := range []string{
			"/api/v1/movie/abc?type=tv",
			"/api/v1/movie/0?type=tv",
			"/api/v1/movie/1399",
		} {
			r := initResources(t)

			rec := r.get(target)

			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
			assert.JSONEq(t, `{"message":"invalid request format"}`, rec.Body.String(), target)
		}
	})

	t.Run("Should reject a zero max-count page", func(t provider.T) {
		r := initResources(t)

		rec := r.get("/api/v1/movie/max-count?type=movie&page=0")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should default the max-count page to 1", func(t provider.T) {
		r := initResources(t)
		r.catalog.On("TotalPages", mock.Anything, model.MediaDiscoverMovie, 1, []int(nil)).Return(12, nil).Once()

		rec := r.get("/api/v1/movie/max-count?type=movie")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"maxCount":12}`, rec.Body.String())
	})
}

func TestCatalogControllerSuite(t *testing.T) {
	suite.RunSuite(t, new(CatalogControllerSuite))
}

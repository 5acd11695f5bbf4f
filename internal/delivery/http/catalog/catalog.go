package http_catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	http_common "github.com/DMQQ/movie-picker-server/internal/delivery/http/common"
	"github.com/DMQQ/movie-picker-server/internal/model"
	usecase_catalog "github.com/DMQQ/movie-picker-server/internal/usecase/catalog"
	"github.com/gin-gonic/gin"
)

type Usecase interface {
	Batch(ctx context.Context, mediaType string, page int) ([]model.Item, error)
	Genres(ctx context.Context, kind string) ([]model.Genre, error)
	MaxCount(ctx context.Context, mediaType string, page int, genres []int) (int, error)
	Detail(ctx context.Context, itemID model.ItemID, mediaType string) (model.Item, error)
}

type Controller struct {
	usecase Usecase
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(usecase Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/movies", c.list)

	movie := router.Group("/movie")
	{
		movie.GET("/genres/:type", c.genres)
		movie.GET("/max-count", c.maxCount)
		movie.GET("/:id", c.detail)
	}
}

type ListRequestDTO struct {
	SearchType string `form:"searchType" binding:"required"`
	Page       int    `form:"page" binding:"required,min=1"`
}

type GenresRequestDTO struct {
	Type string `uri:"type" binding:"required"`
}

type MaxCountRequestDTO struct {
	Type   string `form:"type" binding:"required"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Genres string `form:"genres"`
}

type DetailURIRequestDTO struct {
	ID model.ItemID `uri:"id" binding:"required,min=1"`
}

type DetailQueryRequestDTO struct {
	Type string `form:"type" binding:"required"`
}

type MaxCountResponseDTO struct {
	MaxCount int `json:"maxCount"`
}

// @Summary List a catalog page
// @Tags Catalog
// @Produce json
// @Param searchType query string true "Listing path, e.g. /movie/popular"
// @Param page query int true "Page, from 1"
// @Success 200 {array} model.Item
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 502 {object} http_common.ErrorResponse
// @Router /movies [get]
func (c *Controller) list(ctx *gin.Context) {
	var req ListRequestDTO
	if err := ctx.ShouldBindQuery(&req); err != nil {
		c.invalidFormat(ctx, err)
		return
	}

	items, err := c.usecase.Batch(ctx.Request.Context(), req.SearchType, req.Page)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, items)
}

// @Summary Genres of a catalog family
// @Tags Catalog
// @Produce json
// @Param type path string true "movie or tv"
// @Success 200 {array} model.Genre
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 502 {object} http_common.ErrorResponse
// @Router /movie/genres/{type} [get]
func (c *Controller) genres(ctx *gin.Context) {
	var req GenresRequestDTO
	if err := ctx.ShouldBindUri(&req); err != nil {
		c.invalidFormat(ctx, err)
		return
	}

	genres, err := c.usecase.Genres(ctx.Request.Context(), req.Type)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, genres)
}

// @Summary Number of pages a room may roll
// @Tags Catalog
// @Produce json
// @Param type query string true "Listing path or family"
// @Param page query int false "Page, defaults to 1"
// @Param genres query string false "Comma separated genre ids"
// @Success 200 {object} MaxCountResponseDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 502 {object} http_common.ErrorResponse
// @Router /movie/max-count [get]
func (c *Controller) maxCount(ctx *gin.Context) {
	var req MaxCountRequestDTO
	if err := ctx.ShouldBindQuery(&req); err != nil {
		c.invalidFormat(ctx, err)
		return
	}
	genres, err := parseGenres(req.Genres)
	if err != nil {
		c.invalidFormat(ctx, err)
		return
	}

	count, err := c.usecase.MaxCount(ctx.Request.Context(), req.Type, req.Page, genres)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, MaxCountResponseDTO{MaxCount: count})
}

// @Summary Item detail
// @Tags Catalog
// @Produce json
// @Param id path int true "Item id"
// @Param type query string true "Listing path or family"
// @Success 200 {object} model.Item
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 502 {object} http_common.ErrorResponse
// @Router /movie/{id} [get]
func (c *Controller) detail(ctx *gin.Context) {
	var uri DetailURIRequestDTO
	if err := ctx.ShouldBindUri(&uri); err != nil {
		c.invalidFormat(ctx, err)
		return
	}
	var req DetailQueryRequestDTO
	if err := ctx.ShouldBindQuery(&req); err != nil {
		c.invalidFormat(ctx, err)
		return
	}

	item, err := c.usecase.Detail(ctx.Request.Context(), uri.ID, req.Type)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

func (c *Controller) invalidFormat(ctx *gin.Context, err error) {
	c.logger.Debug("invalid request format",
		slog.String("path", ctx.FullPath()),
		slog.String("error", err.Error()))
	c.badRequest(ctx, "invalid request format")
}

func (c *Controller) badRequest(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: msg})
}

func (c *Controller) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase_catalog.ErrInvalidRequest):
		c.badRequest(ctx, "invalid request")
	case errors.Is(err, usecase_catalog.ErrCatalogUnavailable):
		c.logger.Warn("catalog unavailable",
			slog.String("path", ctx.FullPath()),
			slog.String("error", err.Error()))
		ctx.JSON(http.StatusBadGateway, http_common.ErrorResponse{Message: "catalog unavailable"})
	default:
		c.logger.Error("catalog request failed", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{Message: "internal error"})
	}
}

// "" and "0" mean any genre.
func parseGenres(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	genres := make([]int, 0, len(parts))
	for _, p := range parts {
		g, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, nil
}

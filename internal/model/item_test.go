package model

import (
	"encoding/json"
	"testing"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ItemUnitSuite struct {
	suite.Suite
}

func (s *ItemUnitSuite) TestDecode(t provider.T) {
	t.Parallel()

	t.Run("Should read movie title and keep unknown fields", func(t provider.T) {
		var item Item
		err := json.Unmarshal([]byte(`{"id":603,"title":"The Matrix","poster_path":"/m.jpg","vote_average":8.2}`), &item)

		require.NoError(t, err)
		assert.Equal(t, ItemID(603), item.ID)
		assert.Equal(t, "The Matrix", item.Title)
		require.NotNil(t, item.PosterPath)
		assert.Equal(t, "/m.jpg", *item.PosterPath)
		assert.JSONEq(t, `8.2`, string(item.Raw["vote_average"]))
	})

	t.Run("Should fall back to name for tv entries", func(t provider.T) {
		var item Item
		err := json.Unmarshal([]byte(`{"id":1399,"name":"Game of Thrones","poster_path":null}`), &item)

		require.NoError(t, err)
		assert.Equal(t, "Game of Thrones", item.Title)
		assert.Nil(t, item.PosterPath)
	})

	t.Run("Should reject entries without id", func(t provider.T) {
		var item Item
		err := json.Unmarshal([]byte(`{"title":"nothing"}`), &item)

		assert.Error(t, err)
	})
}

func (s *ItemUnitSuite) TestEncodePassesRawFieldsThrough(t provider.T) {
	t.Parallel()

	var item Item
	require.NoError(t, json.Unmarshal([]byte(`{"id":1399,"name":"Game of Thrones","genre_ids":[18,10765]}`), &item))

	out, err := json.Marshal(item)

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1399,"name":"Game of Thrones","genre_ids":[18,10765]}`, string(out))
}

func (s *ItemUnitSuite) TestMediaKind(t provider.T) {
	t.Parallel()

	assert.Equal(t, KindTV, MediaTVAiringToday.Kind())
	assert.Equal(t, KindMovie, MediaMovieUpcoming.Kind())
	assert.True(t, MediaDiscoverTV.Valid())
	assert.False(t, MediaType("movie").Valid())

	kind, ok := ParseKind("/discover/tv")
	assert.True(t, ok)
	assert.Equal(t, KindTV, kind)
	_, ok = ParseKind("books")
	assert.False(t, ok)
}

func TestItemUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(ItemUnitSuite))
}

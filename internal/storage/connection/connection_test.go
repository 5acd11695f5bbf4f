package storage_connection

import (
	"testing"

	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type DirectoryUnitSuite struct {
	suite.Suite
}

func (s *DirectoryUnitSuite) TestLifecycle(t provider.T) {
	t.Parallel()

	d := New()
	conn := model.ConnRef("c1")

	d.Bind(conn, "user-c1")
	e, ok := d.Lookup(conn)
	assert.True(t, ok)
	assert.False(t, e.InRoom())

	prev, ok := d.EnterRoom(conn, "R1")
	assert.True(t, ok)
	assert.Equal(t, model.EmptyRoomID, prev.RoomID)

	prev, _ = d.EnterRoom(conn, "R2")
	assert.Equal(t, model.RoomID("R1"), prev.RoomID)

	d.LeaveRoom(conn, "R1")
	e, _ = d.Lookup(conn)
	assert.Equal(t, model.RoomID("R2"), e.RoomID)

	d.LeaveRoom(conn, "R2")
	e, _ = d.Lookup(conn)
	assert.False(t, e.InRoom())
	assert.Equal(t, "user-c1", e.UserID)

	removed, ok := d.Remove(conn)
	assert.True(t, ok)
	assert.Equal(t, "user-c1", removed.UserID)
	_, ok = d.Lookup(conn)
	assert.False(t, ok)
	assert.Zero(t, d.Len())
}

func (s *DirectoryUnitSuite) TestUnknownConnection(t provider.T) {
	t.Parallel()

	d := New()

	_, ok := d.EnterRoom("nobody", "R1")
	assert.False(t, ok)
	d.LeaveRoom("nobody", "R1")
	_, ok = d.Remove("nobody")
	assert.False(t, ok)
	assert.Zero(t, d.Len())
}

func TestDirectoryUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(DirectoryUnitSuite))
}

package infra_redis_roomid_set

import (
	"context"

	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/go-redis/redis"
)

// Driver keeps every room id ever issued in a redis set, so ids are
// never handed out twice, across restarts and replicas.
type Driver struct {
	client *redis.Client
	key    string
}

func New(
	client *redis.Client,
	key string,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
	}
}

// Reserve reports false when roomID was issued before.
func (d *Driver) Reserve(ctx context.Context, roomID model.RoomID) (bool, error) {
	if roomID == model.EmptyRoomID {
		return false, nil
	}

	added, err := d.client.SAdd(d.key, string(roomID)).Result()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

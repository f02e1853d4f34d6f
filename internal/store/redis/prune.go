package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Collections lists every collection the store writes.
var Collections = []string{CollectionComponents, CollectionProjects, CollectionUsers, CollectionIdeas}

// PruneIndex removes index entries of collection whose document key no
// longer exists, e.g. after a manual DEL or a key eviction. It returns how
// many entries were removed.
func (s *Store) PruneIndex(ctx context.Context, collection string) (int, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}

	index := s.keys.Index(collection)
	ids, err := s.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return 0, wrapErr("prune "+collection, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	exists := make([]*redis.IntCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			exists[i] = pipe.Exists(ctx, s.keys.Doc(collection, id))
		}
		return nil
	})
	if err != nil {
		return 0, wrapErr("prune "+collection, err)
	}

	var dangling []any
	for i, cmd := range exists {
		if cmd.Val() == 0 {
			dangling = append(dangling, ids[i])
		}
	}
	if len(dangling) == 0 {
		return 0, nil
	}
	if err := s.client.ZRem(ctx, index, dangling...).Err(); err != nil {
		return 0, wrapErr("prune "+collection, err)
	}
	return len(dangling), nil
}

/*
Package redisstore provides an implementation of the checkpoint.Store
interface backed by a redis database, so that tree checkpoints can be
shared between the process growing a tree and the processes serving
predictions from it.
*/
package redisstore

import (
	"context"
	"fmt"

	"github.com/pbanos/sapling/checkpoint"
	redis "gopkg.in/redis.v5"
)

type redisStore struct {
	rc     *redis.Client
	prefix string
}

// New builds a checkpoint.Store backed by a redis DB. Checkpoints are
// kept under keys of the form prefix:name.
func New(rc *redis.Client, prefix string) checkpoint.Store {
	return &redisStore{rc, prefix}
}

func (rs *redisStore) Save(ctx context.Context, name string, data []byte) error {
	_, err := rs.rc.Set(rs.keyFor(name), data, 0).Result()
	if err != nil {
		return fmt.Errorf("saving checkpoint %q in redis: %v", name, err)
	}
	return nil
}

func (rs *redisStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := rs.rc.Get(rs.keyFor(name)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint %q from redis: %v", name, err)
	}
	return []byte(data), nil
}

func (rs *redisStore) Delete(ctx context.Context, name string) error {
	_, err := rs.rc.Del(rs.keyFor(name)).Result()
	if err != nil {
		return fmt.Errorf("deleting checkpoint %q from redis: %v", name, err)
	}
	return nil
}

func (rs *redisStore) keyFor(name string) string {
	return fmt.Sprintf("%s:%s", rs.prefix, name)
}

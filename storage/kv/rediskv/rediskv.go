// Package rediskv is a kv.Medium backed by Redis.
package rediskv

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/365cent/grade-tracker/core"
	"github.com/365cent/grade-tracker/storage/kv"
)

const pingTimeout = 5 * time.Second

type Medium struct {
	rdb    goredis.UniversalClient
	prefix string
}

var _ kv.Medium = (*Medium)(nil)

// Open connects to Redis and checks the connection with a PING.
func Open(ctx context.Context, conf *core.Config) (*Medium, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %s", conf.Redis.Addr)
	}
	return New(rdb, conf.Redis.Prefix), nil
}

// New returns a Medium using rdb; every key is stored under prefix.
func New(rdb goredis.UniversalClient, prefix string) *Medium {
	return &Medium{rdb: rdb, prefix: prefix}
}

func (m *Medium) key(k string) string { return m.prefix + k }

func (m *Medium) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	res := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return res, nil
	}

	rkeys := make([]string, 0, len(keys))
	for _, k := range keys {
		rkeys = append(rkeys, m.key(k))
	}
	vals, err := m.rdb.MGet(ctx, rkeys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis MGET")
	}
	for i, val := range vals {
		if s, ok := val.(string); ok {
			res[keys[i]] = []byte(s)
		}
	}
	return res, nil
}

// Put sets every entry inside a MULTI/EXEC transaction.
func (m *Medium) Put(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := m.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, m.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "redis MULTI")
	}
	return nil
}

func (m *Medium) Close() error {
	return m.rdb.Close()
}

// Package redisstore keeps records as Redis strings and tracks the keys of
// each collection in a Redis set so List does not need SCAN.
package redisstore

import (
	"context"
	"errors"
	"sort"
	"strconv"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/records"
	"github.com/redis/go-redis/v9"
)

var _ records.Store = (*Store)(nil)

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Store struct {
	client *redis.Client
	prefix string
}

// Open connects to Redis and pings it.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, apperrors.Wrap(apperrors.ErrStore, apperrors.Wrapf(err, "redis ping %s", opts.Addr))
	}
	return New(client, opts.Prefix), nil
}

func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Create(ctx context.Context, collection, key string, value []byte) error {
	ok, err := s.client.SetNX(ctx, s.recordKey(collection, key), value, 0).Result()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	if !ok {
		return apperrors.Wrapf(apperrors.ErrAlreadyExists, "%s/%s", collection, key)
	}
	if err := s.client.SAdd(ctx, s.indexKey(collection), key).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, collection, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.recordKey(collection, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "%s/%s", collection, key)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	return data, nil
}

func (s *Store) Update(ctx context.Context, collection, key string, value []byte) error {
	ok, err := s.client.SetXX(ctx, s.recordKey(collection, key), value, 0).Result()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	if !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "%s/%s", collection, key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.recordKey(collection, key))
		pipe.SRem(ctx, s.indexKey(collection), key)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	if del.Val() == 0 {
		return apperrors.Wrapf(apperrors.ErrNotFound, "%s/%s", collection, key)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]string, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey(collection)).Result()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// recordKey length-prefixes the collection so that ("a:b", "c") and
// ("a", "b:c") get different Redis keys.
func (s *Store) recordKey(collection, key string) string {
	return s.prefix + "record:" + strconv.Itoa(len(collection)) + ":" + collection + ":" + key
}

func (s *Store) indexKey(collection string) string {
	return s.prefix + "index:" + collection
}

package saves

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
	"github.com/tenorio-sousa/Ludo-MC322/game/service"
)

const redisKeyPrefix = "ludo:slot:"

// RedisStore keeps each slot as a JSON string under ludo:slot:<n>
type RedisStore struct {
	client *redis.Client
}

// OpenRedis parses a redis:// URL and pings the server
func OpenRedis(ctx context.Context, url string) (*RedisStore, error) {
	if url == "" {
		return nil, fmt.Errorf("redis save backend needs a URL")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging Redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(slot int) string {
	return redisKeyPrefix + strconv.Itoa(slot)
}

func (s *RedisStore) Save(ctx context.Context, slot int, snap engine.Snapshot) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	data, err := encode(slot, snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(slot), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save slot %d: %w", slot, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, slot int) (engine.Snapshot, error) {
	if err := checkSlot(slot); err != nil {
		return engine.Snapshot{}, err
	}
	data, err := s.client.Get(ctx, redisKey(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return engine.Snapshot{}, emptySlot(slot)
	}
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("%w: %v", engine.ErrSlotUnavailable, err)
	}
	rec, err := decode(slot, data)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return rec.Game, nil
}

func (s *RedisStore) Delete(ctx context.Context, slot int) (bool, error) {
	if err := checkSlot(slot); err != nil {
		return false, err
	}
	n, err := s.client.Del(ctx, redisKey(slot)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete slot %d: %w", slot, err)
	}
	return n > 0, nil
}

func (s *RedisStore) List(ctx context.Context) ([]service.SlotInfo, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	infos := []service.SlotInfo{}
	for _, key := range keys {
		slot, err := strconv.Atoi(strings.TrimPrefix(key, redisKeyPrefix))
		if err != nil || slot < 1 {
			continue
		}
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			// deleted between SCAN and GET
			continue
		}
		rec, err := decode(slot, data)
		if err != nil {
			log.WithError(err).WithField("slot", slot).Warn("Skipping unreadable save")
			continue
		}
		infos = append(infos, service.NewSlotInfo(slot, rec.SavedAt, rec.Game))
	}
	return sortSlots(infos), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

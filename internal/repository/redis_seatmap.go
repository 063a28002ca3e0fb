package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultSeatMapTTL = 30 * time.Second

type cachedHall struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Grid      domain.SeatGrid `json:"grid"`
	CreatedAt time.Time       `json:"createdAt"`
}

// setSeatMapScript stores the snapshot only while the hall generation still matches
// the one read before the snapshot was loaded.
var setSeatMapScript = redis.NewScript(`
	local current = tonumber(redis.call("GET", KEYS[2]) or "0")
	if current ~= tonumber(ARGV[1]) then
		return 0
	end

	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
`)

// RedisSeatMapCache is a read-through cache of committed hall grids. Each hall has a
// generation counter that Invalidate bumps, so a snapshot read before a commit can
// never be written back after it.
type RedisSeatMapCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisSeatMapCache(client redis.UniversalClient, ttl time.Duration) *RedisSeatMapCache {
	if ttl <= 0 {
		ttl = DefaultSeatMapTTL
	}

	return &RedisSeatMapCache{
		client: client,
		ttl:    ttl,
	}
}

func seatMapKey(hallID uuid.UUID) string {
	return fmt.Sprintf("seat_map:%s", hallID)
}

func seatMapGenerationKey(hallID uuid.UUID) string {
	return fmt.Sprintf("seat_map_gen:%s", hallID)
}

func (c *RedisSeatMapCache) Get(ctx context.Context, hallID uuid.UUID) (*domain.Hall, bool, error) {
	data, err := c.client.Get(ctx, seatMapKey(hallID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var cached cachedHall

	err = json.Unmarshal(data, &cached)
	if err != nil {
		return nil, false, fmt.Errorf("decode cached seat map: %w", err)
	}

	return &domain.Hall{
		ID:        cached.ID,
		Name:      cached.Name,
		Grid:      cached.Grid,
		CreatedAt: cached.CreatedAt,
	}, true, nil
}

func (c *RedisSeatMapCache) Generation(ctx context.Context, hallID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, seatMapGenerationKey(hallID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		return 0, err
	}

	return gen, nil
}

// Set is a no-op when the hall was invalidated after gen was read.
func (c *RedisSeatMapCache) Set(ctx context.Context, hall *domain.Hall, gen int64) error {
	data, err := json.Marshal(cachedHall{
		ID:        hall.ID,
		Name:      hall.Name,
		Grid:      hall.Grid,
		CreatedAt: hall.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode seat map: %w", err)
	}

	keys := []string{seatMapKey(hall.ID), seatMapGenerationKey(hall.ID)}

	return setSeatMapScript.Run(ctx, c.client, keys, gen, string(data), c.ttl.Milliseconds()).Err()
}

// Invalidate moves the generation before dropping the entry. A reader that loaded its
// snapshot before the bump fails the generation check in Set.
func (c *RedisSeatMapCache) Invalidate(ctx context.Context, hallID uuid.UUID) error {
	err := c.client.Incr(ctx, seatMapGenerationKey(hallID)).Err()
	if err != nil {
		return err
	}

	return c.client.Del(ctx, seatMapKey(hallID)).Err()
}

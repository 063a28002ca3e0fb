package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSeatMapCache(t *testing.T) {
	hall := &domain.Hall{
		ID:        uuid.New(),
		Name:      "Hall 2",
		Grid:      domain.SeatGrid{{domain.SeatBooked, domain.SeatFree}},
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(cachedHall{
		ID:        hall.ID,
		Name:      hall.Name,
		Grid:      hall.Grid,
		CreatedAt: hall.CreatedAt,
	})
	require.NoError(t, err)

	key := seatMapKey(hall.ID)
	genKey := seatMapGenerationKey(hall.ID)

	t.Run("miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisSeatMapCache(db, time.Minute)

		mock.ExpectGet(key).RedisNil()

		got, ok, err := cache.Get(context.Background(), hall.ID)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisSeatMapCache(db, time.Minute)

		mock.ExpectGet(key).SetVal(string(payload))

		got, ok, err := cache.Get(context.Background(), hall.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, hall, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("read error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisSeatMapCache(db, time.Minute)

		mock.ExpectGet(key).SetErr(errors.New("connection refused"))

		_, ok, err := cache.Get(context.Background(), hall.ID)
		assert.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("generation defaults to zero", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisSeatMapCache(db, time.Minute)

		mock.ExpectGet(genKey).RedisNil()

		gen, err := cache.Generation(context.Background(), hall.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), gen)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("generation", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisSeatMapCache(db, time.Minute)

		mock.ExpectGet(genKey).SetVal("7")

		gen, err := cache.Generation(context.Background(), hall.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), gen)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("set checks generation and uses ttl", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisSeatMapCache(db, time.Minute)

		mock.ExpectEvalSha(setSeatMapScript.Hash(), []string{key, genKey},
			int64(7), string(payload), int64(60000)).SetVal(int64(1))

		assert.NoError(t, cache.Set(context.Background(), hall, 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale set is skipped", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisSeatMapCache(db, time.Minute)

		mock.ExpectEvalSha(setSeatMapScript.Hash(), []string{key, genKey},
			int64(6), string(payload), int64(60000)).SetVal(int64(0))

		assert.NoError(t, cache.Set(context.Background(), hall, 6))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalidate bumps generation before deleting", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisSeatMapCache(db, 0)

		mock.ExpectIncr(genKey).SetVal(8)
		mock.ExpectDel(key).SetVal(1)

		assert.NoError(t, cache.Invalidate(context.Background(), hall.ID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalidate stops when the bump fails", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisSeatMapCache(db, 0)

		mock.ExpectIncr(genKey).SetErr(errors.New("connection refused"))

		assert.Error(t, cache.Invalidate(context.Background(), hall.ID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

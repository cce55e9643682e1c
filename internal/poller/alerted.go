package poller

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultAlertedCap bounds the alerted-ID memory per session.
const DefaultAlertedCap = 100

// AlertedStore remembers which notifications already produced an alert.
type AlertedStore interface {
	Has(ctx context.Context, id int64) (bool, error)
	Add(ctx context.Context, id int64) error
}

// MemoryAlertedStore keeps the most recent cap IDs and evicts the oldest.
type MemoryAlertedStore struct {
	mu    sync.Mutex
	cap   int
	order []int64
	set   map[int64]struct{}
}

func NewMemoryAlertedStore(capacity int) *MemoryAlertedStore {
	if capacity <= 0 {
		capacity = DefaultAlertedCap
	}
	return &MemoryAlertedStore{cap: capacity, set: make(map[int64]struct{}, capacity)}
}

func (s *MemoryAlertedStore) Has(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.set[id]
	return ok, nil
}

func (s *MemoryAlertedStore) Add(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.set[id]; ok {
		return nil
	}
	s.order = append(s.order, id)
	s.set[id] = struct{}{}
	for len(s.order) > s.cap {
		delete(s.set, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

func (s *MemoryAlertedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// RedisAlertedStore keeps the alerted list in Redis so a restarted watcher
// with the same session does not alert twice.
type RedisAlertedStore struct {
	rdb *redis.Client
	key string
	cap int
	ttl time.Duration
}

func NewRedisAlertedStore(rdb *redis.Client, session string, capacity int) *RedisAlertedStore {
	if capacity <= 0 {
		capacity = DefaultAlertedCap
	}
	return &RedisAlertedStore{
		rdb: rdb,
		key: fmt.Sprintf("fms:poller:alerted:%s", session),
		cap: capacity,
		ttl: 24 * time.Hour,
	}
}

func (s *RedisAlertedStore) Has(ctx context.Context, id int64) (bool, error) {
	ids, err := s.rdb.LRange(ctx, s.key, 0, int64(s.cap-1)).Result()
	if err != nil {
		return false, err
	}
	want := strconv.FormatInt(id, 10)
	for _, v := range ids {
		if v == want {
			return true, nil
		}
	}
	return false, nil
}

func (s *RedisAlertedStore) Add(ctx context.Context, id int64) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, id)
		pipe.LTrim(ctx, s.key, 0, int64(s.cap-1))
		pipe.Expire(ctx, s.key, s.ttl)
		return nil
	})
	return err
}

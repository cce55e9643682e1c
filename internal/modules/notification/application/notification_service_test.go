package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/flow-management/internal/modules/notification/domain"
	unreadcache "github.com/saransh1220/flow-management/internal/modules/notification/infrastructure/cache"
	ws "github.com/saransh1220/flow-management/internal/modules/notification/infrastructure/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationRepoMock struct {
	createIfAbsentFn func(context.Context, *domain.Notification) (bool, error)
	getByIDFn        func(context.Context, int64, int64) (*domain.Notification, error)
	getByUserIDFn    func(context.Context, int64, int, int) ([]domain.Notification, error)
	markAsReadFn     func(context.Context, int64, int64) error
	markAllAsReadFn  func(context.Context, int64) (int64, error)
	unreadCountFn    func(context.Context, int64) (int, error)
}

func (m notificationRepoMock) CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error) {
	return m.createIfAbsentFn(ctx, n)
}

func (m notificationRepoMock) GetByID(ctx context.Context, notificationID, userID int64) (*domain.Notification, error) {
	return m.getByIDFn(ctx, notificationID, userID)
}

func (m notificationRepoMock) GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	return m.getByUserIDFn(ctx, userID, limit, offset)
}

func (m notificationRepoMock) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return m.markAsReadFn(ctx, notificationID, userID)
}

func (m notificationRepoMock) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return m.markAllAsReadFn(ctx, userID)
}

func (m notificationRepoMock) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return m.unreadCountFn(ctx, userID)
}

// memoryRepo enforces the dedup key the way the unique index does.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[domain.DedupKey]domain.Notification
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[domain.DedupKey]domain.Notification{}}
}

func (r *memoryRepo) CreateIfAbsent(_ context.Context, n *domain.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := n.DedupKey()
	if _, ok := r.rows[key]; ok {
		return false, nil
	}
	r.nextID++
	n.ID = r.nextID
	r.rows[key] = *n
	return true, nil
}

func (r *memoryRepo) GetByID(context.Context, int64, int64) (*domain.Notification, error) {
	return nil, domain.ErrNotificationNotFound
}

func (r *memoryRepo) GetByUserID(context.Context, int64, int, int) ([]domain.Notification, error) {
	return nil, nil
}

func (r *memoryRepo) MarkAsRead(context.Context, int64, int64) error { return nil }

func (r *memoryRepo) MarkAllAsRead(context.Context, int64) (int64, error) { return 0, nil }

func (r *memoryRepo) UnreadCount(context.Context, int64) (int, error) { return len(r.rows), nil }

type cacheMock struct {
	values      map[int64]int
	generations map[int64]int64
	invalidated []int64
}

func (c *cacheMock) Get(_ context.Context, userID int64) (int, int64, bool) {
	n, ok := c.values[userID]
	return n, c.generations[userID], ok
}

func (c *cacheMock) Set(_ context.Context, userID int64, count int, generation int64) {
	if generation != c.generations[userID] {
		return
	}
	if c.values == nil {
		c.values = map[int64]int{}
	}
	c.values[userID] = count
}

func (c *cacheMock) Invalidate(_ context.Context, userID int64) {
	if c.generations == nil {
		c.generations = map[int64]int64{}
	}
	c.generations[userID]++
	delete(c.values, userID)
	c.invalidated = append(c.invalidated, userID)
}

type publisherMock struct {
	mu        sync.Mutex
	err       error
	published map[int64][]byte
}

func (p *publisherMock) Publish(_ context.Context, userID int64, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.published == nil {
		p.published = map[int64][]byte{}
	}
	p.published[userID] = payload
	return nil
}

func fixedClock(ts string) func() time.Time {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func TestNotificationService_Emit(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	t.Run("success pushes to the recipient", func(t *testing.T) {
		hub := ws.NewHub(nil)
		go hub.Run()
		defer hub.Stop()

		var captured *domain.Notification
		repo := notificationRepoMock{
			createIfAbsentFn: func(_ context.Context, n *domain.Notification) (bool, error) {
				n.ID = 5
				captured = n
				return true, nil
			},
		}
		cache := &cacheMock{}
		svc := NewNotificationService(repo, hub, cache, ist, nil)
		// 20:00 UTC is already the next day in IST.
		svc.now = fixedClock("2024-05-01T20:00:00Z")

		n, created, err := svc.Emit(context.Background(), domain.NewNotification{
			UserID:      3,
			Type:        domain.TypeLeaveRequest,
			Title:       "Leave request",
			Message:     "Ravi requested leave",
			RelatedID:   12,
			RelatedType: domain.RelatedLeaveRequest,
			ActionData:  domain.LeaveDecisionButtons(),
		})
		require.NoError(t, err)
		assert.True(t, created)
		require.NotNil(t, captured)
		assert.Equal(t, int64(5), n.ID)
		assert.Equal(t, "2024-05-02", captured.DedupDate)
		assert.True(t, captured.ActionRequired)
		assert.False(t, captured.IsRead)
		assert.Equal(t, []int64{3}, cache.invalidated)
		assert.Equal(t, hub, svc.GetHub())
	})

	t.Run("duplicate is not an error", func(t *testing.T) {
		repo := notificationRepoMock{
			createIfAbsentFn: func(context.Context, *domain.Notification) (bool, error) { return false, nil },
		}
		cache := &cacheMock{}
		svc := NewNotificationService(repo, nil, cache, ist, nil)

		_, created, err := svc.Emit(context.Background(), domain.NewNotification{
			UserID: 3, Type: domain.TypeNotesReminder, Title: "Reminder", RelatedID: 1, RelatedType: domain.RelatedNote,
		})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Empty(t, cache.invalidated)
	})

	t.Run("missing type is rejected before the store", func(t *testing.T) {
		repo := notificationRepoMock{
			createIfAbsentFn: func(context.Context, *domain.Notification) (bool, error) {
				t.Fatal("store must not be called")
				return false, nil
			},
		}
		svc := NewNotificationService(repo, nil, nil, ist, nil)

		_, _, err := svc.Emit(context.Background(), domain.NewNotification{UserID: 3, Title: "x"})
		require.ErrorIs(t, err, domain.ErrInvalidType)
	})

	t.Run("repo error", func(t *testing.T) {
		repo := notificationRepoMock{
			createIfAbsentFn: func(context.Context, *domain.Notification) (bool, error) {
				return false, errors.New("db down")
			},
		}
		svc := NewNotificationService(repo, nil, nil, nil, nil)

		_, created, err := svc.Emit(context.Background(), domain.NewNotification{
			UserID: 3, Type: domain.TypeTaskDelay, Title: "Delay",
		})
		require.ErrorContains(t, err, "db down")
		assert.False(t, created)
	})
}

func TestNotificationService_EmitPublishes(t *testing.T) {
	created := func(_ context.Context, n *domain.Notification) (bool, error) {
		n.ID = 9
		return true, nil
	}
	in := domain.NewNotification{UserID: 4, Type: domain.TypeTaskDelay, Title: "Delay", RelatedID: 2, RelatedType: domain.RelatedTask}

	t.Run("publisher replaces local delivery", func(t *testing.T) {
		pub := &publisherMock{}
		svc := NewNotificationService(notificationRepoMock{createIfAbsentFn: created}, nil, nil, time.UTC, nil)
		svc.SetPublisher(pub)

		_, ok, err := svc.Emit(context.Background(), in)
		require.NoError(t, err)
		require.True(t, ok)
		require.Contains(t, pub.published, int64(4))
		assert.Contains(t, string(pub.published[4]), `"related_type":"task"`)
	})

	t.Run("publish failure falls back to the hub", func(t *testing.T) {
		hub := ws.NewHub(nil)
		go hub.Run()
		defer hub.Stop()

		svc := NewNotificationService(notificationRepoMock{createIfAbsentFn: created}, hub, nil, time.UTC, nil)
		svc.SetPublisher(&publisherMock{err: errors.New("redis down")})

		_, ok, err := svc.Emit(context.Background(), in)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("duplicates are not published", func(t *testing.T) {
		pub := &publisherMock{}
		repo := notificationRepoMock{
			createIfAbsentFn: func(context.Context, *domain.Notification) (bool, error) { return false, nil },
		}
		svc := NewNotificationService(repo, nil, nil, time.UTC, nil)
		svc.SetPublisher(pub)

		_, ok, err := svc.Emit(context.Background(), in)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, pub.published)
	})
}

func TestNotificationService_ConcurrentEmitsCreateOneRow(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewNotificationService(repo, nil, nil, time.UTC, nil)
	svc.now = fixedClock("2024-05-01T09:00:00Z")

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := svc.Emit(context.Background(), domain.NewNotification{
				UserID: 1, Type: domain.TypeTaskDelay, Title: "Delay", RelatedID: 77, RelatedType: domain.RelatedTask,
			})
			assert.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount)
	assert.Len(t, repo.rows, 1)
}

func TestNotificationService_DedupResetsNextDay(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewNotificationService(repo, nil, nil, time.UTC, nil)
	in := domain.NewNotification{UserID: 1, Type: domain.TypeTaskDelay, Title: "Delay", RelatedID: 77, RelatedType: domain.RelatedTask}

	svc.now = fixedClock("2024-05-01T23:59:00Z")
	_, created, err := svc.Emit(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = svc.Emit(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created)

	svc.now = fixedClock("2024-05-02T00:01:00Z")
	_, created, err = svc.Emit(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestNotificationService_ReadOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("unread count is cached", func(t *testing.T) {
		calls := 0
		repo := notificationRepoMock{
			unreadCountFn: func(context.Context, int64) (int, error) {
				calls++
				return 3, nil
			},
		}
		cache := &cacheMock{}
		svc := NewNotificationService(repo, nil, cache, nil, nil)

		n, err := svc.UnreadCount(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		n, err = svc.UnreadCount(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, 1, calls)
	})

	t.Run("count read before an emit is not cached", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		var mu sync.Mutex
		stored := 3
		first := true
		readDone := make(chan struct{})
		release := make(chan struct{})
		repo := notificationRepoMock{
			createIfAbsentFn: func(_ context.Context, n *domain.Notification) (bool, error) {
				mu.Lock()
				defer mu.Unlock()
				stored++
				n.ID = int64(stored)
				return true, nil
			},
			unreadCountFn: func(context.Context, int64) (int, error) {
				mu.Lock()
				n, block := stored, first
				first = false
				mu.Unlock()
				if block {
					close(readDone)
					<-release
				}
				return n, nil
			},
		}
		svc := NewNotificationService(repo, nil, unreadcache.NewRedisUnreadCache(rdb, time.Minute, nil), time.UTC, nil)

		slow := make(chan int, 1)
		go func() {
			n, err := svc.UnreadCount(ctx, 8)
			assert.NoError(t, err)
			slow <- n
		}()
		<-readDone

		_, created, err := svc.Emit(ctx, domain.NewNotification{
			UserID: 8, Type: domain.TypeTaskDelay, Title: "Delay", RelatedID: 1, RelatedType: domain.RelatedTask,
		})
		require.NoError(t, err)
		require.True(t, created)
		close(release)
		assert.Equal(t, 3, <-slow)

		n, err := svc.UnreadCount(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("unread count error", func(t *testing.T) {
		repo := notificationRepoMock{
			unreadCountFn: func(context.Context, int64) (int, error) { return 0, errors.New("count fail") },
		}
		svc := NewNotificationService(repo, nil, nil, nil, nil)
		_, err := svc.UnreadCount(ctx, 8)
		require.EqualError(t, err, "count fail")
	})

	t.Run("mark read invalidates cache", func(t *testing.T) {
		repo := notificationRepoMock{
			markAsReadFn:    func(context.Context, int64, int64) error { return nil },
			markAllAsReadFn: func(context.Context, int64) (int64, error) { return 2, nil },
		}
		cache := &cacheMock{values: map[int64]int{8: 4}}
		svc := NewNotificationService(repo, nil, cache, nil, nil)

		require.NoError(t, svc.MarkAsRead(ctx, 1, 8))
		n, err := svc.MarkAllAsRead(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, []int64{8, 8}, cache.invalidated)
	})

	t.Run("mark read error leaves cache alone", func(t *testing.T) {
		repo := notificationRepoMock{
			markAsReadFn:    func(context.Context, int64, int64) error { return domain.ErrNotificationNotFound },
			markAllAsReadFn: func(context.Context, int64) (int64, error) { return 0, errors.New("exec fail") },
		}
		cache := &cacheMock{}
		svc := NewNotificationService(repo, nil, cache, nil, nil)

		require.ErrorIs(t, svc.MarkAsRead(ctx, 1, 8), domain.ErrNotificationNotFound)
		_, err := svc.MarkAllAsRead(ctx, 8)
		require.EqualError(t, err, "exec fail")
		assert.Empty(t, cache.invalidated)
	})

	t.Run("list and get delegate", func(t *testing.T) {
		repo := notificationRepoMock{
			getByUserIDFn: func(_ context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
				assert.Equal(t, int64(8), userID)
				assert.Equal(t, 0, limit)
				return []domain.Notification{{ID: 1}}, nil
			},
			getByIDFn: func(_ context.Context, id, userID int64) (*domain.Notification, error) {
				return &domain.Notification{ID: id, UserID: userID}, nil
			},
		}
		svc := NewNotificationService(repo, nil, nil, nil, nil)

		items, err := svc.GetUserNotifications(ctx, 8, 0, 0)
		require.NoError(t, err)
		assert.Len(t, items, 1)

		n, err := svc.Get(ctx, 2, 8)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n.ID)
	})
}

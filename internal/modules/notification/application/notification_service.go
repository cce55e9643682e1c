package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/saransh1220/flow-management/internal/modules/notification/domain"
	"github.com/saransh1220/flow-management/internal/modules/notification/infrastructure/websocket"
)

// UnreadCache stores unread counts in front of the repository. Implementations
// swallow their own errors; a miss falls back to the database.
//
// Get reports a generation on a miss and Set only stores the count while that
// generation is current. Invalidate moves the generation forward.
type UnreadCache interface {
	Get(ctx context.Context, userID int64) (count int, generation int64, ok bool)
	Set(ctx context.Context, userID int64, count int, generation int64)
	Invalidate(ctx context.Context, userID int64)
}

// Publisher fans push messages out to every process serving websockets.
type Publisher interface {
	Publish(ctx context.Context, userID int64, payload []byte) error
}

type NotificationService struct {
	repo      domain.NotificationRepository
	hub       *websocket.Hub
	publisher Publisher
	cache     UnreadCache
	loc       *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewNotificationService wires the store. hub and cache may be nil. loc is the
// zone whose calendar day bounds deduplication.
func NewNotificationService(repo domain.NotificationRepository, hub *websocket.Hub, cache UnreadCache, loc *time.Location, logger *slog.Logger) *NotificationService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		repo:   repo,
		hub:    hub,
		cache:  cache,
		loc:    loc,
		logger: logger.With("component", "notifications"),
		now:    time.Now,
	}
}

// SetPublisher routes pushes through p instead of the local hub. The local hub
// is still used when publishing fails.
func (s *NotificationService) SetPublisher(p Publisher) {
	s.publisher = p
}

// Emit stores a notification unless the recipient already has one with the
// same type and related entity today. created reports whether a row was
// written; a duplicate is not an error.
func (s *NotificationService) Emit(ctx context.Context, in domain.NewNotification) (n *domain.Notification, created bool, err error) {
	if err := in.Validate(); err != nil {
		return nil, false, err
	}

	now := s.now()
	n = &domain.Notification{
		UserID:         in.UserID,
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		RelatedID:      in.RelatedID,
		RelatedType:    in.RelatedType,
		ActionRequired: len(in.ActionData) > 0,
		ActionData:     in.ActionData,
		CreatedAt:      now,
		DedupDate:      domain.DedupDay(now, s.loc),
	}

	created, err = s.repo.CreateIfAbsent(ctx, n)
	if err != nil {
		return nil, false, fmt.Errorf("emit %s for user %d: %w", in.Type, in.UserID, err)
	}
	if !created {
		notificationsDeduplicated.WithLabelValues(string(in.Type)).Inc()
		s.logger.Debug("notification deduplicated",
			"user_id", in.UserID, "type", in.Type, "related_id", in.RelatedID, "day", n.DedupDate)
		return n, false, nil
	}

	notificationsCreated.WithLabelValues(string(in.Type)).Inc()
	s.invalidate(ctx, in.UserID)
	s.push(ctx, n)
	return n, true, nil
}

func (s *NotificationService) push(ctx context.Context, n *domain.Notification) {
	if s.hub == nil && s.publisher == nil {
		return
	}
	msg, err := json.Marshal(n)
	if err != nil {
		s.logger.Warn("failed to encode push message", "id", n.ID, "error", err)
		return
	}
	if s.publisher != nil {
		err := s.publisher.Publish(ctx, n.UserID, msg)
		if err == nil {
			return
		}
		s.logger.Warn("push publish failed, delivering locally", "id", n.ID, "error", err)
	}
	if s.hub != nil {
		go s.hub.SendToUser(n.UserID, msg)
	}
}

func (s *NotificationService) invalidate(ctx context.Context, userID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) Get(ctx context.Context, notificationID, userID int64) (*domain.Notification, error) {
	return s.repo.GetByID(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, userID)
	return n, nil
}

// UnreadCount reads through the cache. The generation is taken before the
// database read so a count that raced with Emit is never stored.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var generation int64 = -1
	if s.cache != nil {
		n, gen, ok := s.cache.Get(ctx, userID)
		if ok {
			return n, nil
		}
		generation = gen
	}
	n, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, userID, n, generation)
	}
	return n, nil
}

func (s *NotificationService) GetHub() *websocket.Hub {
	return s.hub
}

package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/flow-management/internal/modules/notification/application"
	"github.com/saransh1220/flow-management/internal/modules/notification/infrastructure/cache"
	"github.com/saransh1220/flow-management/internal/modules/notification/infrastructure/persistence/mysql"
	"github.com/saransh1220/flow-management/internal/modules/notification/infrastructure/pubsub"
	"github.com/saransh1220/flow-management/internal/modules/notification/infrastructure/websocket"
	notification_http "github.com/saransh1220/flow-management/internal/modules/notification/interfaces/http"
)

type Module struct {
	service *application.NotificationService
	handler *notification_http.NotificationHandler
	hub     *websocket.Hub
	relay   *pubsub.RedisRelay
}

// NewModule wires the store. rdb may be nil, in which case unread counts are
// always read from MySQL and pushes only reach websockets held by this
// process. With rdb, pushes are published on Redis and delivered by whichever
// process called StartRelay.
func NewModule(db *sqlx.DB, rdb *redis.Client, loc *time.Location, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.Default()
	}
	repo := mysql.NewMySQLNotificationRepository(db)
	hub := websocket.NewHub(logger)
	go hub.Run()

	var unread application.UnreadCache
	if rdb != nil {
		unread = cache.NewRedisUnreadCache(rdb, 0, logger)
	}

	service := application.NewNotificationService(repo, hub, unread, loc, logger)
	handler := notification_http.NewNotificationHandler(service, hub, logger)

	var relay *pubsub.RedisRelay
	if rdb != nil {
		relay = pubsub.NewRedisRelay(rdb, pubsub.DefaultChannel, logger)
		service.SetPublisher(relay)
	}

	return &Module{
		service: service,
		handler: handler,
		hub:     hub,
		relay:   relay,
	}
}

// StartRelay delivers pushes published by any process to the websockets held
// here, until ctx is done. It is a no-op without Redis.
func (m *Module) StartRelay(ctx context.Context) error {
	if m.relay == nil {
		return nil
	}
	return m.relay.Subscribe(ctx, m.hub.SendToUser)
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

// Shutdown stops the websocket hub and closes client connections.
func (m *Module) Shutdown() {
	m.hub.Stop()
}

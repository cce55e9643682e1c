package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/saransh1220/flow-management/internal/gateway/middleware"
	"github.com/saransh1220/flow-management/internal/modules/notification/application"
	"github.com/saransh1220/flow-management/internal/modules/notification/domain"
	"github.com/saransh1220/flow-management/internal/modules/notification/infrastructure/websocket"
	"github.com/saransh1220/flow-management/internal/shared/utils"
)

const maxListLimit = 500

type NotificationHandler struct {
	service *application.NotificationService
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewNotificationHandler(service *application.NotificationService, hub *websocket.Hub, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{service: service, hub: hub, logger: logger}
}

// Subscribe upgrades to a websocket that receives newly created
// notifications for the session user.
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	websocket.ServeWs(h.hub, w, r, userID)
}

// Handle dispatches on the action query or form parameter.
func (h *NotificationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	action := strings.TrimSpace(r.FormValue("action"))
	switch action {
	case "get_notifications":
		h.listNotifications(w, r, userID)
	case "get_unread_count":
		h.unreadCount(w, r, userID)
	case "mark_read":
		if requirePost(w, r) {
			h.markRead(w, r, userID)
		}
	case "mark_all_read":
		if requirePost(w, r) {
			h.markAllRead(w, r, userID)
		}
	case "":
		utils.WriteError(w, http.StatusBadRequest, "no action selected", nil)
	default:
		utils.WriteError(w, http.StatusBadRequest, "unknown action", nil)
	}
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return false
	}
	return true
}

func (h *NotificationHandler) listNotifications(w http.ResponseWriter, r *http.Request, userID int64) {
	limit, offset := 0, 0
	if l := r.FormValue("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = min(v, maxListLimit)
		}
	}
	if o := r.FormValue("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	notifications, err := h.service.GetUserNotifications(r.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("list notifications failed", "user_id", userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch notifications", nil)
		return
	}
	unread, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		h.logger.Error("unread count failed", "user_id", userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch notifications", nil)
		return
	}

	utils.WriteSuccess(w, map[string]any{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) unreadCount(w http.ResponseWriter, r *http.Request, userID int64) {
	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		h.logger.Error("unread count failed", "user_id", userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to get unread count", nil)
		return
	}
	utils.WriteSuccess(w, map[string]any{"count": count})
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request, userID int64) {
	notificationID, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil || notificationID <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "invalid notification id", nil)
		return
	}

	if err := h.service.MarkAsRead(r.Context(), notificationID, userID); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
			return
		}
		h.logger.Error("mark read failed", "user_id", userID, "id", notificationID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark notification as read", nil)
		return
	}
	utils.WriteSuccess(w, map[string]any{"id": notificationID})
}

func (h *NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request, userID int64) {
	updated, err := h.service.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		h.logger.Error("mark all read failed", "user_id", userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark notifications as read", nil)
		return
	}
	utils.WriteSuccess(w, map[string]any{"updated": updated})
}

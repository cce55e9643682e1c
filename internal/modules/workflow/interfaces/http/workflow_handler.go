package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/saransh1220/flow-management/internal/gateway/middleware"
	notificationDomain "github.com/saransh1220/flow-management/internal/modules/notification/domain"
	"github.com/saransh1220/flow-management/internal/modules/workflow/application"
	"github.com/saransh1220/flow-management/internal/modules/workflow/domain"
	"github.com/saransh1220/flow-management/internal/shared/timeparse"
	"github.com/saransh1220/flow-management/internal/shared/utils"
)

type WorkflowHandler struct {
	service *application.WorkflowService
	loc     *time.Location
	logger  *slog.Logger
}

func NewWorkflowHandler(service *application.WorkflowService, loc *time.Location, logger *slog.Logger) *WorkflowHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowHandler{service: service, loc: loc, logger: logger}
}

// Handle dispatches on the action parameter. Every workflow action mutates
// state, so only POST is accepted.
func (h *WorkflowHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	action := strings.TrimSpace(r.FormValue("action"))
	switch action {
	case "submit_leave":
		h.submitLeave(w, r, userID)
	case "cancel_leave":
		h.cancelLeave(w, r, userID)
	case "request_meeting":
		h.requestMeeting(w, r, userID)
	case "":
		utils.WriteError(w, http.StatusBadRequest, "no action selected", nil)
	default:
		kind := notificationDomain.ActionKind(action)
		if !kind.Valid() {
			utils.WriteError(w, http.StatusBadRequest, "unknown action", nil)
			return
		}
		h.perform(w, r, userID, kind)
	}
}

func (h *WorkflowHandler) submitLeave(w http.ResponseWriter, r *http.Request, userID int64) {
	start, errStart := h.parseDay(r.FormValue("start_date"))
	end, errEnd := h.parseDay(r.FormValue("end_date"))
	if errStart != nil || errEnd != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid leave dates", nil)
		return
	}

	leave, err := h.service.SubmitLeave(r.Context(), userID, domain.SubmitLeaveInput{
		LeaveType: strings.TrimSpace(r.FormValue("leave_type")),
		StartDate: start,
		EndDate:   end,
		Reason:    strings.TrimSpace(r.FormValue("reason")),
	})
	if err != nil {
		h.writeError(w, "submit_leave", userID, err)
		return
	}
	utils.WriteSuccess(w, map[string]any{"leave": leave})
}

func (h *WorkflowHandler) cancelLeave(w http.ResponseWriter, r *http.Request, userID int64) {
	leaveID, err := parseID(r.FormValue("leave_id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid leave id", nil)
		return
	}
	if err := h.service.CancelLeave(r.Context(), userID, leaveID); err != nil {
		h.writeError(w, "cancel_leave", userID, err)
		return
	}
	utils.WriteSuccess(w, map[string]any{"leave_id": leaveID})
}

func (h *WorkflowHandler) requestMeeting(w http.ResponseWriter, r *http.Request, userID int64) {
	hostID, err := parseID(r.FormValue("host_id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid host id", nil)
		return
	}
	scheduledAt, err := timeparse.ParseLoose(r.FormValue("scheduled_at"), h.loc)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid meeting time", nil)
		return
	}

	m, err := h.service.RequestMeeting(r.Context(), userID, domain.RequestMeetingInput{
		HostID:      hostID,
		Title:       strings.TrimSpace(r.FormValue("title")),
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		h.writeError(w, "request_meeting", userID, err)
		return
	}
	utils.WriteSuccess(w, map[string]any{"meeting": m})
}

func (h *WorkflowHandler) perform(w http.ResponseWriter, r *http.Request, userID int64, kind notificationDomain.ActionKind) {
	notificationID, err := parseID(r.FormValue("notification_id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid notification id", nil)
		return
	}

	var newTime time.Time
	if raw := r.FormValue("new_time"); raw != "" {
		if newTime, err = timeparse.ParseLoose(raw, h.loc); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "invalid meeting time", nil)
			return
		}
	}

	action, err := domain.ParseAction(kind, r.FormValue("reason"), newTime)
	if err != nil {
		h.writeError(w, string(kind), userID, err)
		return
	}
	if err := h.service.Perform(r.Context(), userID, notificationID, action); err != nil {
		h.writeError(w, string(kind), userID, err)
		return
	}
	utils.WriteSuccess(w, map[string]any{"notification_id": notificationID})
}

func (h *WorkflowHandler) writeError(w http.ResponseWriter, action string, userID int64, err error) {
	switch {
	case application.IsForbidden(err):
		utils.WriteError(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidTransition):
		utils.WriteError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, notificationDomain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrLeaveNotFound),
		errors.Is(err, domain.ErrMeetingNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidLeave),
		errors.Is(err, domain.ErrInvalidMeeting),
		errors.Is(err, domain.ErrNoApprover),
		errors.Is(err, domain.ErrUnknownAction),
		errors.Is(err, domain.ErrActionNotAllowed):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.logger.Error("workflow action failed", "action", action, "user_id", userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "action failed", nil)
	}
}

func (h *WorkflowHandler) parseDay(raw string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, strings.TrimSpace(raw), h.loc)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type NotificationType string

const (
	TypeTaskDelay          NotificationType = "task_delay"
	TypeLeaveRequest       NotificationType = "leave_request"
	TypeLeaveApproved      NotificationType = "leave_approved"
	TypeLeaveRejected      NotificationType = "leave_rejected"
	TypeMeetingRequest     NotificationType = "meeting_request"
	TypeMeetingApproved    NotificationType = "meeting_approved"
	TypeMeetingRescheduled NotificationType = "meeting_rescheduled"
	TypeNotesReminder      NotificationType = "notes_reminder"
	TypeDaySpecial         NotificationType = "day_special"
)

// AllTypes returns every notification type the store accepts.
func AllTypes() []NotificationType {
	return []NotificationType{
		TypeTaskDelay,
		TypeLeaveRequest,
		TypeLeaveApproved,
		TypeLeaveRejected,
		TypeMeetingRequest,
		TypeMeetingApproved,
		TypeMeetingRescheduled,
		TypeNotesReminder,
		TypeDaySpecial,
	}
}

var redirectTargets = map[NotificationType]string{
	TypeTaskDelay:          "/tasks",
	TypeLeaveRequest:       "/leave/approvals",
	TypeLeaveApproved:      "/leave/my-requests",
	TypeLeaveRejected:      "/leave/my-requests",
	TypeMeetingRequest:     "/meetings/requests",
	TypeMeetingApproved:    "/meetings",
	TypeMeetingRescheduled: "/meetings",
	TypeNotesReminder:      "/notes",
	TypeDaySpecial:         "/dashboard",
}

func (t NotificationType) Valid() bool {
	_, ok := redirectTargets[t]
	return ok
}

// RedirectTarget is the page a notification of this type opens.
func (t NotificationType) RedirectTarget() string {
	return redirectTargets[t]
}

// AllowsAction reports whether a button of kind k may be executed from a
// notification of this type.
func (t NotificationType) AllowsAction(k ActionKind) bool {
	switch t {
	case TypeLeaveRequest:
		return k == ActionApproveLeave || k == ActionRejectLeave
	case TypeMeetingRequest:
		return k == ActionApproveMeeting || k == ActionRescheduleMeeting
	}
	return false
}

// Related entity kinds referenced by related_type.
const (
	RelatedTask            = "task"
	RelatedChecklistTask   = "checklist_task"
	RelatedLeaveRequest    = "leave_request"
	RelatedMeeting         = "meeting"
	RelatedNote            = "note"
	RelatedBirthday        = "birthday"
	RelatedWorkAnniversary = "work_anniversary"
)

type ActionKind string

const (
	ActionApproveLeave      ActionKind = "approve_leave"
	ActionRejectLeave       ActionKind = "reject_leave"
	ActionApproveMeeting    ActionKind = "approve_meeting"
	ActionRescheduleMeeting ActionKind = "reschedule_meeting"
)

func (k ActionKind) Valid() bool {
	switch k {
	case ActionApproveLeave, ActionRejectLeave, ActionApproveMeeting, ActionRescheduleMeeting:
		return true
	}
	return false
}

// ActionButton is one entry of action_data, rendered as a button on the bell.
type ActionButton struct {
	Type  ActionKind `json:"type"`
	Label string     `json:"label"`
	Icon  string     `json:"icon"`
	Color string     `json:"color"`
}

// ActionButtons is stored as a JSON column.
type ActionButtons []ActionButton

func (b ActionButtons) Value() (driver.Value, error) {
	if len(b) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (b *ActionButtons) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*b = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("action_data: unsupported type %T", src)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*b = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]ActionButton)(b))
}

func LeaveDecisionButtons() ActionButtons {
	return ActionButtons{
		{Type: ActionApproveLeave, Label: "Approve", Icon: "check", Color: "success"},
		{Type: ActionRejectLeave, Label: "Reject", Icon: "x", Color: "danger"},
	}
}

func MeetingDecisionButtons() ActionButtons {
	return ActionButtons{
		{Type: ActionApproveMeeting, Label: "Approve", Icon: "check", Color: "success"},
		{Type: ActionRescheduleMeeting, Label: "Reschedule", Icon: "clock", Color: "warning"},
	}
}

type Notification struct {
	ID             int64            `json:"id" db:"id"`
	UserID         int64            `json:"user_id" db:"user_id"`
	Type           NotificationType `json:"type" db:"type"`
	Title          string           `json:"title" db:"title"`
	Message        string           `json:"message" db:"message"`
	RelatedID      int64            `json:"related_id" db:"related_id"`
	RelatedType    string           `json:"related_type" db:"related_type"`
	IsRead         bool             `json:"is_read" db:"is_read"`
	ActionRequired bool             `json:"action_required" db:"action_required"`
	ActionData     ActionButtons    `json:"action_data" db:"action_data"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	DedupDate      string           `json:"-" db:"dedup_date"`
}

// MarshalJSON adds the redirect target so clients never have to guess it.
func (n Notification) MarshalJSON() ([]byte, error) {
	type plain Notification
	actions := n.ActionData
	if actions == nil {
		actions = ActionButtons{}
	}
	return json.Marshal(struct {
		plain
		ActionData  ActionButtons `json:"action_data"`
		RedirectURL string        `json:"redirect_url"`
	}{
		plain:       plain(n),
		ActionData:  actions,
		RedirectURL: n.Type.RedirectTarget(),
	})
}

// NewNotification is the input for a single emit.
type NewNotification struct {
	UserID      int64
	Type        NotificationType
	Title       string
	Message     string
	RelatedID   int64
	RelatedType string
	ActionData  ActionButtons
}

func (n NewNotification) Validate() error {
	if n.UserID <= 0 {
		return ErrInvalidRecipient
	}
	if !n.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, n.Type)
	}
	if strings.TrimSpace(n.Title) == "" {
		return ErrMissingTitle
	}
	for _, a := range n.ActionData {
		if !a.Type.Valid() || !n.Type.AllowsAction(a.Type) {
			return fmt.Errorf("%w: %q on %s", ErrInvalidAction, a.Type, n.Type)
		}
	}
	return nil
}

// DedupKey identifies the one notification a recipient may get per related
// entity, type and calendar day.
type DedupKey struct {
	UserID      int64
	RelatedID   int64
	RelatedType string
	Type        NotificationType
	Day         string
}

// DedupDay formats t as the calendar day in loc.
func DedupDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(time.DateOnly)
}

func (n Notification) DedupKey() DedupKey {
	return DedupKey{
		UserID:      n.UserID,
		RelatedID:   n.RelatedID,
		RelatedType: n.RelatedType,
		Type:        n.Type,
		Day:         n.DedupDate,
	}
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidType          = errors.New("invalid notification type")
	ErrInvalidRecipient     = errors.New("notification recipient is required")
	ErrMissingTitle         = errors.New("notification title is required")
	ErrInvalidAction        = errors.New("action not allowed for notification")
)

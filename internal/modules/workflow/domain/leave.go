package domain

import (
	"fmt"
	"strings"
	"time"
)

// LeaveStatus values are stored byte-exact; the column uses a binary
// collation.
type LeaveStatus string

const (
	LeavePending   LeaveStatus = "PENDING"
	LeaveApproved  LeaveStatus = "Approve"
	LeaveRejected  LeaveStatus = "Reject"
	LeaveCancelled LeaveStatus = "Cancelled"
)

func LeaveStatuses() []LeaveStatus {
	return []LeaveStatus{LeavePending, LeaveApproved, LeaveRejected, LeaveCancelled}
}

// ParseLeaveStatus accepts only the canonical spellings.
func ParseLeaveStatus(raw string) (LeaveStatus, error) {
	for _, s := range LeaveStatuses() {
		if raw == string(s) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: leave status %q", ErrInvalidStatus, raw)
}

var legacyLeaveStatuses = map[string]LeaveStatus{
	"pending":   LeavePending,
	"approve":   LeaveApproved,
	"approved":  LeaveApproved,
	"reject":    LeaveRejected,
	"rejected":  LeaveRejected,
	"cancel":    LeaveCancelled,
	"cancelled": LeaveCancelled,
	"canceled":  LeaveCancelled,
}

// CanonicalLeaveStatus maps the spellings found in old rows ("Pending",
// " approved ", "REJECTED") onto the canonical set.
func CanonicalLeaveStatus(raw string) (LeaveStatus, bool) {
	s, ok := legacyLeaveStatuses[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

type LeaveRequest struct {
	ID           int64       `db:"id" json:"id"`
	UserID       int64       `db:"user_id" json:"user_id"`
	ManagerID    int64       `db:"manager_id" json:"manager_id"`
	LeaveType    string      `db:"leave_type" json:"leave_type"`
	StartDate    time.Time   `db:"start_date" json:"start_date"`
	EndDate      time.Time   `db:"end_date" json:"end_date"`
	Reason       string      `db:"reason" json:"reason"`
	Status       LeaveStatus `db:"status" json:"status"`
	DecidedBy    *int64      `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt    *time.Time  `db:"decided_at" json:"decided_at,omitempty"`
	DecisionNote string      `db:"decision_note" json:"decision_note,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// LeaveDecision is the guarded status change applied by Transition.
type LeaveDecision struct {
	LeaveID   int64
	From      LeaveStatus
	To        LeaveStatus
	DecidedBy int64
	Note      string
	At        time.Time
}

// LeaveStatusRow is a leave whose stored status is not byte-exact canonical.
type LeaveStatusRow struct {
	ID     int64  `db:"id"`
	Status string `db:"status"`
}

const maxLeaveReason = 500

type SubmitLeaveInput struct {
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

func (in SubmitLeaveInput) Validate() error {
	switch {
	case strings.TrimSpace(in.LeaveType) == "":
		return fmt.Errorf("%w: leave type is required", ErrInvalidLeave)
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidLeave)
	case in.EndDate.Before(in.StartDate):
		return fmt.Errorf("%w: end date is before start date", ErrInvalidLeave)
	case len(in.Reason) > maxLeaveReason:
		return fmt.Errorf("%w: reason is too long", ErrInvalidLeave)
	}
	return nil
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

type MeetingStatus string

const (
	MeetingPending     MeetingStatus = "Pending"
	MeetingApproved    MeetingStatus = "Approved"
	MeetingRescheduled MeetingStatus = "Rescheduled"
)

type Meeting struct {
	ID          int64         `db:"id" json:"id"`
	RequesterID int64         `db:"requester_id" json:"requester_id"`
	HostID      int64         `db:"host_id" json:"host_id"`
	Title       string        `db:"title" json:"title"`
	ScheduledAt time.Time     `db:"scheduled_at" json:"scheduled_at"`
	Status      MeetingStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// MeetingDecision is the guarded status change applied by Transition. A
// non-nil ScheduledAt moves the meeting.
type MeetingDecision struct {
	MeetingID   int64
	From        MeetingStatus
	To          MeetingStatus
	ScheduledAt *time.Time
	At          time.Time
}

type RequestMeetingInput struct {
	HostID      int64
	Title       string
	ScheduledAt time.Time
}

func (in RequestMeetingInput) Validate(requesterID int64, now time.Time) error {
	switch {
	case in.HostID <= 0:
		return fmt.Errorf("%w: host is required", ErrInvalidMeeting)
	case in.HostID == requesterID:
		return fmt.Errorf("%w: cannot request a meeting with yourself", ErrInvalidMeeting)
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidMeeting)
	case !in.ScheduledAt.After(now):
		return fmt.Errorf("%w: meeting time must be in the future", ErrInvalidMeeting)
	}
	return nil
}

package domain

import (
	"context"
)

type User struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	ManagerID *int64 `db:"manager_id"`
	IsActive  bool   `db:"is_active"`
}

type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (*User, error)
}

type LeaveRepository interface {
	Create(ctx context.Context, leave *LeaveRequest) error
	GetByID(ctx context.Context, id int64) (*LeaveRequest, error)
	// Transition applies d only while the row still has status d.From and
	// returns ErrInvalidTransition otherwise.
	Transition(ctx context.Context, d LeaveDecision) error
	ListNonCanonical(ctx context.Context) ([]LeaveStatusRow, error)
	// RewriteStatus replaces raw with the canonical status; false means the
	// row changed underneath.
	RewriteStatus(ctx context.Context, id int64, raw string, to LeaveStatus) (bool, error)
}

type MeetingRepository interface {
	Create(ctx context.Context, m *Meeting) error
	GetByID(ctx context.Context, id int64) (*Meeting, error)
	Transition(ctx context.Context, d MeetingDecision) error
}

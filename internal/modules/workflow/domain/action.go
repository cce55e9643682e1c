package domain

import (
	"fmt"
	"strings"
	"time"

	notificationDomain "github.com/saransh1220/flow-management/internal/modules/notification/domain"
)

// Action is an operation a user triggers from a notification button. The set
// of variants is closed; every executor implements ActionVisitor, so adding a
// variant breaks the build until each executor handles it.
type Action interface {
	Kind() notificationDomain.ActionKind
	Accept(v ActionVisitor) error
	isAction()
}

type ActionVisitor interface {
	VisitApproveLeave(ApproveLeave) error
	VisitRejectLeave(RejectLeave) error
	VisitApproveMeeting(ApproveMeeting) error
	VisitRescheduleMeeting(RescheduleMeeting) error
}

type ApproveLeave struct{}

type RejectLeave struct {
	Reason string
}

type ApproveMeeting struct{}

type RescheduleMeeting struct {
	NewTime time.Time
}

func (ApproveLeave) Kind() notificationDomain.ActionKind {
	return notificationDomain.ActionApproveLeave
}
func (RejectLeave) Kind() notificationDomain.ActionKind {
	return notificationDomain.ActionRejectLeave
}
func (ApproveMeeting) Kind() notificationDomain.ActionKind {
	return notificationDomain.ActionApproveMeeting
}
func (RescheduleMeeting) Kind() notificationDomain.ActionKind {
	return notificationDomain.ActionRescheduleMeeting
}

func (a ApproveLeave) Accept(v ActionVisitor) error      { return v.VisitApproveLeave(a) }
func (a RejectLeave) Accept(v ActionVisitor) error       { return v.VisitRejectLeave(a) }
func (a ApproveMeeting) Accept(v ActionVisitor) error    { return v.VisitApproveMeeting(a) }
func (a RescheduleMeeting) Accept(v ActionVisitor) error { return v.VisitRescheduleMeeting(a) }

func (ApproveLeave) isAction()      {}
func (RejectLeave) isAction()       {}
func (ApproveMeeting) isAction()    {}
func (RescheduleMeeting) isAction() {}

// ParseAction builds the variant for kind. newTime is only read for
// reschedule_meeting and must already be parsed by the caller.
func ParseAction(kind notificationDomain.ActionKind, reason string, newTime time.Time) (Action, error) {
	switch kind {
	case notificationDomain.ActionApproveLeave:
		return ApproveLeave{}, nil
	case notificationDomain.ActionRejectLeave:
		if len(reason) > maxLeaveReason {
			return nil, fmt.Errorf("%w: reason is too long", ErrInvalidLeave)
		}
		return RejectLeave{Reason: strings.TrimSpace(reason)}, nil
	case notificationDomain.ActionApproveMeeting:
		return ApproveMeeting{}, nil
	case notificationDomain.ActionRescheduleMeeting:
		if newTime.IsZero() {
			return nil, fmt.Errorf("%w: new time is required", ErrInvalidMeeting)
		}
		return RescheduleMeeting{NewTime: newTime}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
}

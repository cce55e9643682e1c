package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	notificationDomain "github.com/saransh1220/flow-management/internal/modules/notification/domain"
	"github.com/saransh1220/flow-management/internal/modules/workflow/domain"
)

// Notifier is the part of the notification service the workflow needs.
type Notifier interface {
	Emit(ctx context.Context, in notificationDomain.NewNotification) (*notificationDomain.Notification, bool, error)
	Get(ctx context.Context, notificationID, userID int64) (*notificationDomain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID int64) error
}

type WorkflowService struct {
	leaves   domain.LeaveRepository
	meetings domain.MeetingRepository
	users    domain.UserDirectory
	notifier Notifier
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

func NewWorkflowService(
	leaves domain.LeaveRepository,
	meetings domain.MeetingRepository,
	users domain.UserDirectory,
	notifier Notifier,
	loc *time.Location,
	logger *slog.Logger,
) *WorkflowService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowService{
		leaves:   leaves,
		meetings: meetings,
		users:    users,
		notifier: notifier,
		loc:      loc,
		logger:   logger.With("component", "workflow"),
		now:      time.Now,
	}
}

// SubmitLeave records a pending leave for userID and asks their manager to
// decide on it.
func (s *WorkflowService) SubmitLeave(ctx context.Context, userID int64, in domain.SubmitLeaveInput) (*domain.LeaveRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	requester, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if requester.ManagerID == nil || *requester.ManagerID == 0 {
		return nil, domain.ErrNoApprover
	}
	if *requester.ManagerID == userID {
		return nil, domain.ErrSelfApproval
	}

	now := s.now()
	leave := &domain.LeaveRequest{
		UserID:    userID,
		ManagerID: *requester.ManagerID,
		LeaveType: in.LeaveType,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Reason:    in.Reason,
		Status:    domain.LeavePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, fmt.Errorf("create leave: %w", err)
	}

	s.notify(ctx, notificationDomain.NewNotification{
		UserID: leave.ManagerID,
		Type:   notificationDomain.TypeLeaveRequest,
		Title:  "Leave request",
		Message: fmt.Sprintf("%s requested %s leave from %s to %s",
			requester.Name, leave.LeaveType, formatDay(leave.StartDate), formatDay(leave.EndDate)),
		RelatedID:   leave.ID,
		RelatedType: notificationDomain.RelatedLeaveRequest,
		ActionData:  notificationDomain.LeaveDecisionButtons(),
	})
	return leave, nil
}

// CancelLeave withdraws a pending leave. Only the requester may cancel.
func (s *WorkflowService) CancelLeave(ctx context.Context, userID, leaveID int64) error {
	leave, err := s.leaves.GetByID(ctx, leaveID)
	if err != nil {
		return err
	}
	if leave.UserID != userID {
		return domain.ErrNotRequester
	}
	return s.leaves.Transition(ctx, domain.LeaveDecision{
		LeaveID:   leaveID,
		From:      domain.LeavePending,
		To:        domain.LeaveCancelled,
		DecidedBy: userID,
		At:        s.now(),
	})
}

// RequestMeeting records a pending meeting and asks the host to approve or
// move it.
func (s *WorkflowService) RequestMeeting(ctx context.Context, requesterID int64, in domain.RequestMeetingInput) (*domain.Meeting, error) {
	now := s.now()
	if err := in.Validate(requesterID, now); err != nil {
		return nil, err
	}
	requester, err := s.users.GetUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	host, err := s.users.GetUser(ctx, in.HostID)
	if err != nil {
		return nil, err
	}
	if !host.IsActive {
		return nil, fmt.Errorf("%w: host is not active", domain.ErrInvalidMeeting)
	}

	m := &domain.Meeting{
		RequesterID: requesterID,
		HostID:      in.HostID,
		Title:       in.Title,
		ScheduledAt: in.ScheduledAt,
		Status:      domain.MeetingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.meetings.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	s.notify(ctx, notificationDomain.NewNotification{
		UserID:      m.HostID,
		Type:        notificationDomain.TypeMeetingRequest,
		Title:       "Meeting request",
		Message:     fmt.Sprintf("%s requested \"%s\" on %s", requester.Name, m.Title, s.formatTime(m.ScheduledAt)),
		RelatedID:   m.ID,
		RelatedType: notificationDomain.RelatedMeeting,
		ActionData:  notificationDomain.MeetingDecisionButtons(),
	})
	return m, nil
}

// Perform executes action on behalf of actorID from the notification that
// offered it. The actor must own the notification and be the approver of the
// related entity. On success the notification is marked read and the
// requester is told the outcome.
func (s *WorkflowService) Perform(ctx context.Context, actorID, notificationID int64, action domain.Action) error {
	n, err := s.notifier.Get(ctx, notificationID, actorID)
	if err != nil {
		return err
	}
	if !n.Type.AllowsAction(action.Kind()) {
		return fmt.Errorf("%w: %s on %s", domain.ErrActionNotAllowed, action.Kind(), n.Type)
	}

	exec := &actionExecutor{svc: s, ctx: ctx, actorID: actorID, relatedID: n.RelatedID}
	if err := action.Accept(exec); err != nil {
		return err
	}

	if err := s.notifier.MarkAsRead(ctx, notificationID, actorID); err != nil {
		s.logger.Warn("failed to mark acted-on notification read",
			"notification_id", notificationID, "actor_id", actorID, "error", err)
	}
	return nil
}

// notify emits and logs failures. Domain writes have already committed by
// the time a notification is sent, so a failed emit does not fail the request.
func (s *WorkflowService) notify(ctx context.Context, in notificationDomain.NewNotification) {
	if _, _, err := s.notifier.Emit(ctx, in); err != nil {
		s.logger.Error("failed to emit notification",
			"type", in.Type, "user_id", in.UserID, "related_id", in.RelatedID, "error", err)
	}
}

func (s *WorkflowService) formatTime(t time.Time) string {
	return t.In(s.loc).Format("02 Jan 2006 03:04 PM")
}

func formatDay(t time.Time) string {
	return t.Format("02 Jan 2006")
}

var _ domain.ActionVisitor = (*actionExecutor)(nil)

// actionExecutor runs one action for one actor.
type actionExecutor struct {
	svc       *WorkflowService
	ctx       context.Context
	actorID   int64
	relatedID int64
}

func (e *actionExecutor) authorizeLeave() (*domain.LeaveRequest, error) {
	leave, err := e.svc.leaves.GetByID(e.ctx, e.relatedID)
	if err != nil {
		return nil, err
	}
	if leave.UserID == e.actorID {
		return nil, domain.ErrSelfApproval
	}
	if leave.ManagerID != e.actorID {
		return nil, domain.ErrNotApprover
	}
	return leave, nil
}

func (e *actionExecutor) decideLeave(to domain.LeaveStatus, note string) (*domain.LeaveRequest, error) {
	leave, err := e.authorizeLeave()
	if err != nil {
		return nil, err
	}
	err = e.svc.leaves.Transition(e.ctx, domain.LeaveDecision{
		LeaveID:   leave.ID,
		From:      domain.LeavePending,
		To:        to,
		DecidedBy: e.actorID,
		Note:      note,
		At:        e.svc.now(),
	})
	if err != nil {
		return nil, err
	}
	return leave, nil
}

func (e *actionExecutor) VisitApproveLeave(domain.ApproveLeave) error {
	leave, err := e.decideLeave(domain.LeaveApproved, "")
	if err != nil {
		return err
	}
	e.svc.notify(e.ctx, notificationDomain.NewNotification{
		UserID: leave.UserID,
		Type:   notificationDomain.TypeLeaveApproved,
		Title:  "Leave approved",
		Message: fmt.Sprintf("Your %s leave from %s to %s was approved",
			leave.LeaveType, formatDay(leave.StartDate), formatDay(leave.EndDate)),
		RelatedID:   leave.ID,
		RelatedType: notificationDomain.RelatedLeaveRequest,
	})
	return nil
}

func (e *actionExecutor) VisitRejectLeave(a domain.RejectLeave) error {
	leave, err := e.decideLeave(domain.LeaveRejected, a.Reason)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Your %s leave from %s to %s was rejected",
		leave.LeaveType, formatDay(leave.StartDate), formatDay(leave.EndDate))
	if a.Reason != "" {
		msg += ": " + a.Reason
	}
	e.svc.notify(e.ctx, notificationDomain.NewNotification{
		UserID:      leave.UserID,
		Type:        notificationDomain.TypeLeaveRejected,
		Title:       "Leave rejected",
		Message:     msg,
		RelatedID:   leave.ID,
		RelatedType: notificationDomain.RelatedLeaveRequest,
	})
	return nil
}

func (e *actionExecutor) authorizeMeeting() (*domain.Meeting, error) {
	m, err := e.svc.meetings.GetByID(e.ctx, e.relatedID)
	if err != nil {
		return nil, err
	}
	if m.RequesterID == e.actorID {
		return nil, domain.ErrSelfApproval
	}
	if m.HostID != e.actorID {
		return nil, domain.ErrNotApprover
	}
	return m, nil
}

func (e *actionExecutor) VisitApproveMeeting(domain.ApproveMeeting) error {
	m, err := e.authorizeMeeting()
	if err != nil {
		return err
	}
	err = e.svc.meetings.Transition(e.ctx, domain.MeetingDecision{
		MeetingID: m.ID,
		From:      domain.MeetingPending,
		To:        domain.MeetingApproved,
		At:        e.svc.now(),
	})
	if err != nil {
		return err
	}
	e.svc.notify(e.ctx, notificationDomain.NewNotification{
		UserID:      m.RequesterID,
		Type:        notificationDomain.TypeMeetingApproved,
		Title:       "Meeting approved",
		Message:     fmt.Sprintf("\"%s\" on %s was approved", m.Title, e.svc.formatTime(m.ScheduledAt)),
		RelatedID:   m.ID,
		RelatedType: notificationDomain.RelatedMeeting,
	})
	return nil
}

func (e *actionExecutor) VisitRescheduleMeeting(a domain.RescheduleMeeting) error {
	now := e.svc.now()
	if !a.NewTime.After(now) {
		return fmt.Errorf("%w: new time must be in the future", domain.ErrInvalidMeeting)
	}
	m, err := e.authorizeMeeting()
	if err != nil {
		return err
	}
	newTime := a.NewTime
	err = e.svc.meetings.Transition(e.ctx, domain.MeetingDecision{
		MeetingID:   m.ID,
		From:        domain.MeetingPending,
		To:          domain.MeetingRescheduled,
		ScheduledAt: &newTime,
		At:          now,
	})
	if err != nil {
		return err
	}
	e.svc.notify(e.ctx, notificationDomain.NewNotification{
		UserID:      m.RequesterID,
		Type:        notificationDomain.TypeMeetingRescheduled,
		Title:       "Meeting rescheduled",
		Message:     fmt.Sprintf("\"%s\" was moved to %s", m.Title, e.svc.formatTime(newTime)),
		RelatedID:   m.ID,
		RelatedType: notificationDomain.RelatedMeeting,
	})
	return nil
}

// FixReport summarises a FixLeaveStatuses pass.
type FixReport struct {
	Scanned int
	Fixed   int
	Skipped int
	Unknown []domain.LeaveStatusRow
}

// FixLeaveStatuses rewrites leave rows whose status is a legacy spelling of
// a canonical one. Unrecognised values are reported and left alone.
func (s *WorkflowService) FixLeaveStatuses(ctx context.Context, dryRun bool) (FixReport, error) {
	rows, err := s.leaves.ListNonCanonical(ctx)
	if err != nil {
		return FixReport{}, fmt.Errorf("list leave statuses: %w", err)
	}

	report := FixReport{Scanned: len(rows)}
	for _, row := range rows {
		to, ok := domain.CanonicalLeaveStatus(row.Status)
		if !ok {
			report.Unknown = append(report.Unknown, row)
			continue
		}
		if dryRun {
			report.Fixed++
			continue
		}
		changed, err := s.leaves.RewriteStatus(ctx, row.ID, row.Status, to)
		if err != nil {
			return report, fmt.Errorf("rewrite leave %d: %w", row.ID, err)
		}
		if !changed {
			report.Skipped++
			continue
		}
		report.Fixed++
		s.logger.Info("leave status normalized", "leave_id", row.ID, "from", row.Status, "to", to)
	}
	return report, nil
}

// IsForbidden reports whether err is a permission failure.
func IsForbidden(err error) bool {
	return errors.Is(err, domain.ErrSelfApproval) ||
		errors.Is(err, domain.ErrNotApprover) ||
		errors.Is(err, domain.ErrNotRequester)
}

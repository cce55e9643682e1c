package domain

import "errors"

var (
	ErrLeaveNotFound     = errors.New("leave request not found")
	ErrMeetingNotFound   = errors.New("meeting not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrNoApprover        = errors.New("no approver assigned")
	ErrSelfApproval      = errors.New("cannot act on your own request")
	ErrNotApprover       = errors.New("not the designated approver")
	ErrNotRequester      = errors.New("only the requester can do this")
	ErrInvalidTransition = errors.New("request is no longer pending")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidLeave      = errors.New("invalid leave request")
	ErrInvalidMeeting    = errors.New("invalid meeting request")
	ErrUnknownAction     = errors.New("unknown action")
	ErrActionNotAllowed  = errors.New("action not allowed for this notification")
)

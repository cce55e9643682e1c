package domain

import (
	"testing"
	"time"

	notificationDomain "github.com/saransh1220/flow-management/internal/modules/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingVisitor struct {
	visited []string
}

func (v *recordingVisitor) VisitApproveLeave(ApproveLeave) error {
	v.visited = append(v.visited, "approve_leave")
	return nil
}

func (v *recordingVisitor) VisitRejectLeave(a RejectLeave) error {
	v.visited = append(v.visited, "reject_leave:"+a.Reason)
	return nil
}

func (v *recordingVisitor) VisitApproveMeeting(ApproveMeeting) error {
	v.visited = append(v.visited, "approve_meeting")
	return nil
}

func (v *recordingVisitor) VisitRescheduleMeeting(a RescheduleMeeting) error {
	v.visited = append(v.visited, "reschedule_meeting:"+a.NewTime.Format(time.RFC3339))
	return nil
}

func TestParseAction_EveryKindDispatches(t *testing.T) {
	newTime := time.Date(2024, 6, 4, 15, 0, 0, 0, time.UTC)
	v := &recordingVisitor{}

	kinds := []notificationDomain.ActionKind{
		notificationDomain.ActionApproveLeave,
		notificationDomain.ActionRejectLeave,
		notificationDomain.ActionApproveMeeting,
		notificationDomain.ActionRescheduleMeeting,
	}
	for _, kind := range kinds {
		a, err := ParseAction(kind, " overlapping release ", newTime)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, a.Kind())
		require.NoError(t, a.Accept(v))
	}

	assert.Equal(t, []string{
		"approve_leave",
		"reject_leave:overlapping release",
		"approve_meeting",
		"reschedule_meeting:2024-06-04T15:00:00Z",
	}, v.visited)
}

func TestParseAction_Errors(t *testing.T) {
	_, err := ParseAction("delete_everything", "", time.Time{})
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = ParseAction(notificationDomain.ActionRescheduleMeeting, "", time.Time{})
	assert.ErrorIs(t, err, ErrInvalidMeeting)

	_, err = ParseAction(notificationDomain.ActionRejectLeave, string(make([]byte, 600)), time.Time{})
	assert.ErrorIs(t, err, ErrInvalidLeave)
}

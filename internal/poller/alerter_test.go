package poller

import (
	"bytes"
	"errors"
	"testing"

	"github.com/saransh1220/flow-management/internal/modules/notification/domain"
	"github.com/stretchr/testify/assert"
)

func TestTerminalAlerter_Alert(t *testing.T) {
	var buf bytes.Buffer
	a := NewTerminalAlerter(&buf, true)

	a.Alert(domain.Notification{ID: 1, Type: domain.TypeMeetingRequest, Title: "Meeting", Message: "Asha wants 1:1"})

	assert.Equal(t, "\a[meeting_request] Meeting: Asha wants 1:1 (open /meetings/requests)\n", buf.String())
}

func TestTerminalAlerter_Badge(t *testing.T) {
	var buf bytes.Buffer
	a := NewTerminalAlerter(&buf, false)

	a.Badge(0)
	a.Badge(0)
	a.Badge(2)

	assert.Equal(t, "unread: 0\nunread: 2\n", buf.String())
}

// bellRefusingWriter fails any write containing the bell character. It holds
// the buffer as a field so io.WriteString cannot bypass Write.
type bellRefusingWriter struct {
	buf bytes.Buffer
}

func (w *bellRefusingWriter) Write(p []byte) (int, error) {
	if bytes.ContainsRune(p, '\a') {
		return 0, errors.New("no bell")
	}
	return w.buf.Write(p)
}

func (w *bellRefusingWriter) String() string {
	return w.buf.String()
}

func TestTerminalAlerter_FallsBackWithoutBell(t *testing.T) {
	w := &bellRefusingWriter{}
	a := NewTerminalAlerter(w, true)

	a.Alert(domain.Notification{Type: domain.TypeNotesReminder, Title: "Note", Message: "x"})

	assert.Equal(t, "[notes_reminder] Note: x (open /notes)\n", w.String())
}

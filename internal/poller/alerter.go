package poller

import (
	"fmt"
	"io"
	"sync"

	"github.com/saransh1220/flow-management/internal/modules/notification/domain"
)

// Alerter renders alerts. Alert is called at most once per notification.
type Alerter interface {
	Alert(n domain.Notification)
	Badge(unread int)
}

// TerminalAlerter prints a toast line and rings the bell.
type TerminalAlerter struct {
	mu    sync.Mutex
	out   io.Writer
	bell  bool
	badge int
}

func NewTerminalAlerter(out io.Writer, bell bool) *TerminalAlerter {
	return &TerminalAlerter{out: out, bell: bell, badge: -1}
}

func (a *TerminalAlerter) Alert(n domain.Notification) {
	a.mu.Lock()
	defer a.mu.Unlock()

	line := fmt.Sprintf("[%s] %s: %s (open %s)\n", n.Type, n.Title, n.Message, n.Type.RedirectTarget())
	if a.bell {
		if _, err := io.WriteString(a.out, "\a"+line); err == nil {
			return
		}
	}
	_, _ = io.WriteString(a.out, line)
}

// Badge prints the unread count when it changes.
func (a *TerminalAlerter) Badge(unread int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if unread == a.badge {
		return
	}
	a.badge = unread
	_, _ = fmt.Fprintf(a.out, "unread: %d\n", unread)
}

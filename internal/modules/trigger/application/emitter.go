package application

import (
	"context"

	notificationDomain "github.com/saransh1220/flow-management/internal/modules/notification/domain"
	"github.com/saransh1220/flow-management/internal/modules/trigger/domain"
)

// Emitter is the notification store's write side.
type Emitter interface {
	Emit(ctx context.Context, in notificationDomain.NewNotification) (*notificationDomain.Notification, bool, error)
}

// emit records the outcome of one emit in report.
func emit(ctx context.Context, e Emitter, in notificationDomain.NewNotification, report *domain.Report) (bool, error) {
	_, created, err := e.Emit(ctx, in)
	if err != nil {
		return false, err
	}
	if created {
		report.Emitted++
	} else {
		report.Duplicates++
	}
	return created, nil
}

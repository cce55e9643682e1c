package workflow

import (
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/flow-management/internal/modules/workflow/application"
	"github.com/saransh1220/flow-management/internal/modules/workflow/infrastructure/persistence/mysql"
	workflowHttp "github.com/saransh1220/flow-management/internal/modules/workflow/interfaces/http"
)

// Module represents the leave and meeting workflow
type Module struct {
	service *application.WorkflowService
	handler *workflowHttp.WorkflowHandler
}

// NewModule creates the workflow module. notifier is normally the
// notification module's service.
func NewModule(db *sqlx.DB, notifier application.Notifier, loc *time.Location, logger *slog.Logger) *Module {
	service := application.NewWorkflowService(
		mysql.NewMySQLLeaveRepository(db),
		mysql.NewMySQLMeetingRepository(db),
		mysql.NewMySQLUserDirectory(db),
		notifier,
		loc,
		logger,
	)
	return &Module{
		service: service,
		handler: workflowHttp.NewWorkflowHandler(service, loc, logger),
	}
}

func (m *Module) Service() *application.WorkflowService {
	return m.service
}

func (m *Module) HTTPHandler() *workflowHttp.WorkflowHandler {
	return m.handler
}

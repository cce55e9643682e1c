package workflow_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/flow-management/internal/modules/notification"
	"github.com/saransh1220/flow-management/internal/modules/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModule(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := sqlx.NewDb(sqlDB, "mysql")
	notifications := notification.NewModule(db, nil, time.UTC, nil)
	defer notifications.Shutdown()

	m := workflow.NewModule(db, notifications.Service(), time.UTC, nil)
	require.NotNil(t, m)
	assert.NotNil(t, m.Service())
	assert.NotNil(t, m.HTTPHandler())
}

package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/saransh1220/flow-management/internal/modules/trigger/domain"
	"github.com/saransh1220/flow-management/internal/modules/trigger/infrastructure/lock"
	"github.com/saransh1220/flow-management/internal/modules/workflow/application"
	workflowDomain "github.com/saransh1220/flow-management/internal/modules/workflow/domain"
	"github.com/saransh1220/flow-management/internal/shared/infrastructure/config"
	"github.com/saransh1220/flow-management/internal/shared/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_ListsSubcommands(t *testing.T) {
	os.Clearenv()
	out, _, err := runCLI(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"serve", "cron", "migrate", "watch", "leave"} {
		assert.Contains(t, out, name)
	}
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	os.Clearenv()
	_, _, err := runCLI(t, "--config", "/nonexistent/fms.yaml", "cron", "run", "delay")
	assert.Error(t, err)
}

func TestCronRun_UnknownJob(t *testing.T) {
	os.Clearenv()
	_, _, err := runCLI(t, "cron", "run", "weekly")
	assert.ErrorIs(t, err, domain.ErrUnknownTrigger)
}

func TestCronRun_SkipsWhenLocked(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	t.Setenv("TRIGGER_LOCK_DIR", dir)

	held, err := lock.Acquire(dir, "delay")
	require.NoError(t, err)
	defer held.Release()

	_, stderr, err := runCLI(t, "cron", "run", "delay")
	require.NoError(t, err)
	assert.Contains(t, stderr, "skipped")
}

func TestMigrateForce_InvalidVersion(t *testing.T) {
	os.Clearenv()
	_, _, err := runCLI(t, "migrate", "force", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version")
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	err := printResults(&buf, []domain.Result{
		{Name: domain.NameDelayWarning, Report: domain.Report{Candidates: 2, Emitted: 1, Duplicates: 1}},
		{Name: domain.NameDaySpecialBirthdays, Report: domain.Report{AlreadyRan: true}},
		{Name: domain.NameNotesReminder, Err: errors.New("db down")},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "emitted=1")
	assert.Contains(t, lines[1], "skipped")
	assert.Contains(t, lines[2], "db down")
	assert.Contains(t, lines[3], "total")
	assert.Contains(t, lines[3], "candidates=2")

	buf.Reset()
	assert.NoError(t, printResults(&buf, []domain.Result{{Name: "x"}}))
}

func TestWatchToken(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "s", Expiry: time.Hour}}

	_, err := watchToken(cfg, 0)
	assert.Error(t, err)

	tok, err := watchToken(cfg, 12)
	require.NoError(t, err)
	claims, err := utils.ValidateToken(tok, "s")
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)

	cfg.Poller.Token = "preset"
	tok, err = watchToken(cfg, 12)
	require.NoError(t, err)
	assert.Equal(t, "preset", tok)
}

func TestPrintFixReport(t *testing.T) {
	var buf bytes.Buffer
	printFixReport(&buf, application.FixReport{
		Scanned: 3,
		Fixed:   2,
		Unknown: []workflowDomain.LeaveStatusRow{{ID: 9, Status: "Maybe"}},
	}, true)

	assert.Equal(t, "scanned 3, would fix 2, skipped 0, unknown 1\n  leave 9: unrecognised status \"Maybe\"\n", buf.String())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

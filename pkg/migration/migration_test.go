package migration

import (
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unreachableDSN = "root:@tcp(127.0.0.1:1)/fms?multiStatements=true&timeout=1s"

func TestNewRunner_DefaultLogger(t *testing.T) {
	r := NewRunner(&Config{DatabaseDSN: unreachableDSN})
	require.NotNil(t, r)
	assert.NotNil(t, r.logger)
}

func TestRunnerMethods_UnreachableDatabase(t *testing.T) {
	r := NewRunner(&Config{
		DatabaseDSN: unreachableDSN,
		Logger:      slog.Default(),
	})

	assert.Error(t, r.Up())
	assert.Error(t, r.Down())
	assert.Error(t, r.Force(1))
	_, _, err := r.Version()
	assert.Error(t, err)
}

func TestAutoMigrate_UnreachableDatabase(t *testing.T) {
	assert.Error(t, AutoMigrate(unreachableDSN, slog.Default()))
}

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embedded, "migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)

	versions := make([]string, 0, len(ups))
	for v := range ups {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	assert.True(t, strings.HasPrefix(versions[0], "000001_"))
}

func TestEmbeddedMigrations_DedupKey(t *testing.T) {
	body, err := fs.ReadFile(embedded, "migrations/000003_create_notifications.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "UNIQUE KEY uq_notifications_dedup (user_id, related_id, related_type, type, dedup_date)")
}

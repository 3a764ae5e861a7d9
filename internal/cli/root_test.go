package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getcalls/website/domain/leads"
	"github.com/getcalls/website/internal/database"
	"github.com/getcalls/website/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func useTempDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leadctl.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	return path
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := NewRootCommand()

	output := cmd.PersistentFlags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "table", output.DefValue)
	assert.Equal(t, "o", output.Shorthand)

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"migrate", "leads", "payments", "plans", "version"})
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    dev")
}

func TestPlans(t *testing.T) {
	out, err := run(t, "plans")
	require.NoError(t, err)
	assert.Contains(t, out, "Starter")
	assert.Contains(t, out, "₹2,000")

	out, err = run(t, "plans", "-o", "json")
	require.NoError(t, err)
	var body struct {
		Currency string `json:"currency"`
		Plans    []struct {
			ID string `json:"id"`
		} `json:"plans"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "INR", body.Currency)
	assert.NotEmpty(t, body.Plans)

	_, err = run(t, "plans", "-o", "yaml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestMigrateAndListLeads(t *testing.T) {
	path := useTempDB(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 2")

	out, err = run(t, "leads", "list")
	require.NoError(t, err)
	assert.Equal(t, "No leads found.\n", out)

	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, path, testutil.DiscardLogger())
	require.NoError(t, err)
	now := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	repo := leads.NewRepository(db, testutil.DiscardLogger())
	for id, st := range map[string]leads.Status{"l1": leads.StatusSent, "l2": leads.StatusFailed} {
		require.NoError(t, repo.Insert(ctx, &leads.Lead{
			ID: id, Name: "Asha " + id, Phone: "9876543210", Email: id + "@example.com",
			BusinessType: "salon", Message: "need a site", Plan: "Pro",
			Status: st, CreatedAt: now, UpdatedAt: now,
		}))
	}
	require.NoError(t, db.Close())

	out, err = run(t, "leads", "list", "--status", "failed", "-o", "json")
	require.NoError(t, err)
	var list []leads.Lead
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "l2", list[0].ID)

	out, err = run(t, "leads", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Asha l1")
	assert.Contains(t, out, "l2@example.com")

	_, err = run(t, "leads", "list", "--status", "lost")
	assert.ErrorContains(t, err, "unknown status")
}

func TestPaymentsList_Empty(t *testing.T) {
	useTempDB(t)

	_, err := run(t, "migrate", "up")
	require.NoError(t, err)

	out, err := run(t, "payments", "list")
	require.NoError(t, err)
	assert.Equal(t, "No payments found.\n", out)

	out, err = run(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 2")
}

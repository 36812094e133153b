package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvdberg/klusplan/internal/app"
	"github.com/mvdberg/klusplan/internal/domain"
	"github.com/mvdberg/klusplan/internal/infra/config"
	"github.com/mvdberg/klusplan/internal/testutil"
)

func newRemoteContainer(t *testing.T) (*app.Container, *testutil.MockContentStore) {
	t.Helper()

	cache := &testutil.MockBundleCache{}
	clock := &testutil.MockClock{NowTime: time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)}
	remote := testutil.NewMockContentStore()
	c := app.NewWithDeps(config.NewDefault(), cache, remote, clock, domain.NopLogger{}, t.TempDir())
	return c, remote
}

func TestPullCommand_LoadsRemoteState(t *testing.T) {
	c, remote := newRemoteContainer(t)
	remote.Seed(domain.TasksPath, []byte(`[{"id":"TASK-001","title":"Dak inspecteren","status":"Ingepland","scheduled":{"start":"2026-03-12","end":"2026-03-12","allDay":true}}]`))
	remote.Seed(domain.PeoplePath, []byte(`[{"id":"mark","name":"Mark"}]`))

	out := execute(t, newPullCommand(c))
	assert.Contains(t, out, "1 klussen, 1 personen")

	task, err := c.Store.TaskByID("TASK-001")
	require.NoError(t, err)
	assert.Equal(t, "Dak inspecteren", task.Title)
	assert.False(t, c.Store.Dirty())
}

func TestPullCommand_WithoutRemoteFails(t *testing.T) {
	c := newTestContainer(t)

	cmd := newPullCommand(c)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geen remote")
}

func TestPushCommand_WritesAllDocuments(t *testing.T) {
	c, remote := newRemoteContainer(t)
	execute(t, newAddCommand(c), "Kozijnen schilderen", "--start", "2026-03-12T09:00", "--end", "2026-03-12T12:00")
	require.True(t, c.Store.Dirty())

	out := execute(t, newPushCommand(c))
	assert.Contains(t, out, "doorgezet")
	assert.False(t, c.Store.Dirty())

	// Fixed order: tasks, people, config, feed.
	assert.Equal(t, []string{domain.TasksPath, domain.PeoplePath, domain.ConfigPath, domain.FeedPath}, remote.Writes)
	assert.Contains(t, string(remote.Docs[domain.FeedPath].Content), "TASK-001@klusplan")
}

func TestPushCommand_LocalOnly(t *testing.T) {
	c := newTestContainer(t)
	execute(t, newAddCommand(c), "Lokale klus")

	out := execute(t, newPushCommand(c))
	assert.Contains(t, out, "geen remote geconfigureerd")
	assert.False(t, c.Store.Dirty())
}

func TestDiscardCommand_RestoresCleanState(t *testing.T) {
	c := newTestContainer(t)
	execute(t, newAddCommand(c), "Blijft")
	execute(t, newPushCommand(c))
	execute(t, newAddCommand(c), "Verdwijnt")

	execute(t, newDiscardCommand(c))

	_, err := c.Store.TaskByID("TASK-002")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = c.Store.TaskByID("TASK-001")
	assert.NoError(t, err)
	assert.False(t, c.Store.Dirty())
}

func TestStatusCommand(t *testing.T) {
	c, _ := newRemoteContainer(t)
	execute(t, newAddCommand(c), "Vloer leggen", "--group", "Binnen",
		"--start", "2026-03-12T09:00", "--end", "2026-03-12T17:00", "--estimate", "8")
	execute(t, newAddCommand(c), "Dak gedaan", "--group", "Buiten")
	execute(t, newDoneCommand(c), "TASK-002")
	execute(t, newAddCommand(c), "Wacht op kozijn")
	execute(t, newEditCommand(c), "TASK-003", "--status", "Wacht op materiaal")

	out := execute(t, newStatusCommand(c))
	assert.Contains(t, out, "Niet-doorgezette wijzigingen")
	assert.Contains(t, out, "Remote: bereikbaar")
	assert.Contains(t, out, "3 totaal")
	assert.Contains(t, out, "Afgerond: 33%")
	assert.Contains(t, out, "1 geblokkeerd")
	assert.Contains(t, out, "8.0 begroot")
	assert.Contains(t, out, "Binnen")
	assert.Contains(t, out, "0/2")
	assert.Contains(t, out, "Eerstvolgend")
	assert.Contains(t, out, "2026-03-12  TASK-001 Vloer leggen")
}

func TestClearCommand(t *testing.T) {
	c := newTestContainer(t)
	execute(t, newAddCommand(c), "Weg ermee")
	execute(t, newPeopleCommand(c), "add", "Mark")

	// Refuses without confirmation.
	cmd := newClearCommand(c)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.Error(t, cmd.Execute())
	assert.NotEmpty(t, c.Store.Tasks())

	execute(t, newClearCommand(c), "--force")
	assert.Empty(t, c.Store.Tasks())
	assert.Empty(t, c.Store.People())
	assert.True(t, c.Store.Dirty())
}

package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the file watcher:
// - A saved file is reindexed after the debounce window
// - A burst of writes to one file settles into the final content
// - A deleted file drops out of the index
// - Stop is safe to call more than once

func startWatcher(t *testing.T, m *Manager, root string) *Watcher {
	t.Helper()
	w, err := NewWatcher(m, root)
	require.NoError(t, err)
	w.debounceTime = 50 * time.Millisecond
	w.Start(context.Background())
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_ReindexesOnSave(t *testing.T) {
	t.Parallel()

	root := newTestWorkspace(t)
	m := initializedManager(t, root)
	startWatcher(t, m, root)

	writeFixture(t, root, "api/ping.py", `@app.route("/ping")
def ping():
    return "pong"
`)

	require.Eventually(t, func() bool {
		return len(m.ElementsIn("api/ping.py")) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_BurstSettlesToFinalContent(t *testing.T) {
	t.Parallel()

	root := newTestWorkspace(t)
	m := initializedManager(t, root)
	startWatcher(t, m, root)

	for i := 0; i < 5; i++ {
		writeFixture(t, root, "api/burst.py", `@app.route("/draft")
def draft():
    return ""
`)
	}
	writeFixture(t, root, "api/burst.py", `@app.route("/final")
def final():
    return ""
`)

	require.Eventually(t, func() bool {
		els := m.ElementsIn("api/burst.py")
		if len(els) != 1 {
			return false
		}
		return els[0].Base().Name == "final"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_RemovalDropsEntry(t *testing.T) {
	t.Parallel()

	root := newTestWorkspace(t)
	m := initializedManager(t, root)
	startWatcher(t, m, root)

	require.NotEmpty(t, m.ElementsIn("web/users.service.ts"))
	require.NoError(t, os.Remove(filepath.Join(root, "web", "users.service.ts")))

	require.Eventually(t, func() bool {
		return m.ElementsIn("web/users.service.ts") == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	root := newTestWorkspace(t)
	m := initializedManager(t, root)
	w, err := NewWatcher(m, root)
	require.NoError(t, err)
	w.Start(context.Background())

	w.Stop()
	assert.NotPanics(t, w.Stop)
}

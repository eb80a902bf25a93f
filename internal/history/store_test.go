package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/phux/urlscan/app"
	"github.com/phux/urlscan/internal/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()

	store, err := history.Open(filepath.Join(t.TempDir(), "nested", "urlscan"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestStore_RecordAndList(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	ctx := context.Background()
	older := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	require.NoError(t, store.Record(ctx, app.Verdict{
		URL: "https://example.com", AnalysisID: "u-1", Status: "completed",
		Stats: app.Stats{Harmless: 5, Undetected: 20}, ScannedAt: older,
	}))
	require.NoError(t, store.Record(ctx, app.Verdict{
		URL: "https://malware.example", AnalysisID: "u-2", Status: "completed",
		Stats: app.Stats{Harmless: 60, Malicious: 3, Suspicious: 1, Timeout: 2}, ScannedAt: newer,
	}))

	verdicts, err := store.List(ctx, 0)

	require.NoError(t, err)
	require.Len(t, verdicts, 2)
	assert.Equal(t, app.Verdict{
		URL: "https://malware.example", AnalysisID: "u-2", Status: "completed",
		Stats: app.Stats{Harmless: 60, Malicious: 3, Suspicious: 1, Timeout: 2}, ScannedAt: newer,
	}, verdicts[0])
	assert.Equal(t, "u-1", verdicts[1].AnalysisID)
	assert.Equal(t, older, verdicts[1].ScannedAt)

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "u-2", limited[0].AnalysisID)
}

func TestStore_RecordSameAnalysisUpdates(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	ctx := context.Background()
	scannedAt := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	verdict := app.Verdict{URL: "https://example.com", AnalysisID: "u-1", Status: "completed", Stats: app.Stats{Harmless: 1}, ScannedAt: scannedAt}

	require.NoError(t, store.Record(ctx, verdict))
	verdict.Stats.Harmless = 7
	require.NoError(t, store.Record(ctx, verdict))

	verdicts, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, 7, verdicts[0].Stats.Harmless)
}

func TestStore_EmptyList(t *testing.T) {
	t.Parallel()
	store := openStore(t)

	verdicts, err := store.List(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, verdicts)
	assert.Equal(t, history.DatabaseFile, filepath.Base(store.Path()))
}

func TestStore_ReopenKeepsVerdicts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	store, err := history.Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, app.Verdict{URL: "https://example.com", AnalysisID: "u-1", Status: "completed", ScannedAt: time.Now()}))
	require.NoError(t, store.Close())

	reopened, err := history.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	verdicts, err := reopened.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, verdicts, 1)
}

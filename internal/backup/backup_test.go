package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"salon/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, retention time.Duration) (*Service, *storage.FileBackend, string) {
	t.Helper()
	source, err := storage.NewFileBackend(t.TempDir())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "backups")
	logger := zerolog.New(io.Discard)
	svc := NewService(source, []string{storage.ClientsDocument, storage.ReservationsDocument},
		Config{Enabled: true, Dir: dir, Interval: time.Hour, Retention: retention}, &logger)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC) }
	return svc, source, dir
}

func TestPerformBackup(t *testing.T) {
	svc, source, dir := newTestService(t, 0)
	ctx := context.Background()
	require.NoError(t, source.Write(ctx, storage.ClientsDocument, []byte(`[{"nombre":"Ana","dni":"1"}]`)))

	written, err := svc.PerformBackup(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "clientes_20260301_103000.json")}, written)

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"nombre":"Ana","dni":"1"}]`, string(data))
}

func TestCleanupOldBackups(t *testing.T) {
	svc, _, dir := newTestService(t, 24*time.Hour)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	old := filepath.Join(dir, "reservas_20250101_000000.json")
	fresh := filepath.Join(dir, "reservas_20260301_100000.json")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte(`[]`), 0o644))
	}
	stale := svc.now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))
	require.NoError(t, os.Chtimes(other, stale, stale))
	now := svc.now()
	require.NoError(t, os.Chtimes(fresh, now, now))

	svc.CleanupOldBackups()

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}

func TestStart_DisabledReturns(t *testing.T) {
	svc, _, dir := newTestService(t, 0)
	svc.config.Enabled = false
	svc.Start(context.Background())
	assert.NoDirExists(t, dir)
}

func TestStart_StopsOnCancel(t *testing.T) {
	svc, source, dir := newTestService(t, 0)
	require.NoError(t, source.Write(context.Background(), storage.ReservationsDocument, []byte(`[]`)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Start(ctx)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cardscan/internal/preprocess"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Disabled(t *testing.T) {
	s := New()
	require.NoError(t, s.Start(t.TempDir(), 0, time.Hour))
	assert.False(t, s.Running())
	require.NoError(t, s.Stop())
}

func TestScheduler_RunsCleanup(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, preprocess.TempFilePrefix+"stale.png")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, past, past))

	s := New()
	require.NoError(t, s.Start(dir, 20*time.Millisecond, time.Minute))
	assert.True(t, s.Running())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(stale)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.False(t, s.Running())
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, preprocess.TempFilePrefix+"a.png")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	Cleanup(dir, 0)
	assert.NoFileExists(t, f)
}

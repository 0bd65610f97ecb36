package constme

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjroesink/whisper/internal/errors"
)

func TestAvailableRequiresBothFiles(t *testing.T) {
	dir := t.TempDir()
	dll := filepath.Join(dir, "Whisper.dll")
	model := filepath.Join(dir, "ggml-medium.bin")

	l := NewLoader(dll, model)
	assert.False(t, l.Available())

	require.NoError(t, os.WriteFile(dll, []byte("x"), 0o644))
	assert.False(t, l.Available())

	require.NoError(t, os.WriteFile(model, []byte("x"), 0o644))
	assert.True(t, l.Available())
}

func TestWithModelMissingLibrary(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(filepath.Join(dir, "missing.dll"), filepath.Join(dir, "missing.bin"))

	err := l.WithModel(func(*Model) error { return nil })
	require.Error(t, err)
	assert.Equal(t, errors.KindLoad, errors.KindOf(err))

	// a failed load leaves nothing cached
	assert.Nil(t, l.state)
}

func TestPathFingerprintTracksChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.bin")
	require.NoError(t, os.WriteFile(path, []byte("aaaa"), 0o644))

	fp1 := pathFingerprint(path)
	assert.Equal(t, fp1, pathFingerprint(path))

	require.NoError(t, os.WriteFile(path, []byte("bbbbbbbb"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))
	assert.NotEqual(t, fp1, pathFingerprint(path))

	assert.NotEqual(t, fp1, pathFingerprint(filepath.Join(dir, "other.bin")))
}

func TestAvailableDoesNotBlockDuringInference(t *testing.T) {
	dir := t.TempDir()
	dll := filepath.Join(dir, "Whisper.dll")
	model := filepath.Join(dir, "ggml-medium.bin")
	require.NoError(t, os.WriteFile(dll, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(model, []byte("x"), 0o644))

	l := NewLoader(dll, model)

	// a long foreign call holds the model lock for its whole duration
	l.mu.Lock()
	defer l.mu.Unlock()

	done := make(chan bool, 1)
	go func() { done <- l.Available() }()

	select {
	case avail := <-done:
		assert.True(t, avail)
	case <-time.After(time.Second):
		t.Fatal("availability query blocked behind the model lock")
	}
}

func TestUpdatePathsDropsNothingWhenUnloaded(t *testing.T) {
	l := NewLoader("", "")
	l.UpdatePaths("a.dll", "b.bin")
	assert.Equal(t, "a.dll", l.dllPath)
	assert.Equal(t, "b.bin", l.modelPath)
	assert.Nil(t, l.state)
}

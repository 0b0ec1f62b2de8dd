package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

func TestNewPromptStore_CustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
	_, statErr := os.Stat(filepath.Join(dir, "system.txt"))
	assert.True(t, os.IsNotExist(statErr), "constructor must not write files")
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptSystem)
	require.NoError(t, err)

	for name := range driven.DefaultPrompts() {
		assert.FileExists(t, filepath.Join(dir, name+".txt"))
	}
	assert.FileExists(t, filepath.Join(dir, "README.md"))
}

func TestPromptStore_Load_ReturnsDefaultContent(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptPlannerQueries)

	require.NoError(t, err)
	assert.Contains(t, prompt, "%[1]s")
	assert.Contains(t, prompt, "%[2]s")
}

func TestPromptStore_Load_CustomContentWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clarify.txt"), []byte("  Ask about %[1]s  \n"), 0o600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptClarify)
	require.NoError(t, err)
	assert.Equal(t, "Ask about %[1]s", prompt)

	content, err := os.ReadFile(filepath.Join(dir, "clarify.txt"))
	require.NoError(t, err)
	assert.Equal(t, "  Ask about %[1]s  \n", string(content), "existing files are never overwritten")
}

func TestPromptStore_Load_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, err = store.Load(driven.PromptSystem)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "quick_answer.txt"), []byte("   "), 0o600))

	prompt, err := store.Load(driven.PromptQuickAnswer)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompts()[driven.PromptQuickAnswer], prompt)
}

func TestPromptStore_Load_Unknown(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("does_not_exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestPromptStore_Reload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.txt"), []byte("terse persona"), 0o600))

	cached, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, "terse persona", fresh)
}

func TestPromptStore_InitFailureUsesDefaults(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompts()[driven.PromptSystem], prompt)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, loadErr := store.Load(driven.PromptHybridAnswer)
			assert.NoError(t, loadErr)
		}()
	}
	wg.Wait()
}

func TestPromptStore_Watch(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, err = store.Load(driven.PromptSystem)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 8)
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx, func(name string) { changed <- name }) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.txt"), []byte("edited"), 0o600))

	select {
	case name := <-changed:
		assert.Equal(t, driven.PromptSystem, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	prompt, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, "edited", prompt)

	cancel()
	assert.NoError(t, <-done)
}

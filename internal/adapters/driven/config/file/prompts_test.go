package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

func TestPromptStore_ImplementsInterface(t *testing.T) {
	var _ driven.PromptStore = (*PromptStore)(nil)
}

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".reqscan", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAnalysisSystem)
	require.NoError(t, err)

	for _, f := range []string{"analysis_system.txt", "analysis_user.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_Load_ReturnsDefaultContent(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	system, err := store.Load(driven.PromptAnalysisSystem)
	require.NoError(t, err)
	assert.Contains(t, system, "## Functional Requirements")
	assert.Contains(t, system, "## Non-Functional Requirements")
	assert.Contains(t, system, "## Open Questions / Risks")
	assert.Contains(t, system, "%s")

	user, err := store.Load(driven.PromptAnalysisUser)
	require.NoError(t, err)
	assert.Equal(t, "Input Text:\n\n%s", user)
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	customContent := "Document:\n%s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analysis_user.txt"), []byte(customContent), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnalysisUser)

	require.NoError(t, err)
	assert.Equal(t, customContent, prompt)
}

func TestPromptStore_Load_BlankFileFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analysis_user.txt"), []byte("  \n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnalysisUser)

	require.NoError(t, err)
	assert.Equal(t, "Input Text:\n\n%s", prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, _ = store.Load(driven.PromptAnalysisSystem) // Trigger init
	require.NoError(t, os.Remove(filepath.Join(dir, "analysis_system.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptAnalysisSystem)

	require.NoError(t, err)
	assert.Contains(t, prompt, "requirements engineering assistant")
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Reload_ClearsCache(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptAnalysisUser)
	require.NoError(t, err)

	modified := "modified content: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analysis_user.txt"), []byte(modified), 0600))

	cached, err := store.Load(driven.PromptAnalysisUser)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()

	prompt, err := store.Load(driven.PromptAnalysisUser)
	require.NoError(t, err)
	assert.Equal(t, modified, prompt)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make(chan string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.Load(driven.PromptAnalysisSystem)
			if err == nil {
				results <- p
			}
		}()
	}
	wg.Wait()
	close(results)

	var first string
	count := 0
	for p := range results {
		if first == "" {
			first = p
		}
		assert.Equal(t, first, p)
		count++
	}
	assert.Equal(t, goroutines, count)
}

func TestPromptStore_InitFailure_UsesDefaults(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts")
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnalysisUser)

	require.NoError(t, err)
	assert.Equal(t, "Input Text:\n\n%s", prompt)
}

func TestDefaultPrompt(t *testing.T) {
	for _, name := range driven.PromptNames() {
		p, ok := DefaultPrompt(name)
		assert.True(t, ok)
		assert.NotEmpty(t, p)
	}
	_, ok := DefaultPrompt("missing")
	assert.False(t, ok)
}

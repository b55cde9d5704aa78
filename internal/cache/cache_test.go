package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/domain/errors"
	"github.com/maticastro/notaprensa/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *IdempotentCache {
	t.Helper()
	c, err := NewIdempotentCache(config.CacheConfig{Enabled: true, Root: t.TempDir()})
	require.NoError(t, err)
	return c
}

func mustKey(t *testing.T, repo string, prNumber int, headSHA string) string {
	t.Helper()
	key, err := KeyFor(repo, prNumber, headSHA)
	require.NoError(t, err)
	return key
}

func sampleDraft() models.NotesDraft {
	conf := 0.9
	overall := 0.85
	return models.NotesDraft{
		SchemaVersion:    models.SchemaVersion,
		VersionIncrement: "minor",
		Highlights: []models.NoteItem{
			{Type: "feature", Title: "Soporte para webhooks", Confidence: &conf},
		},
		ConfidenceOverall: &overall,
		Repo:              "owner/repo",
		PRNumber:          42,
		HeadSHA:           "abc123def456",
	}
}

func TestKeyFor(t *testing.T) {
	t.Run("should build the canonical key", func(t *testing.T) {
		key, err := KeyFor("owner/repo", 42, "abc123def456")

		require.NoError(t, err)
		assert.Equal(t, "owner/repo#42#abc123def456", key)
	})

	t.Run("should fail on an empty repo", func(t *testing.T) {
		_, err := KeyFor("", 42, "abc123def456")

		require.Error(t, err)
		assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
	})

	t.Run("should fail on a non-positive pr number", func(t *testing.T) {
		_, err := KeyFor("owner/repo", 0, "abc123def456")

		require.Error(t, err)
		assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
	})

	t.Run("should fail on an empty head sha", func(t *testing.T) {
		_, err := KeyFor("owner/repo", 42, "")

		require.Error(t, err)
		assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
	})
}

func TestIdempotentCache(t *testing.T) {
	t.Run("should roundtrip draft and markdown", func(t *testing.T) {
		c := newTestCache(t)
		key := mustKey(t, "owner/repo", 42, "abc123def456")

		require.NoError(t, c.Put(key, Entry{Draft: sampleDraft(), Markdown: "## Notas\n- algo"}))

		entry, ok := c.Get(key)
		require.True(t, ok)
		assert.Equal(t, "## Notas\n- algo", entry.Markdown)
		assert.Equal(t, "minor", entry.Draft.VersionIncrement)
		assert.Len(t, entry.Draft.Highlights, 1)
	})

	t.Run("should miss on an unknown key", func(t *testing.T) {
		c := newTestCache(t)

		_, ok := c.Get(mustKey(t, "owner/repo", 42, "nunca-visto"))
		assert.False(t, ok)
	})

	t.Run("should treat an incomplete pair as a miss and heal it", func(t *testing.T) {
		c := newTestCache(t)
		key := mustKey(t, "owner/repo", 42, "abc123def456")
		require.NoError(t, c.Put(key, Entry{Draft: sampleDraft(), Markdown: "md"}))

		jsonPath, mdPath := c.paths(key)
		require.NoError(t, os.Remove(mdPath))

		_, ok := c.Get(key)
		assert.False(t, ok)

		_, err := os.Stat(jsonPath)
		assert.True(t, os.IsNotExist(err), "el JSON huérfano se limpia en el miss")
	})

	t.Run("should treat corrupt json as a miss", func(t *testing.T) {
		c := newTestCache(t)
		key := mustKey(t, "owner/repo", 42, "abc123def456")
		require.NoError(t, c.Put(key, Entry{Draft: sampleDraft(), Markdown: "md"}))

		jsonPath, _ := c.paths(key)
		require.NoError(t, os.WriteFile(jsonPath, []byte("{roto"), 0644))

		_, ok := c.Get(key)
		assert.False(t, ok)
	})

	t.Run("should miss after invalidate", func(t *testing.T) {
		c := newTestCache(t)
		key := mustKey(t, "owner/repo", 42, "abc123def456")
		require.NoError(t, c.Put(key, Entry{Draft: sampleDraft(), Markdown: "md"}))

		c.Invalidate(key)

		_, ok := c.Get(key)
		assert.False(t, ok)
	})

	t.Run("should be a no-op when disabled", func(t *testing.T) {
		c, err := NewIdempotentCache(config.CacheConfig{Enabled: false, Root: t.TempDir()})
		require.NoError(t, err)
		key := mustKey(t, "owner/repo", 42, "abc123def456")

		require.NoError(t, c.Put(key, Entry{Draft: sampleDraft(), Markdown: "md"}))
		_, ok := c.Get(key)
		assert.False(t, ok)
	})

	t.Run("should isolate entries by head sha", func(t *testing.T) {
		c := newTestCache(t)
		require.NoError(t, c.Put(mustKey(t, "owner/repo", 42, "sha-uno"), Entry{Draft: sampleDraft(), Markdown: "uno"}))

		_, ok := c.Get(mustKey(t, "owner/repo", 42, "sha-dos"))
		assert.False(t, ok)
	})
}

func TestWriteFileAtomic(t *testing.T) {
	t.Run("should not leave a partial file when the rename fails", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "entry.json")
		// Un directorio en el destino hace fallar el rename después de que
		// el temp ya se escribió y sincronizó.
		require.NoError(t, os.Mkdir(dest, 0755))

		err := writeFileAtomic(dest, []byte("{}"))

		require.Error(t, err)

		info, statErr := os.Stat(dest)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir(), "el destino queda intacto, jamás a medio escribir")

		leftovers, globErr := filepath.Glob(filepath.Join(dir, ".tmp_*"))
		require.NoError(t, globErr)
		assert.Empty(t, leftovers, "el temp se limpia cuando el rename falla")
	})

	t.Run("should not leave temp files visible as cache halves", func(t *testing.T) {
		c := newTestCache(t)
		key := mustKey(t, "owner/repo", 42, "abc123def456")
		require.NoError(t, c.Put(key, Entry{Draft: sampleDraft(), Markdown: "md"}))

		leftovers, err := filepath.Glob(filepath.Join(c.root, ".tmp_*"))
		require.NoError(t, err)
		assert.Empty(t, leftovers)

		// Un temp huérfano de un Put interrumpido no cuenta como entrada.
		orphan := filepath.Join(c.root, ".tmp_abandonado")
		require.NoError(t, os.WriteFile(orphan, []byte("basura"), 0644))

		entry, ok := c.Get(key)
		require.True(t, ok)
		assert.Equal(t, "md", entry.Markdown)

		_, ok = c.Get(mustKey(t, "owner/repo", 43, "otra"))
		assert.False(t, ok)
	})
}

func TestCommentIDStore(t *testing.T) {
	t.Run("should roundtrip a comment id", func(t *testing.T) {
		s, err := NewCommentIDStore(config.CacheConfig{CommentIDRoot: t.TempDir()})
		require.NoError(t, err)

		require.NoError(t, s.Save("owner/repo", 42, 987654))
		assert.Equal(t, int64(987654), s.Load("owner/repo", 42))
	})

	t.Run("should return zero for an unknown pr", func(t *testing.T) {
		s, err := NewCommentIDStore(config.CacheConfig{CommentIDRoot: t.TempDir()})
		require.NoError(t, err)

		assert.Equal(t, int64(0), s.Load("owner/repo", 7))
	})

	t.Run("should forget a deleted id", func(t *testing.T) {
		s, err := NewCommentIDStore(config.CacheConfig{CommentIDRoot: t.TempDir()})
		require.NoError(t, err)

		require.NoError(t, s.Save("owner/repo", 42, 1))
		s.Delete("owner/repo", 42)
		assert.Equal(t, int64(0), s.Load("owner/repo", 42))
	})
}

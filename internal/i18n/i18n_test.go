package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranslations(t *testing.T) {
	t.Run("should resolve embedded default messages", func(t *testing.T) {
		trans, err := NewTranslations("en", t.TempDir())
		require.NoError(t, err)

		msg := trans.GetMessage("current_config", 0, nil)
		assert.Equal(t, "Current configuration", msg)
	})

	t.Run("should expand template data", func(t *testing.T) {
		trans, err := NewTranslations("en", t.TempDir())
		require.NoError(t, err)

		msg := trans.GetMessage("generating_notes", 0, map[string]interface{}{"PR": 42})
		assert.Equal(t, "Generating release notes for PR #42...", msg)
	})

	t.Run("should report missing message ids", func(t *testing.T) {
		trans, err := NewTranslations("en", t.TempDir())
		require.NoError(t, err)

		msg := trans.GetMessage("no_existe", 0, nil)
		assert.Equal(t, "Translation missing: no_existe", msg)
	})

	t.Run("should load locale files from the locales dir", func(t *testing.T) {
		dir := t.TempDir()
		content := "[current_config]\nother = \"Configuración actual\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "active.es.toml"), []byte(content), 0644))

		trans, err := NewTranslations("en", dir)
		require.NoError(t, err)
		require.NoError(t, trans.SetLanguage("es"))

		assert.Equal(t, "Configuración actual", trans.GetMessage("current_config", 0, nil))
	})

	t.Run("should reject unsupported languages", func(t *testing.T) {
		trans, err := NewTranslations("en", t.TempDir())
		require.NoError(t, err)

		assert.Error(t, trans.SetLanguage("fr"))
	})
}

package config

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/i18n"
)

func setupConfigTest(t *testing.T) (*config.Config, *i18n.Translations) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	translations, err := i18n.NewTranslations("en", t.TempDir())
	require.NoError(t, err)

	return cfg, translations
}

func TestConfigCommand(t *testing.T) {
	t.Run("should show the current configuration", func(t *testing.T) {
		cfg, translations := setupConfigTest(t)

		cmd := NewConfigCommandFactory().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"config", "show"})

		assert.NoError(t, err)
	})

	t.Run("should persist a supported language", func(t *testing.T) {
		cfg, translations := setupConfigTest(t)

		cmd := NewConfigCommandFactory().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"config", "set-lang", "--lang", "es"})

		assert.NoError(t, err)
		assert.Equal(t, "es", cfg.Language)

		saved, err := config.LoadConfig(cfg.PathFile)
		require.NoError(t, err)
		assert.Equal(t, "es", saved.Language)
	})

	t.Run("should reject an unsupported language", func(t *testing.T) {
		cfg, translations := setupConfigTest(t)

		cmd := NewConfigCommandFactory().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"config", "set-lang", "--lang", "fr"})

		assert.Error(t, err)
		assert.Equal(t, "en", cfg.Language)
	})

	t.Run("should persist the github token", func(t *testing.T) {
		cfg, translations := setupConfigTest(t)

		cmd := NewConfigCommandFactory().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"config", "set-github-token", "--token", "ghp_abcdef123456"})

		assert.NoError(t, err)
		assert.Equal(t, "ghp_abcdef123456", cfg.GitHub.Token)
	})

	t.Run("should reject a github token that is too short", func(t *testing.T) {
		cfg, translations := setupConfigTest(t)

		cmd := NewConfigCommandFactory().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"config", "set-github-token", "--token", "corto"})

		assert.Error(t, err)
		assert.Empty(t, cfg.GitHub.Token)
	})

	t.Run("should persist the gemini key", func(t *testing.T) {
		cfg, translations := setupConfigTest(t)

		cmd := NewConfigCommandFactory().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"config", "set-gemini-key", "--key", "AIzaSyExample123"})

		assert.NoError(t, err)
		assert.Equal(t, "AIzaSyExample123", cfg.Gemini.APIKey)
	})
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", maskSecret(""))
	assert.Equal(t, "****", maskSecret("abcd"))
	assert.Equal(t, "****3456", maskSecret("ghp_abcdef123456"))
}

func TestMain(m *testing.M) {
	// Evita que GITHUB_TOKEN/GEMINI_API_KEY del entorno contaminen los
	// asserts sobre la configuración recargada.
	_ = os.Unsetenv("GITHUB_TOKEN")
	_ = os.Unsetenv("GEMINI_API_KEY")
	os.Exit(m.Run())
}

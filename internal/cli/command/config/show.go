package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/i18n"
	"github.com/maticastro/notaprensa/internal/ui"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config_show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			ui.PrintSectionBanner(t.GetMessage("current_config", 0, nil))

			ui.PrintKeyValue("Language", cfg.Language)
			ui.PrintKeyValue("Config file", cfg.PathFile)
			ui.PrintKeyValue("GitHub token", maskSecret(cfg.GitHub.Token))
			ui.PrintKeyValue("Gemini API key", maskSecret(cfg.Gemini.APIKey))
			ui.PrintKeyValue("Gemini model", cfg.Gemini.Model)
			ui.PrintKeyValue("Cache enabled", fmt.Sprintf("%t", cfg.Cache.Enabled))
			ui.PrintKeyValue("Cache root", cfg.Cache.Root)
			ui.PrintKeyValue("Metrics enabled", fmt.Sprintf("%t", cfg.Metrics.Enabled))
			ui.PrintKeyValue("Token budget", fmt.Sprintf("%d", cfg.Diff.HardTokenBudget))
			ui.PrintKeyValue("Rate limit", fmt.Sprintf("%d attempts / %ds", cfg.RateLimit.MaxAttempts, cfg.RateLimit.WindowSeconds))
			ui.PrintKeyValue("Allowed roles", strings.Join(cfg.Publish.AllowedRoles, ", "))
			ui.PrintKeyValue("Kill switch", cfg.KillSwitchPath)

			return nil
		},
	}
}

// maskSecret deja visibles solo los últimos 4 caracteres.
func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

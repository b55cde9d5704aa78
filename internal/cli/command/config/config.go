// Package config define los subcomandos que muestran y editan la
// configuración persistida.
package config

import (
	"github.com/urfave/cli/v3"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/i18n"
)

// ConfigCommandFactory agrupa los subcomandos de configuración.
type ConfigCommandFactory struct{}

func NewConfigCommandFactory() *ConfigCommandFactory {
	return &ConfigCommandFactory{}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   t.GetMessage("config_command_usage", 0, nil),
		Commands: []*cli.Command{
			c.newShowCommand(t, cfg),
			c.newSetLangCommand(t, cfg),
			c.newSetGitHubTokenCommand(t, cfg),
			c.newSetGeminiKeyCommand(t, cfg),
		},
	}
}

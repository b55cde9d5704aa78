package config

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/i18n"
)

func (c *ConfigCommandFactory) newSetGitHubTokenCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "set-github-token",
		Usage: t.GetMessage("config_set_github_token_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "token",
				Aliases:  []string{"t"},
				Usage:    t.GetMessage("flag_github_token_usage", 0, nil),
				Required: true,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			token := command.String("token")
			if len(token) < 10 {
				msg := t.GetMessage("invalid_github_token", 0, nil)
				return fmt.Errorf("%s", msg)
			}

			cfg.GitHub.Token = token
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}

			fmt.Printf("%s\n", t.GetMessage("config_saved", 0, map[string]interface{}{"Path": cfg.PathFile}))
			return nil
		},
	}
}

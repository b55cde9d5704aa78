package config

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/i18n"
)

func (c *ConfigCommandFactory) newSetGeminiKeyCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "set-gemini-key",
		Usage: t.GetMessage("config_set_gemini_key_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "key",
				Aliases:  []string{"k"},
				Usage:    t.GetMessage("flag_gemini_key_usage", 0, nil),
				Required: true,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			key := command.String("key")
			if len(key) < 10 {
				msg := t.GetMessage("invalid_gemini_key", 0, nil)
				return fmt.Errorf("%s", msg)
			}

			cfg.Gemini.APIKey = key
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}

			fmt.Printf("%s\n", t.GetMessage("config_saved", 0, map[string]interface{}{"Path": cfg.PathFile}))
			return nil
		},
	}
}

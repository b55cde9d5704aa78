// Package release define el comando que publica las notas cacheadas en el
// body de un GitHub Release.
package release

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	cfgPkg "github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/i18n"
	"github.com/maticastro/notaprensa/internal/services"
	"github.com/maticastro/notaprensa/internal/ui"
)

// Service es la porción del servicio de notas que usa este comando.
type Service interface {
	PublishRelease(ctx context.Context, owner, repo, tag, name, commitish, key string, dryRun bool) (*services.ReleaseResult, error)
}

type ServiceBuilder func(ctx context.Context) (Service, error)

type PublishCommand struct {
	newService ServiceBuilder
}

func NewPublishCommand(newService ServiceBuilder) *PublishCommand {
	return &PublishCommand{newService: newService}
}

func (c *PublishCommand) CreateCommand(t *i18n.Translations, _ *cfgPkg.Config) *cli.Command {
	return &cli.Command{
		Name:  "publish-release",
		Usage: t.GetMessage("publish_command_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "owner",
				Usage:    t.GetMessage("flag_repo_usage", 0, nil),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "repo",
				Usage:    t.GetMessage("flag_repo_usage", 0, nil),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "tag",
				Usage:    t.GetMessage("flag_tag_usage", 0, nil),
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Release title, defaults to the tag",
			},
			&cli.StringFlag{
				Name:  "commitish",
				Usage: "Target commitish when the tag does not exist yet",
			},
			&cli.StringFlag{
				Name:  "key",
				Usage: "Idempotency key of the cached draft: <owner>/<repo>#<pr>#<head_sha>",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report the action without touching the release",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			svc, err := c.newService(ctx)
			if err != nil {
				return err
			}

			tag := command.String("tag")
			var result *services.ReleaseResult
			spin := ui.NewSpinner(t.GetMessage("publish_running", 0, map[string]interface{}{"Tag": tag}))
			spin.Start()
			result, err = svc.PublishRelease(ctx,
				command.String("owner"),
				command.String("repo"),
				tag,
				command.String("name"),
				command.String("commitish"),
				command.String("key"),
				command.Bool("dry-run"),
			)
			spin.Stop()
			if err != nil {
				ui.HandlePipelineError(err)
				return err
			}

			if result.DryRun {
				ui.PrintInfo(fmt.Sprintf("Dry run: would %s release %s (%d chars)", result.Action, tag, result.BodyLen))
				return nil
			}

			msgID := "release_created"
			if result.Action == "update" {
				msgID = "release_updated"
			}
			ui.PrintSuccess(command.Writer, t.GetMessage(msgID, 0, map[string]interface{}{
				"Tag": tag,
				"URL": result.Release.HTMLURL,
			}))
			if result.BackupPath != "" {
				ui.PrintKeyValue("Backup", result.BackupPath)
			}
			return nil
		},
	}
}

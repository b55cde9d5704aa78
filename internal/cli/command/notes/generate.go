// Package notes define los comandos de generación de preview y manejo de
// comentarios de publicación.
package notes

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	cfgPkg "github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/i18n"
	"github.com/maticastro/notaprensa/internal/services"
	"github.com/maticastro/notaprensa/internal/ui"
)

// Service es lo que los comandos de este paquete necesitan del servicio de
// notas.
type Service interface {
	GeneratePreview(ctx context.Context, owner, repo string, prNumber int, opts services.GenerateOptions) (*services.GenerateResult, error)
	HandleComment(ctx context.Context, owner, repo string, prNumber int, commentID int64, dryRun bool) (*services.PublishDecision, error)
}

// ServiceBuilder construye el servicio recién dentro de la Action, cuando ya
// hay un contexto de ejecución.
type ServiceBuilder func(ctx context.Context) (Service, error)

type GenerateCommand struct {
	newService ServiceBuilder
}

func NewGenerateCommand(newService ServiceBuilder) *GenerateCommand {
	return &GenerateCommand{newService: newService}
}

func (c *GenerateCommand) CreateCommand(t *i18n.Translations, _ *cfgPkg.Config) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   t.GetMessage("notes_command_usage", 0, nil),
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
			&cli.IntFlag{
				Name:     "pr",
				Aliases:  []string{"n"},
				Usage:    t.GetMessage("flag_pr_usage", 0, nil),
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the normalized draft as JSON instead of markdown",
			},
			&cli.BoolFlag{
				Name:  "final",
				Usage: "Render with the final header instead of the preview one",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: t.GetMessage("flag_no_cache_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "cache-only",
				Usage: "Serve only from the local cache, fail on miss",
			},
			&cli.BoolFlag{
				Name:  "no-comment",
				Usage: t.GetMessage("flag_no_comment_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			svc, err := c.newService(ctx)
			if err != nil {
				return err
			}

			owner := command.String("owner")
			repo := command.String("repo")
			prNumber := int(command.Int("pr"))
			opts := services.GenerateOptions{
				NoCache:     command.Bool("no-cache"),
				CacheOnly:   command.Bool("cache-only"),
				PostComment: !command.Bool("no-comment") && !command.Bool("cache-only"),
				Final:       command.Bool("final"),
			}

			var result *services.GenerateResult
			spin := ui.NewSpinner(t.GetMessage("generating_notes", 0, map[string]interface{}{"PR": prNumber}))
			spin.Start()
			result, err = svc.GeneratePreview(ctx, owner, repo, prNumber, opts)
			spin.Stop()
			if err != nil {
				ui.HandlePipelineError(err)
				return err
			}

			if result.CacheHit {
				ui.PrintInfo(t.GetMessage("notes_from_cache", 0, map[string]interface{}{"Key": result.Key}))
			} else {
				ui.PrintSuccess(command.Writer, t.GetMessage("notes_generated", 0, nil))
			}

			if result.Comment != nil {
				if result.Comment.Err != nil {
					ui.PrintWarning(t.GetMessage("comment_failed", 0, map[string]interface{}{"Error": result.Comment.Err.Error()}))
				} else {
					ui.PrintInfo(t.GetMessage("comment_posted", 0, map[string]interface{}{"URL": result.Comment.Result.URL}))
				}
			}

			if command.Bool("json") {
				fmt.Fprintln(command.Writer, result.JSONText)
			} else {
				fmt.Fprintln(command.Writer, result.Markdown)
			}
			return nil
		},
	}
}

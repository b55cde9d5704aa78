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

type HandleCommentCommand struct {
	newService ServiceBuilder
}

func NewHandleCommentCommand(newService ServiceBuilder) *HandleCommentCommand {
	return &HandleCommentCommand{newService: newService}
}

func (c *HandleCommentCommand) CreateCommand(t *i18n.Translations, _ *cfgPkg.Config) *cli.Command {
	return &cli.Command{
		Name:  "handle-comment",
		Usage: t.GetMessage("handle_comment_command_usage", 0, nil),
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
				Usage:    t.GetMessage("flag_pr_usage", 0, nil),
				Required: true,
			},
			&cli.IntFlag{
				Name:     "comment-id",
				Usage:    t.GetMessage("flag_comment_id_usage", 0, nil),
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Parse and authorize only, do not publish",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			svc, err := c.newService(ctx)
			if err != nil {
				return err
			}

			decision, err := svc.HandleComment(ctx,
				command.String("owner"),
				command.String("repo"),
				int(command.Int("pr")),
				command.Int("comment-id"),
				command.Bool("dry-run"),
			)
			if err != nil {
				ui.HandlePipelineError(err)
				return err
			}

			switch decision.Action {
			case services.DecisionNone:
				ui.PrintInfo(t.GetMessage("no_command_in_comment", 0, nil))
			case services.DecisionDenied:
				ui.PrintWarning(t.GetMessage("publish_not_authorized", 0, map[string]interface{}{"Reason": decision.Reason}))
			case services.DecisionRateLimited:
				ui.PrintWarning(t.GetMessage("publish_rate_limited", 0, map[string]interface{}{"Seconds": decision.ResetInSeconds}))
			case services.DecisionDryRun:
				ui.PrintInfo("Dry run: command parsed and authorized")
			case services.DecisionPublished:
				ui.PrintSuccess(command.Writer, fmt.Sprintf("Final notes published as comment %d", decision.CommentID))
				if decision.URL != "" {
					ui.PrintKeyValue("URL", decision.URL)
				}
			}
			return nil
		},
	}
}

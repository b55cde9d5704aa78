package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	configcmd "github.com/maticastro/notaprensa/internal/cli/command/config"
	"github.com/maticastro/notaprensa/internal/cli/command/notes"
	"github.com/maticastro/notaprensa/internal/cli/command/release"
	"github.com/maticastro/notaprensa/internal/cli/registry"
	cfg "github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/i18n"
	"github.com/maticastro/notaprensa/internal/infrastructure/factory"
	"github.com/maticastro/notaprensa/internal/logger"
)

const version = "v0.1.0"

func main() {
	logger.Initialize(hasFlag("--debug"), hasFlag("--verbose"))

	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Error iniciando la cli: %v", err)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}

func hasFlag(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func initializeApp() (*cli.Command, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("no se pudo obtener el directorio del usuario: %w", err)
	}

	cfgApp, err := cfg.LoadConfig(homeDir)
	if err != nil {
		return nil, err
	}

	translations, err := i18n.NewTranslations("en", "")
	if err != nil {
		return nil, fmt.Errorf("error al cargar las traducciones: %w", err)
	}
	if cfgApp.Language != "en" {
		if err := translations.SetLanguage(cfgApp.Language); err != nil {
			log.Printf("Warning: %v, usando inglés", err)
		}
	}

	serviceFactory := factory.NewNotesServiceFactory(cfgApp, translations)

	notesBuilder := notes.ServiceBuilder(func(ctx context.Context) (notes.Service, error) {
		return serviceFactory.CreateNotesService(ctx)
	})
	releaseBuilder := release.ServiceBuilder(func(ctx context.Context) (release.Service, error) {
		return serviceFactory.CreateNotesService(ctx)
	})

	registerCommand := registry.NewRegistry(cfgApp, translations)

	if err := registerCommand.Register("generate", notes.NewGenerateCommand(notesBuilder)); err != nil {
		return nil, fmt.Errorf("error al registrar el comando 'generate': %w", err)
	}
	if err := registerCommand.Register("handle-comment", notes.NewHandleCommentCommand(notesBuilder)); err != nil {
		return nil, fmt.Errorf("error al registrar el comando 'handle-comment': %w", err)
	}
	if err := registerCommand.Register("publish-release", release.NewPublishCommand(releaseBuilder)); err != nil {
		return nil, fmt.Errorf("error al registrar el comando 'publish-release': %w", err)
	}
	if err := registerCommand.Register("config", configcmd.NewConfigCommandFactory()); err != nil {
		return nil, fmt.Errorf("error al registrar el comando 'config': %w", err)
	}

	commands := registerCommand.CreateCommands()

	helpCommand := &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}
	commands = append(commands, helpCommand)

	return &cli.Command{
		Name:        "notaprensa",
		Usage:       translations.GetMessage("app_usage", 0, nil),
		Version:     version,
		Description: translations.GetMessage("app_description", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log informational messages to stderr",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log debug messages with source locations",
			},
		},
		Commands:              commands,
		EnableShellCompletion: true,
	}, nil
}

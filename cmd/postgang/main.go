package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/aasan/postgang/internal/calendar"
	"github.com/aasan/postgang/internal/config"
	"github.com/aasan/postgang/internal/domain"
	"github.com/aasan/postgang/internal/gateway"
	"github.com/aasan/postgang/internal/logging"
	"github.com/aasan/postgang/internal/output"
	"github.com/aasan/postgang/internal/server"
	"github.com/aasan/postgang/internal/usecase"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		attrs := []any{"error", err}
		if kind := domain.KindOf(err); kind != 0 {
			attrs = append(attrs, "kind", kind.String())
		}
		slog.Error("postgang failed", attrs...)
		stop()
		os.Exit(1)
	}
}

// newApp builds the command tree. stdout receives the calendar when no --output is given.
func newApp(stdout, stderr io.Writer) *cli.App {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	credentialFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:    "api-uid",
				Usage:   "Bring API UID (the Mybring login)",
				EnvVars: []string{config.EnvAPIUID},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Bring API key",
				EnvVars: []string{config.EnvAPIKey},
			},
			&cli.StringFlag{
				Name:    "api-endpoint",
				Usage:   "Bring API base URL",
				Value:   gateway.DefaultBringEndpoint,
				EnvVars: []string{"POSTGANG_API_ENDPOINT"},
				Hidden:  true,
			},
		}
	}

	return &cli.App{
		Name:            "postgang",
		Usage:           "Create an iCalendar file for Norwegian mailbox delivery dates",
		Version:         version,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "code",
				Usage: "postal code (4 digits)",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "output file path (default: standard output)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "DEBUG, INFO, WARN or ERROR",
				Value:   "INFO",
				EnvVars: []string{config.EnvLogLevel},
			},
		},
		Before: func(c *cli.Context) error {
			logging.Setup(stderr, c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "api",
				Usage: "Get delivery dates from Bring API",
				Flags: credentialFlags(),
				Action: func(c *cli.Context) error {
					creds, err := credentials(c)
					if err != nil {
						return err
					}
					return generate(c, gateway.NewBringClientWithEndpoint(creds, c.String("api-endpoint")))
				},
			},
			{
				Name:      "file",
				Usage:     "Get delivery dates from JSON file",
				ArgsUsage: "<INPUT_PATH|->",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("file: exactly one input path is required")
					}
					return generate(c, gateway.NewFileSource(c.Args().First()))
				},
			},
			{
				Name:  "serve",
				Usage: "Serve live calendar feeds over HTTP",
				Flags: append(credentialFlags(),
					&cli.StringFlag{
						Name:    "config",
						Usage:   "YAML config file",
						EnvVars: []string{"POSTGANG_CONFIG"},
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "HTTP listen address (overrides the config file)",
					},
				),
				Action: serve,
			},
		},
	}
}

// credentials resolves flags (env fallback is handled by the flag definitions)
func credentials(c *cli.Context) (domain.Credentials, error) {
	creds := domain.Credentials{
		APIUID: c.String("api-uid"),
		APIKey: domain.APIKey(c.String("api-key")),
	}
	if err := creds.Validate(); err != nil {
		return domain.Credentials{}, fmt.Errorf("%w (use --api-uid/--api-key or %s/%s)", err, config.EnvAPIUID, config.EnvAPIKey)
	}
	return creds, nil
}

// generate fetches, renders and writes one calendar document
func generate(c *cli.Context, source usecase.DateSource) error {
	raw := c.String("code")
	if raw == "" {
		// usage goes to stderr; stdout may be the calendar destination
		cli.HelpPrinter(c.App.ErrWriter, cli.AppHelpTemplate, c.App)
		return errors.New("--code is required")
	}
	code, err := domain.ParsePostalCode(raw)
	if err != nil {
		return err
	}

	// create the output before any network request
	w, err := output.Open(c.String("output"), c.App.Writer)
	if err != nil {
		return err
	}

	slog.Debug("generating calendar", "code", code, "output", c.String("output"))
	uc := usecase.NewGenerateCalendarUseCase(source, calendar.NewBuilder(), slog.Default())
	doc, err := uc.Execute(c.Context, code)
	if err != nil {
		w.Close()
		return err
	}

	return output.WriteDocument(w, doc)
}

func serve(c *cli.Context) error {
	cfg, err := config.LoadServe(c.String("config"))
	if err != nil {
		return err
	}
	if listen := c.String("listen"); listen != "" {
		cfg.Listen = listen
	}

	creds, err := credentials(c)
	if err != nil {
		return err
	}

	client := gateway.NewBringClientWithEndpoint(creds, c.String("api-endpoint"))
	uc := usecase.NewGenerateCalendarUseCase(client, calendar.NewBuilder(), slog.Default())
	return server.New(cfg, uc, slog.Default()).Run(c.Context)
}

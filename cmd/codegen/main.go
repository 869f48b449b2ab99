package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fortio.org/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"codegen_server/config"
	"codegen_server/internal/ai"
	"codegen_server/internal/catalog"
	"codegen_server/internal/codeblocks"
	"codegen_server/internal/fallback"
)

func main() {
	app := &cli.Command{
		Name:  "codegen",
		Usage: "Generate multi-file projects from a model and export them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, verbose, info, warning or error"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, log.SetLogLevelStr(cmd.String("log-level"))
		},
		Commands: []*cli.Command{
			generateCmd(),
			extractCmd(),
			catalogCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "out", Usage: "Write files under this directory"},
		&cli.StringFlag{Name: "zip", Usage: "Write files into this zip archive"},
		&cli.BoolFlag{Name: "list", Usage: "Print the file list as YAML"},
	}
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Stream a project from the configured model",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "name", Value: "project", Usage: "Project name"},
			&cli.StringFlag{Name: "description", Required: true, Usage: "What the project should do"},
			&cli.StringFlag{Name: "framework", Value: "next", Usage: "Catalog framework value or free text"},
			&cli.StringSliceFlag{Name: "feature", Usage: "Feature to include (repeatable)"},
			&cli.StringFlag{Name: "database", Usage: "Catalog database value"},
			&cli.BoolFlag{Name: "auth", Usage: "Include authentication"},
			&cli.StringFlag{Name: "deployment", Usage: "Catalog deployment target"},
			&cli.BoolFlag{Name: "with-tests", Usage: "Ask the model to add tests afterwards"},
			&cli.BoolFlag{Name: "quiet", Usage: "Do not echo fragments while streaming"},
		}, outputFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				log.Warnf("Error loading .env file: %v", err)
			}
			cfg, err := config.LoadConfig(viper.New(), ".")
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			model, err := ai.NewModel(ctx, cfg)
			if err != nil {
				return err
			}
			cat, err := catalog.Default()
			if err != nil {
				return err
			}

			var echo func(string)
			if !cmd.Bool("quiet") {
				echo = func(fragment string) { fmt.Fprint(os.Stderr, fragment) }
			}
			res, err := ai.NewGenerator(model, cat).GenerateProject(ctx, ai.ProjectRequest{
				ProjectName:    cmd.String("name"),
				Description:    cmd.String("description"),
				Framework:      cmd.String("framework"),
				Features:       cmd.StringSlice("feature"),
				Database:       cmd.String("database"),
				Authentication: cmd.Bool("auth"),
				Deployment:     cmd.String("deployment"),
				WithTests:      cmd.Bool("with-tests"),
			}, echo)
			if echo != nil {
				fmt.Fprintln(os.Stderr)
			}
			if err != nil {
				return err
			}
			if res.Synthesized {
				log.Warnf("Model output had no path-tagged blocks; wrapped it into %d files", len(res.Files))
			}
			return emit(ctx, cmd, os.Stdout, res.Files)
		},
	}
}

func extractCmd() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract files from saved model output",
		ArgsUsage: "<raw-file|->",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "name", Value: "project", Usage: "Project name used by the fallback files"},
		}, outputFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			src := cmd.Args().First()
			if src == "" {
				return fmt.Errorf("raw-file argument is required (use - for stdin)")
			}
			raw, err := readSource(src)
			if err != nil {
				return err
			}
			files := codeblocks.Extract(raw)
			if len(files) == 0 {
				log.Infof("No path-tagged blocks in %s, using fallback files", src)
			}
			return emit(ctx, cmd, os.Stdout, fallback.Synthesize(raw, files, cmd.String("name")))
		},
	}
}

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Print the option catalog as YAML",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cat, err := catalog.Default()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cat)
		},
	}
}

func readSource(src string) (string, error) {
	if src == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", src, err)
	}
	return string(data), nil
}

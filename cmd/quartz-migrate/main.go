// Package main implements the quartz-migrate command.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/quartz-migrate/internal/config"
	"github.com/taigrr/quartz-migrate/internal/migrate"
)

type rootFlags struct {
	configPath   string
	source       string
	target       string
	images       string
	imagesTarget string
	dryRun       bool
	protectCode  bool
	verbose      bool
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "quartz-migrate",
		Short: "Migrate Obsidian/Quartz notes to a Firefly blog",
		Long: `quartz-migrate converts the notes of an Obsidian/Quartz vault into
Firefly blog posts. Frontmatter is remapped to the post schema,
![[image]] embeds and [[wiki links]] are rewritten to standard
Markdown, and the vault's image directory is copied alongside
the posts.`,
		Example: `quartz-migrate --dry-run
quartz-migrate --source ~/vault --target src/content/posts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			m := migrate.New(cfg,
				migrate.WithOutput(cmd.OutOrStdout()),
				migrate.WithLogger(f.logger()),
			)
			_, err = m.Run(cmd.Context())
			return err
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&f.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	flags.StringVar(&f.source, "source", "", "vault directory to migrate")
	flags.StringVar(&f.target, "target", "", "directory receiving the posts")
	flags.StringVar(&f.images, "images", "", "vault image directory")
	flags.StringVar(&f.imagesTarget, "images-target", "", "directory receiving the images")
	flags.BoolVarP(&f.dryRun, "dry-run", "n", false, "preview the migration without writing files")
	flags.BoolVar(&f.protectCode, "protect-code", false, "leave code blocks and inline code untouched")
	flags.BoolVar(&f.verbose, "verbose", false, "log debug output to stderr")

	cmd.AddCommand(newPreviewCmd(f), newServeCmd(f))

	return cmd
}

// load layers defaults, config file, environment, and explicitly set flags.
func (f *rootFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.SourceDir = f.source
	}
	if flags.Changed("target") {
		cfg.TargetDir = f.target
	}
	if flags.Changed("images") {
		cfg.ImageSourceDir = f.images
	}
	if flags.Changed("images-target") {
		cfg.ImageTargetDir = f.imagesTarget
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if flags.Changed("protect-code") {
		cfg.ProtectCode = f.protectCode
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (f *rootFlags) logger() *slog.Logger {
	if !f.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

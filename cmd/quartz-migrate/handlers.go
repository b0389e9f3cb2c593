package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/taigrr/quartz-migrate/internal/config"
	"github.com/taigrr/quartz-migrate/internal/migrate"
	"github.com/taigrr/quartz-migrate/internal/types"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve conversion tools over MCP",
		Long: `serve runs a Model Context Protocol (MCP) server on stdio that
exposes the note converter and the migration to any MCP-compatible
client, using the same configuration as a regular run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "quartz-migrate",
				Version: version,
			}, nil)

			registerTools(server, &handlers{cfg: cfg, logger: f.logger()})

			if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("error running server: %w", err)
			}
			return nil
		},
	}
}

type handlers struct {
	cfg    config.Config
	logger *slog.Logger
}

// migrator never prints: stdout carries the MCP transport.
func (h *handlers) migrator(cfg config.Config) *migrate.Migrator {
	return migrate.New(cfg, migrate.WithOutput(io.Discard), migrate.WithLogger(h.logger))
}

func (h *handlers) handleConvert(ctx context.Context, req *mcp.CallToolRequest, input ConvertInput) (*mcp.CallToolResult, ConvertOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return &mcp.CallToolResult{IsError: true}, ConvertOutput{}, fmt.Errorf("path is required")
	}

	m := h.migrator(h.cfg)

	var (
		result migrate.Result
		err    error
	)
	if input.Content != "" {
		result, err = m.ConvertContent(path, input.Content)
	} else {
		result, err = m.Convert(path)
	}
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ConvertOutput{}, err
	}

	fm := result.Target.Frontmatter
	return nil, ConvertOutput{
		Title:     fm.Title,
		Published: fm.Published.Format("2006-01-02"),
		Category:  fm.Category,
		Tags:      fm.Tags,
		Draft:     fm.Draft,
		Content:   result.Content,
	}, nil
}

func (h *handlers) handleMigrate(ctx context.Context, req *mcp.CallToolRequest, input MigrateInput) (*mcp.CallToolResult, MigrateOutput, error) {
	cfg := h.cfg
	if input.DryRun {
		cfg.DryRun = true
	}

	report, err := h.migrator(cfg).Run(ctx)
	output := MigrateOutput{
		Found:        report.Found,
		Processed:    report.Processed,
		Skipped:      report.Skipped,
		Errors:       append([]types.FileError{}, report.Errors...),
		ImagesCopied: report.ImagesCopied,
		DryRun:       report.DryRun,
	}
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, output, err
	}

	return nil, output, nil
}

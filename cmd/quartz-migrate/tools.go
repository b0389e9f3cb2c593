package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/quartz-migrate/internal/types"
)

type (
	// ConvertInput contains parameters for converting a note.
	ConvertInput struct {
		Path    string `json:"path" jsonschema:"Path to the note relative to the source directory; determines the category"`
		Content string `json:"content,omitempty" jsonschema:"Raw note text including frontmatter (default: read the note at path)"`
	}

	// ConvertOutput contains the converted post.
	ConvertOutput struct {
		Title     string   `json:"title"`
		Published string   `json:"published"`
		Category  string   `json:"category"`
		Tags      []string `json:"tags"`
		Draft     bool     `json:"draft"`
		Content   string   `json:"content"`
	}

	// MigrateInput contains parameters for running a migration.
	MigrateInput struct {
		DryRun bool `json:"dryRun,omitempty" jsonschema:"Preview only, write nothing (default: false)"`
	}

	// MigrateOutput contains the migration report.
	MigrateOutput struct {
		Found        int               `json:"found"`
		Processed    int               `json:"processed"`
		Skipped      int               `json:"skipped"`
		Errors       []types.FileError `json:"errors"`
		ImagesCopied int               `json:"imagesCopied"`
		DryRun       bool              `json:"dryRun"`
	}
)

func registerTools(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert",
		Description: "Convert a single vault note into a blog post without writing it. Returns the derived frontmatter and the full converted text.",
	}, h.handleConvert)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "migrate",
		Description: "Migrate every note in the configured vault to the blog and copy its images. Use dryRun=true to preview. Returns processed, skipped, and failed counts.",
	}, h.handleMigrate)
}

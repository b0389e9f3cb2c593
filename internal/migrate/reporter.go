package migrate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/taigrr/quartz-migrate/internal/types"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Reporter prints human-readable progress and summary lines.
// Colors are downsampled to what the writer supports.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: colorprofile.NewWriter(w, os.Environ())}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// Start announces the run and its mode.
func (r *Reporter) Start(dryRun bool) {
	r.printf("%s\n\n", headerStyle.Render("Migrating Obsidian/Quartz notes to Firefly..."))
	mode := "write"
	if dryRun {
		mode = "preview (no files will be modified)"
	}
	r.printf("Mode: %s\n\n", mode)
}

// Found reports how many notes discovery returned.
func (r *Reporter) Found(n int) {
	r.printf("Found %d markdown files\n\n", n)
}

// Skipped reports a note excluded by name.
func (r *Reporter) Skipped(file string) {
	r.printf("%s\n", skipStyle.Render("Skipped: "+filepath.Base(file)))
}

// Migrated reports a written note.
func (r *Reporter) Migrated(file, target string) {
	r.printf("%s\n", okStyle.Render(fmt.Sprintf("Migrated: %s -> %s", filepath.Base(file), filepath.Base(target))))
}

// Preview prints the derived frontmatter of a note in dry-run mode.
func (r *Reporter) Preview(file string, fm types.TargetFrontmatter) {
	r.printf("%s\n", previewStyle.Render("Preview: "+filepath.Base(file)))
	r.printf("   category: %s\n", fm.Category)
	r.printf("   tags: %s\n", strings.Join(fm.Tags, ", "))
	r.printf("   published: %s\n", fm.Published.Format("2006-01-02"))
}

// Error reports a per-note failure as it happens.
func (r *Reporter) Error(file string, err error) {
	r.printf("%s\n", errorStyle.Render(fmt.Sprintf("Error: %s - %v", filepath.Base(file), err)))
}

// ImagesFound reports the size of the image directory.
func (r *Reporter) ImagesFound(n int) {
	r.printf("\nProcessing images...\nFound %d image files\n", n)
}

// ImagesPreview reports where images would be copied.
func (r *Reporter) ImagesPreview(target string) {
	r.printf("%s\n", previewStyle.Render("Preview: images would be copied to "+target))
}

// ImagesCopied reports the number of copied images.
func (r *Reporter) ImagesCopied(n int, target string) {
	r.printf("%s\n", okStyle.Render(fmt.Sprintf("Copied %d images to %s", n, target)))
}

// Summary prints the end-of-run counts and the error list.
func (r *Reporter) Summary(report types.MigrationReport, targetDir string) {
	r.printf("\n%s\n", strings.Repeat("=", 50))
	r.printf("%s\n", headerStyle.Render("Migration summary:"))
	r.printf("   processed: %d files\n", report.Processed)
	r.printf("   skipped: %d files\n", report.Skipped)
	r.printf("   errors: %d\n", len(report.Errors))

	if len(report.Errors) > 0 {
		r.printf("\n%s\n", errorStyle.Render("Errors:"))
		for _, e := range report.Errors {
			r.printf("   %s: %s\n", filepath.Base(e.File), e.Message)
		}
	}

	if report.DryRun {
		r.printf("\n%s\n", warnStyle.Render("This was a preview run; no files were modified."))
		r.printf("Run again without --dry-run to migrate.\n")
		return
	}
	r.printf("\n%s\n", okStyle.Render("Migration complete!"))
	r.printf("Check %s to review the results.\n", targetDir)
}

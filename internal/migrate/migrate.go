// Package migrate drives a vault-to-blog migration run.
package migrate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/taigrr/quartz-migrate/internal/config"
	"github.com/taigrr/quartz-migrate/internal/filesystem"
	"github.com/taigrr/quartz-migrate/internal/frontmatter"
	"github.com/taigrr/quartz-migrate/internal/pathfilter"
	"github.com/taigrr/quartz-migrate/internal/rewrite"
	"github.com/taigrr/quartz-migrate/internal/transform"
	"github.com/taigrr/quartz-migrate/internal/types"
)

// Migrator converts vault notes into blog posts.
type Migrator struct {
	cfg         config.Config
	fileSystem  *filesystem.Service
	handler     *frontmatter.Handler
	transformer *transform.Transformer
	rewriter    *rewrite.Rewriter
	reporter    *Reporter
	logger      *slog.Logger
}

// Result is the outcome of converting a single note.
type Result struct {
	Source  types.SourceDocument
	Target  types.TargetDocument
	Content string
}

// Option configures a Migrator.
type Option func(*options)

type options struct {
	out    io.Writer
	logger *slog.Logger
	now    func() time.Time
}

// WithOutput sets where progress and summary lines are printed.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the clock used for notes without a date.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a Migrator for cfg.
func New(cfg config.Config, opts ...Option) *Migrator {
	o := options{
		out:    os.Stdout,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	fh := frontmatter.New()
	pf := pathfilter.New(&cfg.Filter)

	return &Migrator{
		cfg:        cfg,
		fileSystem: filesystem.New(cfg.SourceDir, pf, fh),
		handler:    fh,
		transformer: transform.New(cfg.SourceDir,
			transform.WithCategories(cfg.Categories),
			transform.WithClock(o.now),
		),
		rewriter: rewrite.New(rewrite.WithCodeProtection(cfg.ProtectCode)),
		reporter: NewReporter(o.out),
		logger:   o.logger,
	}
}

// TargetPath returns where a note is written. Notes whose base name is in
// the skip list have no target and are reported as skipped.
func (m *Migrator) TargetPath(sourcePath string) (string, bool) {
	name := filepath.Base(sourcePath)
	if slices.Contains(m.cfg.SkipNames, name) {
		return "", false
	}
	return filepath.Join(m.cfg.TargetDir, name), true
}

// Convert reads a note and converts it without writing anything.
func (m *Migrator) Convert(path string) (Result, error) {
	doc, err := m.fileSystem.ReadNote(path)
	if err != nil {
		return Result{}, err
	}
	return m.convert(doc)
}

// ConvertContent converts raw note text. relPath is the note's path relative
// to the source root and only determines the category.
func (m *Migrator) ConvertContent(relPath, content string) (Result, error) {
	doc, err := m.handler.Parse(filepath.Join(m.fileSystem.GetVaultPath(), relPath), content)
	if err != nil {
		return Result{}, err
	}
	return m.convert(doc)
}

func (m *Migrator) convert(doc types.SourceDocument) (Result, error) {
	fm, err := m.transformer.Frontmatter(doc.Frontmatter, doc.Path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to transform frontmatter: %w", err)
	}

	target := types.TargetDocument{
		Frontmatter: fm,
		Body:        m.rewriter.Rewrite(doc.Body),
	}

	content, err := m.handler.Stringify(target)
	if err != nil {
		return Result{}, err
	}

	return Result{Source: doc, Target: target, Content: content}, nil
}

// Run migrates every note, then copies the image directory.
// Per-note failures are recorded in the report; discovery and image copy
// failures abort the run.
func (m *Migrator) Run(ctx context.Context) (types.MigrationReport, error) {
	report := types.MigrationReport{DryRun: m.cfg.DryRun}
	m.reporter.Start(m.cfg.DryRun)

	files, err := m.fileSystem.ListNotes()
	if err != nil {
		return report, fmt.Errorf("failed to discover notes: %w", err)
	}
	report.Found = len(files)
	m.reporter.Found(len(files))
	m.logger.Debug("discovered notes", "count", len(files), "root", m.fileSystem.GetVaultPath())

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		targetPath, ok := m.TargetPath(file)
		if !ok {
			report.Skipped++
			m.reporter.Skipped(file)
			continue
		}

		result, err := m.Convert(file)
		if err == nil && !m.cfg.DryRun {
			err = filesystem.WriteFile(targetPath, result.Content)
		}
		if err != nil {
			report.Errors = append(report.Errors, types.FileError{File: file, Message: err.Error()})
			m.reporter.Error(file, err)
			m.logger.Debug("note failed", "file", file, "error", err)
			continue
		}

		if m.cfg.DryRun {
			m.reporter.Preview(file, result.Target.Frontmatter)
		} else {
			m.reporter.Migrated(file, targetPath)
			m.logger.Debug("note written", "file", file, "target", targetPath)
		}
		report.Processed++
	}

	if err := m.copyImages(&report); err != nil {
		return report, err
	}

	m.reporter.Summary(report, m.cfg.TargetDir)
	return report, nil
}

func (m *Migrator) copyImages(report *types.MigrationReport) error {
	names, err := filesystem.ListAssets(m.cfg.ImageSourceDir)
	if err != nil {
		return err
	}
	if names == nil {
		m.logger.Debug("no image directory", "dir", m.cfg.ImageSourceDir)
		return nil
	}

	report.ImagesFound = len(names)
	m.reporter.ImagesFound(len(names))

	if m.cfg.DryRun {
		m.reporter.ImagesPreview(m.cfg.ImageTargetDir)
		return nil
	}

	copied, err := filesystem.CopyAssets(m.cfg.ImageSourceDir, m.cfg.ImageTargetDir, names)
	report.ImagesCopied = copied
	if err != nil {
		return fmt.Errorf("failed to copy images: %w", err)
	}
	m.reporter.ImagesCopied(copied, m.cfg.ImageTargetDir)
	return nil
}

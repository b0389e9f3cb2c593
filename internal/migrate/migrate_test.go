package migrate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/taigrr/quartz-migrate/internal/config"
	"github.com/taigrr/quartz-migrate/internal/transform"
)

var fixedNow = time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

type testVault struct {
	cfg config.Config
	out *bytes.Buffer
	m   *Migrator
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
}

func setupTestVault(t *testing.T, dryRun bool) *testVault {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.SourceDir = filepath.Join(root, "src", "obsidian_quartz")
	cfg.TargetDir = filepath.Join(root, "src", "content", "posts")
	cfg.ImageSourceDir = filepath.Join(cfg.SourceDir, "images")
	cfg.ImageTargetDir = filepath.Join(cfg.TargetDir, "images")
	cfg.DryRun = dryRun

	writeTestFile(t, filepath.Join(cfg.SourceDir, "index.md"), "---\ntitle: Home\n---\nWelcome\n")
	writeTestFile(t, filepath.Join(cfg.SourceDir, "学习", "how-to-use-ai-for-free.md"), `---
title: How to use AI for free
description: A guide
tags:
  - ai
  - tools
date: 2024-01-15
draft: false
---

![[cover.webp]]

See [[other-note|the other note]] and [[ plain ]].
`)
	writeTestFile(t, filepath.Join(cfg.SourceDir, "about.md"), "---\ntitle: About\ndate: \"2023-06-01\"\n---\nHello\n")
	writeTestFile(t, filepath.Join(cfg.SourceDir, "随笔", "bad.md"), "---\ntitle: [oops\n---\nBroken\n")
	writeTestFile(t, filepath.Join(cfg.SourceDir, "随笔", "zz-after-bad.md"), "---\ntitle: After\ndate: 2022-02-02\n---\nStill here\n")
	writeTestFile(t, filepath.Join(cfg.ImageSourceDir, "a.png"), "\x89PNG\x00data")
	writeTestFile(t, filepath.Join(cfg.ImageSourceDir, "b.jpg"), "\xff\xd8jpeg")

	out := &bytes.Buffer{}
	return &testVault{
		cfg: cfg,
		out: out,
		m:   New(cfg, WithOutput(out), WithClock(func() time.Time { return fixedNow })),
	}
}

func TestMigrator_Run(t *testing.T) {
	v := setupTestVault(t, false)

	report, err := v.m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Found != 5 {
		t.Errorf("Found = %d, want 5", report.Found)
	}
	if report.Processed != 3 {
		t.Errorf("Processed = %d, want 3", report.Processed)
	}
	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", report.Skipped)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("Errors = %v, want 1 error", report.Errors)
	}
	if filepath.Base(report.Errors[0].File) != "bad.md" {
		t.Errorf("Errors[0].File = %q, want bad.md", report.Errors[0].File)
	}
	if report.ImagesFound != 2 || report.ImagesCopied != 2 {
		t.Errorf("Images found/copied = %d/%d, want 2/2", report.ImagesFound, report.ImagesCopied)
	}

	post, err := os.ReadFile(filepath.Join(v.cfg.TargetDir, "how-to-use-ai-for-free.md"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{
		"title: How to use AI for free\n",
		"published: 2024-01-15\n",
		"description: A guide\n",
		"image: api\n",
		"tags:\n  - ai\n  - tools\n",
		"category: 学习\n",
		"draft: false\n",
		"![](./images/cover.webp)",
		"See [the other note](/posts/other-note/) and [plain](/posts/plain/).",
	} {
		if !strings.Contains(string(post), want) {
			t.Errorf("post should contain %q, got:\n%s", want, post)
		}
	}

	about, err := os.ReadFile(filepath.Join(v.cfg.TargetDir, "about.md"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(about), "category: \"\"\n") {
		t.Errorf("root note should have empty category, got:\n%s", about)
	}

	if _, err := os.Stat(filepath.Join(v.cfg.TargetDir, "zz-after-bad.md")); err != nil {
		t.Errorf("note after a failing note should be migrated: %v", err)
	}
	if _, err := os.Stat(filepath.Join(v.cfg.TargetDir, "index.md")); !os.IsNotExist(err) {
		t.Error("index.md should be skipped")
	}
	if _, err := os.Stat(filepath.Join(v.cfg.TargetDir, "bad.md")); !os.IsNotExist(err) {
		t.Error("bad.md should not be written")
	}

	img, err := os.ReadFile(filepath.Join(v.cfg.ImageTargetDir, "a.png"))
	if err != nil || string(img) != "\x89PNG\x00data" {
		t.Errorf("a.png = %q, %v; want byte-identical copy", img, err)
	}

	output := v.out.String()
	for _, want := range []string{"Found 5 markdown files", "Skipped: index.md", "Error: bad.md", "processed: 3 files", "skipped: 1 files", "errors: 1", "Migration complete!"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got:\n%s", want, output)
		}
	}
}

func TestMigrator_RunDryRun(t *testing.T) {
	v := setupTestVault(t, true)

	report, err := v.m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Processed != 3 || report.Skipped != 1 || len(report.Errors) != 1 {
		t.Errorf("report = %+v, want 3 processed, 1 skipped, 1 error", report)
	}
	if !report.DryRun {
		t.Error("DryRun = false, want true")
	}
	if report.ImagesFound != 2 || report.ImagesCopied != 0 {
		t.Errorf("Images found/copied = %d/%d, want 2/0", report.ImagesFound, report.ImagesCopied)
	}

	if _, err := os.Stat(v.cfg.TargetDir); !os.IsNotExist(err) {
		t.Errorf("target dir should not exist after a dry run: %v", err)
	}

	output := v.out.String()
	for _, want := range []string{
		"Preview: how-to-use-ai-for-free.md",
		"category: 学习",
		"tags: ai, tools",
		"published: 2024-01-15",
		"This was a preview run",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got:\n%s", want, output)
		}
	}
}

func TestMigrator_RunMissingSource(t *testing.T) {
	cfg := config.Default()
	cfg.SourceDir = filepath.Join(t.TempDir(), "missing")

	m := New(cfg, WithOutput(&bytes.Buffer{}))
	_, err := m.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "failed to discover notes") {
		t.Errorf("Run() error = %v, want discovery failure", err)
	}
}

func TestMigrator_RunWithoutImages(t *testing.T) {
	v := setupTestVault(t, false)
	os.RemoveAll(v.cfg.ImageSourceDir)

	report, err := v.m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.ImagesFound != 0 {
		t.Errorf("ImagesFound = %d, want 0", report.ImagesFound)
	}
	if _, err := os.Stat(v.cfg.ImageTargetDir); !os.IsNotExist(err) {
		t.Error("image target should not be created without a source")
	}
}

func TestMigrator_RunImageCopyFailure(t *testing.T) {
	v := setupTestVault(t, false)
	// A file where the image target directory should be makes the copy fail.
	writeTestFile(t, v.cfg.ImageTargetDir, "not a directory")

	_, err := v.m.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "failed to copy images") {
		t.Errorf("Run() error = %v, want image copy failure", err)
	}
}

func TestMigrator_RunCancelled(t *testing.T) {
	v := setupTestVault(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.m.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestMigrator_InvalidDateIsRecorded(t *testing.T) {
	v := setupTestVault(t, false)
	writeTestFile(t, filepath.Join(v.cfg.SourceDir, "odd-date.md"), "---\ndate: next tuesday\n---\nx\n")

	report, err := v.m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2", report.Errors)
	}
	found := false
	for _, e := range report.Errors {
		if filepath.Base(e.File) == "odd-date.md" && strings.Contains(e.Message, "invalid date") {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want invalid date for odd-date.md", report.Errors)
	}
}

func TestMigrator_TargetPath(t *testing.T) {
	cfg := config.Default()
	cfg.TargetDir = "/blog/posts"
	m := New(cfg, WithOutput(&bytes.Buffer{}))

	tests := []struct {
		source string
		want   string
		ok     bool
	}{
		{"/vault/学习/note.md", "/blog/posts/note.md", true},
		{"/vault/note.md", "/blog/posts/note.md", true},
		{"/vault/index.md", "", false},
		{"/vault/sub/index.md", "", false},
		{"/vault/robots.txt", "", false},
		{"/vault/index.md.bak.md", "/blog/posts/index.md.bak.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, ok := m.TargetPath(tt.source)
			if ok != tt.ok || got != filepath.FromSlash(tt.want) {
				t.Errorf("TargetPath(%q) = %q, %v; want %q, %v", tt.source, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMigrator_ConvertContent(t *testing.T) {
	cfg := config.Default()
	cfg.SourceDir = t.TempDir()
	m := New(cfg, WithOutput(&bytes.Buffer{}), WithClock(func() time.Time { return fixedNow }))

	result, err := m.ConvertContent("实用/tip.md", "---\ntitle: Tip\ndraft: \"true\"\n---\n[[a|b]] `[[c]]`\n")
	if err != nil {
		t.Fatalf("ConvertContent() error = %v", err)
	}

	fm := result.Target.Frontmatter
	if fm.Category != "实用" {
		t.Errorf("Category = %q, want 实用", fm.Category)
	}
	if fm.Draft {
		t.Error("Draft = true, want false for string value")
	}
	if !fm.Published.Equal(fixedNow) {
		t.Errorf("Published = %v, want %v", fm.Published, fixedNow)
	}
	if fm.Image != transform.CoverImage {
		t.Errorf("Image = %q, want %q", fm.Image, transform.CoverImage)
	}
	if !strings.Contains(result.Content, "[b](/posts/a/) `[c](/posts/c/)`") {
		t.Errorf("Content = %q, want rewritten links", result.Content)
	}
}

func TestMigrator_ConvertContentProtectCode(t *testing.T) {
	cfg := config.Default()
	cfg.SourceDir = t.TempDir()
	cfg.ProtectCode = true
	m := New(cfg, WithOutput(&bytes.Buffer{}))

	result, err := m.ConvertContent("tip.md", "---\ntitle: Tip\n---\n[[a|b]] `[[c]]`\n")
	if err != nil {
		t.Fatalf("ConvertContent() error = %v", err)
	}
	if !strings.Contains(result.Content, "[b](/posts/a/) `[[c]]`") {
		t.Errorf("Content = %q, want code span untouched", result.Content)
	}
}

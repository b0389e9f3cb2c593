// Package transform maps vault note metadata onto the blog post schema.
package transform

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/taigrr/quartz-migrate/internal/types"
)

// ErrInvalidDate is returned when a note's date is in no accepted format.
var ErrInvalidDate = errors.New("invalid date")

// CoverImage tells the blog theme to assign a random cover image.
const CoverImage = "api"

var (
	calendarDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	dateLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006/01/02",
	}

	// DefaultCategories maps known vault folders to blog categories.
	DefaultCategories = map[string]string{
		"学习": "学习",
		"实用": "实用",
		"随笔": "随笔",
	}
)

// Transformer converts source frontmatter into a TargetFrontmatter.
type Transformer struct {
	sourceRoot string
	categories map[string]string
	now        func() time.Time
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithCategories adds or overrides entries in the category table.
func WithCategories(categories map[string]string) Option {
	return func(t *Transformer) {
		for k, v := range categories {
			t.categories[k] = v
		}
	}
}

// WithClock overrides the clock used for notes without a date.
func WithClock(now func() time.Time) Option {
	return func(t *Transformer) {
		t.now = now
	}
}

// New creates a Transformer for notes under sourceRoot.
func New(sourceRoot string, opts ...Option) *Transformer {
	absRoot, err := filepath.Abs(sourceRoot)
	if err != nil {
		absRoot = sourceRoot
	}
	t := &Transformer{
		sourceRoot: absRoot,
		categories: make(map[string]string, len(DefaultCategories)),
		now:        time.Now,
	}
	for k, v := range DefaultCategories {
		t.categories[k] = v
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Frontmatter builds the post header for a note at filePath.
func (t *Transformer) Frontmatter(data map[string]any, filePath string) (types.TargetFrontmatter, error) {
	published, err := t.Published(data["date"])
	if err != nil {
		return types.TargetFrontmatter{}, err
	}

	fm := types.TargetFrontmatter{
		Title:       stringField(data, "title"),
		Published:   published,
		Description: stringField(data, "description"),
		Image:       CoverImage,
		Tags:        tagsField(data["tags"]),
		Category:    t.Category(filePath),
		Draft:       data["draft"] == true,
		Lang:        "",
	}

	if updated, ok := data["updated"]; ok && !isEmpty(updated) {
		fm.Updated = updated
	}

	return fm, nil
}

// Published resolves a note's date value into a publish time.
func (t *Transformer) Published(value any) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return t.now(), nil
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return t.now(), nil
		}
		if calendarDate.MatchString(s) {
			parsed, err := time.Parse("2006-01-02", s)
			if err != nil {
				return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, v)
			}
			return parsed, nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, v)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported value %v (%T)", ErrInvalidDate, v, v)
	}
}

// Category derives a post category from the first folder under the source root.
func (t *Transformer) Category(filePath string) string {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}
	relPath, err := filepath.Rel(t.sourceRoot, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return ""
	}

	parts := strings.Split(filepath.ToSlash(relPath), "/")
	if len(parts) < 2 {
		return ""
	}

	folder := parts[0]
	if mapped, ok := t.categories[folder]; ok {
		return mapped
	}
	return folder
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func tagsField(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			} else {
				tags = append(tags, fmt.Sprint(item))
			}
		}
		return tags
	default:
		return []string{}
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	default:
		return false
	}
}

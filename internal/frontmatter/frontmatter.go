// Package frontmatter handles frontmatter parsing and stringification.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/pelletier/go-toml/v2"
	"github.com/taigrr/quartz-migrate/internal/types"
	"gopkg.in/yaml.v3"
)

// ErrMalformed is returned when a note's header cannot be decoded.
var ErrMalformed = errors.New("malformed frontmatter")

const dateLayout = "2006-01-02"

// Handler splits notes into header and body and writes post headers back.
type Handler struct {
	formats []*frontmatter.Format
}

// New creates a Handler accepting YAML (---) and TOML (+++) headers.
func New() *Handler {
	return &Handler{
		formats: []*frontmatter.Format{
			frontmatter.NewFormat("---", "---", yaml.Unmarshal),
			frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
		},
	}
}

// Parse splits raw note content into frontmatter and body.
// A note without a header parses to an empty frontmatter map.
func (h *Handler) Parse(path, content string) (types.SourceDocument, error) {
	var fm map[string]any
	body, err := frontmatter.Parse(strings.NewReader(content), &fm, h.formats...)
	if err != nil {
		return types.SourceDocument{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if fm == nil {
		fm = make(map[string]any)
	}
	for k, v := range fm {
		fm[k] = normalizeValue(v)
	}

	return types.SourceDocument{
		Frontmatter: fm,
		Body:        string(body),
		Path:        path,
	}, nil
}

// normalizeValue maps TOML date types onto time.Time so downstream code
// sees the same shapes regardless of the header format.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case toml.LocalDate:
		return t.AsTime(time.UTC)
	case toml.LocalDateTime:
		return t.AsTime(time.UTC)
	default:
		return v
	}
}

// postHeader fixes the key order of a serialized post header.
type postHeader struct {
	Title       string    `yaml:"title"`
	Published   timestamp `yaml:"published"`
	Description string    `yaml:"description"`
	Image       string    `yaml:"image"`
	Tags        []string  `yaml:"tags"`
	Category    string    `yaml:"category"`
	Draft       bool      `yaml:"draft"`
	Lang        string    `yaml:"lang"`
	Updated     any       `yaml:"updated,omitempty"`
}

// timestamp writes midnight-UTC times as a bare YYYY-MM-DD scalar.
type timestamp time.Time

func (ts timestamp) MarshalYAML() (any, error) {
	return timestampNode(time.Time(ts)), nil
}

func timestampNode(t time.Time) *yaml.Node {
	value := t.Format(time.RFC3339Nano)
	if t.Equal(t.UTC().Truncate(24 * time.Hour)) {
		value = t.UTC().Format(dateLayout)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: value}
}

// Stringify converts a converted post back to note text.
func (h *Handler) Stringify(doc types.TargetDocument) (string, error) {
	fm := doc.Frontmatter
	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}

	header := postHeader{
		Title:       fm.Title,
		Published:   timestamp(fm.Published),
		Description: fm.Description,
		Image:       fm.Image,
		Tags:        tags,
		Category:    fm.Category,
		Draft:       fm.Draft,
		Lang:        fm.Lang,
		Updated:     fm.Updated,
	}
	if t, ok := fm.Updated.(time.Time); ok {
		header.Updated = timestampNode(t)
	}

	yamlText, err := h.Marshal(header)
	if err != nil {
		return "", err
	}

	body := doc.Body
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	return "---\n" + yamlText + "---\n" + body, nil
}

// Marshal encodes v as YAML with two-space indentation.
func (h *Handler) Marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to stringify frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to stringify frontmatter: %w", err)
	}
	return buf.String(), nil
}

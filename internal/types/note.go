// Package types defines all data structures shared across the migrator.
package types

import "time"

type (
	// SourceDocument is a vault note split into frontmatter and body.
	SourceDocument struct {
		Frontmatter map[string]any `json:"frontmatter"`
		Body        string         `json:"body"`
		Path        string         `json:"path"`
	}

	// TargetFrontmatter is the fixed-shape metadata written for a blog post.
	// Field order is the serialized key order.
	TargetFrontmatter struct {
		Title       string    `json:"title"`
		Published   time.Time `json:"published"`
		Description string    `json:"description"`
		Image       string    `json:"image"`
		Tags        []string  `json:"tags"`
		Category    string    `json:"category"`
		Draft       bool      `json:"draft"`
		Lang        string    `json:"lang"`
		Updated     any       `json:"updated,omitempty"`
	}

	// TargetDocument is a converted post ready to be serialized.
	TargetDocument struct {
		Frontmatter TargetFrontmatter `json:"frontmatter"`
		Body        string            `json:"body"`
	}
)

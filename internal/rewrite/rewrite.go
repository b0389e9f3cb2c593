// Package rewrite converts wiki-style embeds and links into standard Markdown.
package rewrite

import (
	"regexp"
	"sort"
	"strings"

	"github.com/taigrr/quartz-migrate/internal/uri"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	imageEmbedPattern = regexp.MustCompile(`!\[\[([^\]]+)\]\]`)
	pipedLinkPattern  = regexp.MustCompile(`\[\[([^\]|]+)\|([^\]]+)\]\]`)
	bareLinkPattern   = regexp.MustCompile(`\[\[([^\]|]+)\]\]`)
)

// ImageReferences rewrites ![[name]] embeds to ![](./images/name).
func ImageReferences(content string) string {
	return imageEmbedPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := imageEmbedPattern.FindStringSubmatch(match)
		return "![](" + uri.ImagePath(groups[1]) + ")"
	})
}

// InternalLinks rewrites [[link|text]] and [[link]] to post links.
// Piped links are rewritten first so the bare form never captures them.
func InternalLinks(content string) string {
	content = pipedLinkPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := pipedLinkPattern.FindStringSubmatch(match)
		return "[" + groups[2] + "](" + uri.PostPath(groups[1]) + ")"
	})

	return bareLinkPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := bareLinkPattern.FindStringSubmatch(match)
		link := strings.TrimSpace(groups[1])
		return "[" + link + "](" + uri.PostPath(link) + ")"
	})
}

// Rewriter applies image and link rewriting to note bodies.
type Rewriter struct {
	protectCode bool
	markdown    goldmark.Markdown
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithCodeProtection leaves code blocks and inline code spans untouched.
func WithCodeProtection(enabled bool) Option {
	return func(r *Rewriter) {
		r.protectCode = enabled
	}
}

// New creates a Rewriter.
func New(opts ...Option) *Rewriter {
	r := &Rewriter{markdown: goldmark.New()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rewrite converts embeds first and links second.
func (r *Rewriter) Rewrite(body string) string {
	if !r.protectCode {
		return rewriteText(body)
	}

	spans := r.codeSpans([]byte(body))
	if len(spans) == 0 {
		return rewriteText(body)
	}

	var b strings.Builder
	b.Grow(len(body))
	pos := 0
	for _, s := range spans {
		b.WriteString(rewriteText(body[pos:s.start]))
		b.WriteString(body[s.start:s.stop])
		pos = s.stop
	}
	b.WriteString(rewriteText(body[pos:]))

	return b.String()
}

func rewriteText(s string) string {
	return InternalLinks(ImageReferences(s))
}

type span struct {
	start, stop int
}

// codeSpans returns the sorted, non-overlapping byte ranges of code content.
func (r *Rewriter) codeSpans(source []byte) []span {
	doc := r.markdown.Parser().Parse(text.NewReader(source))

	var spans []span
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				spans = append(spans, span{seg.Start, seg.Stop})
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					spans = append(spans, span{t.Segment.Start, t.Segment.Stop})
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.stop {
			last.stop = max(last.stop, s.stop)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/quartz-migrate/internal/migrate"
	"gopkg.in/yaml.v3"
)

const snippetLength = 300

func newPreviewCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <note>",
		Short: "Show how a single note will be converted",
		Long: `preview converts one note without writing anything and prints
the original and converted frontmatter followed by the start of
the original and converted body. The note path is relative to
the source directory.`,
		Example: `quartz-migrate preview 学习/how-to-use-ai-for-free.md`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			m := migrate.New(cfg, migrate.WithOutput(io.Discard), migrate.WithLogger(f.logger()))

			result, err := m.Convert(args[0])
			if err != nil {
				return err
			}
			return writePreview(cmd.OutOrStdout(), args[0], result)
		},
	}
}

func writePreview(w io.Writer, name string, result migrate.Result) error {
	original, err := yaml.Marshal(result.Source.Frontmatter)
	if err != nil {
		return fmt.Errorf("failed to stringify frontmatter: %w", err)
	}
	converted, _, _ := strings.Cut(strings.TrimPrefix(result.Content, "---\n"), "---\n")

	rule := strings.Repeat("=", 50)
	fmt.Fprintf(w, "%s\nOriginal file: %s\n%s\n\n", rule, name, rule)

	fmt.Fprintf(w, "[Original frontmatter]\n---\n%s---\n\n", original)
	fmt.Fprintf(w, "[Converted frontmatter]\n---\n%s---\n\n", converted)

	fmt.Fprintf(w, "[Original body]\n%s\n\n...\n\n", snippet(result.Source.Body))
	fmt.Fprintf(w, "[Converted body]\n%s\n\n...\n\n", snippet(result.Target.Body))

	fmt.Fprintf(w, "%s\nChanges:\n", rule)
	for _, change := range changes(result) {
		fmt.Fprintf(w, "  %s\n", change)
	}
	fmt.Fprintln(w, rule)
	return nil
}

func changes(result migrate.Result) []string {
	fm := result.Target.Frontmatter
	list := []string{
		"date -> published (" + fm.Published.Format("2006-01-02") + ")",
		"image: " + fm.Image + " (random cover)",
	}
	if fm.Category != "" {
		list = append(list, "category: "+fm.Category)
	}
	if result.Source.Body != result.Target.Body {
		list = append(list, "![[image]] -> ![](./images/image), [[link|text]] -> [text](/posts/link/)")
	}
	return list
}

// snippet returns at most snippetLength characters of s.
func snippet(s string) string {
	runes := []rune(s)
	if len(runes) <= snippetLength {
		return s
	}
	return string(runes[:snippetLength])
}

// Package pathfilter decides which vault paths take part in a migration.
package pathfilter

import (
	"regexp"
	"strings"

	"github.com/taigrr/quartz-migrate/internal/types"
)

// DefaultIgnoredPatterns are tool directories and system files never migrated.
var DefaultIgnoredPatterns = []string{
	".obsidian/**",
	".git/**",
	".trash/**",
	"node_modules/**",
	".DS_Store",
	"Thumbs.db",
}

// DefaultAllowedExtensions are the note extensions picked up by discovery.
var DefaultAllowedExtensions = []string{".md"}

// PathFilter filters vault-relative paths by glob and extension.
type PathFilter struct {
	ignored           []*regexp.Regexp
	allowedExtensions []string
}

// New creates a new PathFilter with the given configuration.
// Configured patterns and extensions are added to the defaults.
func New(config *types.PathFilterConfig) *PathFilter {
	patterns := append([]string{}, DefaultIgnoredPatterns...)
	extensions := append([]string{}, DefaultAllowedExtensions...)

	if config != nil {
		patterns = append(patterns, config.IgnoredPatterns...)
		extensions = append(extensions, config.AllowedExtensions...)
	}

	pf := &PathFilter{allowedExtensions: extensions}
	for _, pattern := range patterns {
		if re, err := globToRegexp(pattern); err == nil {
			pf.ignored = append(pf.ignored, re)
		}
	}
	return pf
}

// globToRegexp converts a glob pattern to an anchored regular expression.
// A pattern without a slash matches a path segment at any depth.
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	normalizedPattern := strings.ReplaceAll(pattern, "\\", "/")

	regexPattern := regexp.QuoteMeta(normalizedPattern)
	regexPattern = strings.ReplaceAll(regexPattern, `\*\*`, ".*")  // ** matches any
	regexPattern = strings.ReplaceAll(regexPattern, `\*`, "[^/]*") // * matches non-slash
	regexPattern = strings.ReplaceAll(regexPattern, `\?`, "[^/]")  // ? matches single char

	if strings.Contains(normalizedPattern, "/") {
		return regexp.Compile("^" + regexPattern + "$")
	}
	return regexp.Compile("(^|/)" + regexPattern + "/?$")
}

// IsAllowed reports whether a vault-relative path may be migrated.
// Paths ending in '/' are directories and are only checked against the
// ignore patterns; files must also carry an allowed extension.
func (pf *PathFilter) IsAllowed(path string) bool {
	normalizedPath := strings.ReplaceAll(path, "\\", "/")
	normalizedPath = strings.TrimPrefix(normalizedPath, "./")

	for _, re := range pf.ignored {
		if re.MatchString(normalizedPath) {
			return false
		}
	}

	if strings.HasSuffix(normalizedPath, "/") {
		return true
	}

	for _, ext := range pf.allowedExtensions {
		if strings.HasSuffix(normalizedPath, ext) {
			return true
		}
	}
	return false
}

// IsAllowedDir reports whether discovery should descend into a directory.
func (pf *PathFilter) IsAllowedDir(path string) bool {
	path = strings.TrimSuffix(strings.ReplaceAll(path, "\\", "/"), "/")
	return pf.IsAllowed(path + "/")
}

// FilterPaths filters a slice of paths to only include allowed ones.
func (pf *PathFilter) FilterPaths(paths []string) []string {
	var allowed []string
	for _, path := range paths {
		if pf.IsAllowed(path) {
			allowed = append(allowed, path)
		}
	}
	return allowed
}

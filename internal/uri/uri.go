// Package uri builds the link targets used in converted posts.
package uri

import "strings"

const (
	// PostsPrefix is the site path under which migrated posts are served.
	PostsPrefix = "/posts/"

	// ImagesPrefix is the post-relative directory holding copied images.
	ImagesPrefix = "./images/"
)

// PostPath returns the site path for the post with the given slug.
// The slug is trimmed of surrounding whitespace but otherwise kept verbatim:
// no case folding, URL encoding, or slash collapsing is applied.
func PostPath(slug string) string {
	return PostsPrefix + strings.TrimSpace(slug) + "/"
}

// ImagePath returns the post-relative path of an embedded image.
func ImagePath(name string) string {
	return ImagesPrefix + name
}

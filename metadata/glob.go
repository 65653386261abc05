package metadata

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match reports whether a discovered file path (e.g. src/classes/Foo.cls) is selected by pattern.
// A pattern without a slash matches the base name at any depth; anything else is matched against
// the path below src/.
func Match(pattern, filePath string) bool {
	pattern = normalizePattern(pattern)
	rel := strings.TrimPrefix(filePath, "src/")

	if !strings.Contains(pattern, "/") {
		ok, err := doublestar.Match(pattern, path.Base(rel))
		return err == nil && ok
	}
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}

// FilterOnGlobs keeps the paths matched by at least one pattern, in their original order.
func FilterOnGlobs(paths []string, globs []string) []string {
	kept := []string{}
	for _, p := range paths {
		for _, g := range globs {
			if Match(g, p) {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}

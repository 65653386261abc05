package metadata

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/exp/slices"
)

// DefaultGlobs returns the patterns to use: the given ones, or "match everything".
func DefaultGlobs(globs []string) []string {
	if len(globs) == 0 {
		return []string{"*"}
	}
	return slices.Clone(globs)
}

// ValidateGlobs rejects patterns doublestar can't parse, e.g. "classes/[".
func ValidateGlobs(globs []string) error {
	for _, g := range globs {
		if !doublestar.ValidatePattern(normalizePattern(g)) {
			return fmt.Errorf("metadata: invalid glob pattern %q", g)
		}
	}
	return nil
}

// Resolve returns, in table order, the types whose folder can be reached by at least one of the
// patterns.
func (tbl Table) Resolve(globs []string) []Type {
	matched := []Type{}
	for _, t := range tbl {
		if slices.ContainsFunc(globs, func(g string) bool { return reachesAny(g, t) }) {
			matched = append(matched, t)
		}
	}
	return matched
}

// reachesAny splits off top-level braces first, since an alternative may name its own folder:
// {classes/*,triggers/*}.
func reachesAny(glob string, t Type) bool {
	for _, alt := range expandBraces(glob) {
		if reaches(normalizePattern(alt), t) {
			return true
		}
	}
	return false
}

func reaches(pattern string, t Type) bool {
	if pattern == "" {
		return false
	}

	first, _, hasSlash := strings.Cut(pattern, "/")
	if !hasSlash {
		// base-name pattern, matches at any depth.  Only an extension narrows it down.
		ext := path.Ext(pattern)
		if ext == "" {
			return true
		}
		if t.Suffix == "" {
			// documents keep whatever extension they came with; bundles have none
			return t.InFolder
		}
		ok, err := doublestar.Match(ext[1:], t.Suffix)
		return err == nil && ok
	}

	if first == "**" {
		return true
	}
	ok, err := doublestar.Match(first, t.Folder)
	return err == nil && ok
}

// Group splits items into consecutive chunks of at most size, keeping order.
func Group[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	groups := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		groups = append(groups, slices.Clone(items[start:end]))
	}
	return groups
}

// expandBraces rewrites the first top-level {a,b} group into one pattern per alternative,
// recursively.  Unbalanced braces are left alone.
func expandBraces(pattern string) []string {
	depth, open := 0, -1
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '{':
			if depth == 0 {
				open = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth > 0 {
				continue
			}
			prefix, suffix := pattern[:open], pattern[i+1:]
			var out []string
			for _, alt := range splitAlternatives(pattern[open+1 : i]) {
				out = append(out, expandBraces(prefix+alt+suffix)...)
			}
			return out
		}
	}
	return []string{pattern}
}

// splitAlternatives splits a brace body at the commas that aren't nested in another brace.
func splitAlternatives(body string) []string {
	var alts []string
	depth, start := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				alts = append(alts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(alts, body[start:])
}

// Patterns are written relative to the project root, so "src/classes/*" and "./classes/*" both
// mean "classes/*".
func normalizePattern(pattern string) string {
	pattern = strings.TrimPrefix(pattern, "./")
	pattern = strings.TrimPrefix(pattern, "src/")
	return pattern
}

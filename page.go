package pagecache

import (
	"fmt"
	"regexp"
	"strings"
)

// patternPrefix marks a page entry as a regular expression in ParsePage.
const patternPrefix = "re:"

// Page is one entry of the cacheable-path allowlist: either a literal prefix
// or a regular expression. The zero Page is the empty prefix and matches every path.
type Page struct {
	prefix string
	re     *regexp.Regexp
}

// Prefix matches paths that start with s.
func Prefix(s string) Page { return Page{prefix: s} }

// Pattern matches paths for which re finds a match anywhere in the path.
// Anchor the expression to match the whole path.
func Pattern(re *regexp.Regexp) Page { return Page{re: re} }

// MustPattern compiles expr and panics on error.
func MustPattern(expr string) Page { return Pattern(regexp.MustCompile(expr)) }

// ParsePage turns a configuration string into a Page. Entries starting with
// "re:" are compiled as regular expressions; anything else is a prefix.
func ParsePage(s string) (Page, error) {
	if expr, ok := strings.CutPrefix(s, patternPrefix); ok {
		re, err := regexp.Compile(expr)
		if err != nil {
			return Page{}, fmt.Errorf("pagecache: page %q: %w", s, err)
		}
		return Pattern(re), nil
	}
	return Prefix(s), nil
}

// ParsePages parses every entry with ParsePage.
func ParsePages(ss []string) ([]Page, error) {
	out := make([]Page, 0, len(ss))
	for _, s := range ss {
		p, err := ParsePage(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Match reports whether path is covered by this entry.
func (p Page) Match(path string) bool {
	if p.re != nil {
		return p.re.MatchString(path)
	}
	return strings.HasPrefix(path, p.prefix)
}

func (p Page) String() string {
	if p.re != nil {
		return patternPrefix + p.re.String()
	}
	return p.prefix
}

package mdrender

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var ErrInvalidFrontmatter = errors.New("mdrender: invalid frontmatter")

// Meta is the YAML frontmatter of a page.
type Meta struct {
	Title string `yaml:"title"`
	// Status overrides the response status (e.g. 410 for retired pages, or
	// 301 alongside Redirect).
	Status   int    `yaml:"status"`
	Redirect string `yaml:"redirect"`
}

var delimiter = []byte("---")

// splitFrontmatter separates a leading "---" YAML block from the markdown body.
// Content without frontmatter is returned whole with zero Meta.
func splitFrontmatter(content []byte) (Meta, []byte, error) {
	var meta Meta
	if !bytes.HasPrefix(content, delimiter) {
		return meta, content, nil
	}
	rest := bytes.TrimLeft(content[len(delimiter):], "\r\n")
	end := bytes.Index(rest, delimiter)
	if end == -1 {
		return meta, nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	body := rest[end+len(delimiter):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))
	return meta, body, nil
}

// Package markdown stores artifacts as markdown files with a YAML front
// matter block, one file per artifact, grouped into directories by type.
package markdown

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/example/blueprint/internal/ports/secondary"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("markdown: missing front matter")
	// ErrMalformedFrontMatter indicates the closing fence was not found.
	ErrMalformedFrontMatter = errors.New("markdown: malformed front matter")
)

// header is the front matter layout. Field order is the rendering order.
type header struct {
	ID           string            `yaml:"id"`
	Type         string            `yaml:"type"`
	Status       string            `yaml:"status"`
	Title        string            `yaml:"title"`
	Parent       string            `yaml:"parent,omitempty"`
	Dependencies []string          `yaml:"dependencies,omitempty"`
	Revision     int               `yaml:"revision,omitempty"`
	Sprint       string            `yaml:"sprint,omitempty"`
	Attributes   map[string]string `yaml:"attributes,omitempty"`
	Created      string            `yaml:"created,omitempty"`
	Updated      string            `yaml:"updated,omitempty"`
}

// Render writes an artifact as front matter plus body.
func Render(a *secondary.ArtifactRecord) ([]byte, error) {
	if a.ID == "" {
		return nil, fmt.Errorf("markdown: artifact missing id")
	}
	h := header{
		ID:           a.ID,
		Type:         a.Type,
		Status:       a.Status,
		Title:        a.Title,
		Parent:       a.ParentID,
		Dependencies: a.Dependencies,
		Revision:     a.RevisionCount,
		Sprint:       a.SprintID,
		Attributes:   a.Attributes,
		Created:      a.CreatedAt,
		Updated:      a.UpdatedAt,
	}
	data, err := yaml.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("markdown: encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.WriteString(a.Body)
	if a.Body != "" && a.Body[len(a.Body)-1] != '\n' {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Parse extracts an artifact from a rendered document.
func Parse(content []byte) (*secondary.ArtifactRecord, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, ErrMissingFrontMatter
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return nil, ErrMalformedFrontMatter
	}

	var h header
	if err := yaml.Unmarshal(parts[0], &h); err != nil {
		return nil, fmt.Errorf("markdown: parse front matter: %w", err)
	}

	body := bytes.TrimPrefix(parts[1], []byte("\n"))
	body = bytes.TrimRight(body, "\n")

	return &secondary.ArtifactRecord{
		ID:            h.ID,
		Type:          h.Type,
		Status:        h.Status,
		Title:         h.Title,
		ParentID:      h.Parent,
		Dependencies:  h.Dependencies,
		RevisionCount: h.Revision,
		SprintID:      h.Sprint,
		Attributes:    h.Attributes,
		Body:          string(body),
		CreatedAt:     h.Created,
		UpdatedAt:     h.Updated,
	}, nil
}

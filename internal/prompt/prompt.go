// Package prompt loads and composes copy templates.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

// Template names.
const (
	AudienceTemplate = "audience"
	CopyTemplate     = "copy"
)

// ErrEmpty indicates a template file exists but contains no content.
var ErrEmpty = errors.New("prompt: empty template file")

// Context holds the values interpolated into copy templates.
type Context struct {
	Brief   string
	Segment string
}

// Loader reads templates from a filesystem.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a Loader that reads <name>.tmpl files from fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Load reads the template file for name.
func (l *Loader) Load(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("prompt: invalid template name %q", name)
	}

	data, err := fs.ReadFile(l.fsys, name+".tmpl")
	if err != nil {
		return "", fmt.Errorf("prompt: loading %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmpty, name)
	}
	return string(data), nil
}

// Compose loads a template and interpolates ctx into it.
// Templates use Go text/template syntax (e.g. {{.Brief}}).
// The result is trimmed of surrounding whitespace.
func (l *Loader) Compose(name string, ctx Context) (string, error) {
	raw, err := l.Load(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("prompt: parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("prompt: executing template %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

package provider

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/smileynet/campaignmgr/internal/prompt"
)

// Stub text returned when no generative backend is configured.
const (
	FallbackSegment = "Tech-savvy millennials"
	FallbackCopy    = "STUBBED_CONTENT: Check out our new gadget!"
)

// Fallback returns fixed stub text for every brief.
type Fallback struct{}

// Name returns "fallback".
func (Fallback) Name() string { return "fallback" }

// Audience returns the single stub segment.
func (Fallback) Audience(ctx context.Context, _ string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []string{FallbackSegment}, nil
}

// Copy returns the stub copy.
func (Fallback) Copy(ctx context.Context, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return FallbackCopy, nil
}

// Template renders audience and copy from text templates.
// The audience template yields a comma-separated list.
type Template struct {
	loader *prompt.Loader
}

// NewTemplate creates a Template copywriter reading from fsys.
func NewTemplate(fsys fs.FS) *Template {
	return &Template{loader: prompt.NewLoader(fsys)}
}

// Name returns "template".
func (t *Template) Name() string { return "template" }

// Audience renders the audience template and splits it on commas.
func (t *Template) Audience(ctx context.Context, brief string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := t.loader.Compose(prompt.AudienceTemplate, prompt.Context{Brief: brief})
	if err != nil {
		return nil, err
	}
	return SplitSegments(out), nil
}

// Copy renders the copy template for one segment.
func (t *Template) Copy(ctx context.Context, brief, segment string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := t.loader.Compose(prompt.CopyTemplate, prompt.Context{Brief: brief, Segment: segment})
	if err != nil {
		return "", fmt.Errorf("copy for %q: %w", segment, err)
	}
	return out, nil
}

// SplitSegments splits a comma-separated list, dropping blank entries.
func SplitSegments(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RegisterBuiltins registers the built-in copywriters on the given registry.
// templates supplies the files for the "template" copywriter.
func RegisterBuiltins(reg *Registry, templates fs.FS) {
	reg.Register("fallback", func() (Copywriter, error) {
		return Fallback{}, nil
	})
	reg.Register("template", func() (Copywriter, error) {
		if templates == nil {
			return nil, fmt.Errorf("no template filesystem")
		}
		return NewTemplate(templates), nil
	})
}

// Package provider supplies the copywriters that generate audience segments
// and ad copy for the campaign service.
package provider

import (
	"context"
)

// Copywriter generates campaign text.
type Copywriter interface {
	// Name returns the copywriter identifier (e.g. "fallback").
	Name() string
	// Audience returns the audience segments for a brief.
	Audience(ctx context.Context, brief string) ([]string, error)
	// Copy writes ad copy for one segment of a brief.
	Copy(ctx context.Context, brief, segment string) (string, error)
}

// Verify MockCopywriter satisfies Copywriter at compile time.
var _ Copywriter = (*MockCopywriter)(nil)

// MockCopywriter is a test double with pluggable behavior.
type MockCopywriter struct {
	NameVal      string
	AudienceFunc func(ctx context.Context, brief string) ([]string, error)
	CopyFunc     func(ctx context.Context, brief, segment string) (string, error)
}

// Name returns the configured name.
func (m *MockCopywriter) Name() string { return m.NameVal }

// Audience delegates to AudienceFunc, returning nil if it is unset.
func (m *MockCopywriter) Audience(ctx context.Context, brief string) ([]string, error) {
	if m.AudienceFunc == nil {
		return nil, nil
	}
	return m.AudienceFunc(ctx, brief)
}

// Copy delegates to CopyFunc, returning "" if it is unset.
func (m *MockCopywriter) Copy(ctx context.Context, brief, segment string) (string, error) {
	if m.CopyFunc == nil {
		return "", nil
	}
	return m.CopyFunc(ctx, brief, segment)
}

package format

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/mesh-intelligence/commentary/pkg/types"
)

// Markdown renders GitHub flavored markdown and passes the result through
// a user-generated-content policy. Raw HTML in the source is never
// rendered.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewMarkdown returns a Markdown formatter. It is safe for concurrent use.
func NewMarkdown() *Markdown {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
				gmhtml.WithXHTML(),
			),
		),
		policy: policy,
	}
}

func (m *Markdown) Format(_ types.Page, _ types.Field, v string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(v), &buf); err != nil {
		return html.EscapeString(v)
	}
	return string(bytes.TrimSpace(m.policy.SanitizeBytes(buf.Bytes())))
}

// Package render turns a validated site collection into a static file tree:
// one HTML page per document, a reverse-chronological index, an optional RSS
// feed, and copied-through assets.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// Renderer is the injected Markdown-to-HTML capability. Implementations must
// be pure: same input, same output, no side effects. Tests substitute a stub.
type Renderer interface {
	Render(src []byte) ([]byte, error)
}

// Markdown renders GitHub-flavored Markdown through goldmark with
// chroma-highlighted fenced code blocks (inline styles, so pages need no
// extra stylesheet).
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates the production renderer. style names a chroma style;
// unknown names fall back to chroma's default.
func NewMarkdown(style string) *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(style),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

func (m *Markdown) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.md.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderError ties a rendering failure to the document that caused it. One
// failed document does not stop the batch, but any recorded RenderError fails
// the build once all documents are processed.
type RenderError struct {
	Document string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Document, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// RenderErrors aggregates per-document failures from one batch.
type RenderErrors []*RenderError

func (e RenderErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d documents failed to render (first: %v)", len(e), e[0])
}

// WriteError indicates the output tree could not be written. Fatal
// immediately; the staging directory is discarded so no partial site is ever
// left in the published location.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

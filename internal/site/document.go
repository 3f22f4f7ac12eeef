// Package site builds the validated, ordered document collection from loader
// output. The collection is immutable once built; rendering never mutates it.
package site

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Document is one validated blog post.
type Document struct {
	Identifier string
	Slug       string // URL-safe output path stem derived from Identifier
	Title      string
	Date       time.Time
	Summary    string
	Tags       []string
	Draft      bool
	Body       string // raw Markdown, front matter removed
	Source     string // content-root-relative path, for error reporting
}

// Site is the ordered collection of documents plus derived aggregate views.
//
// Documents are sorted by date descending, ties broken by identifier
// ascending. ByTag groups document indexes (into Documents) per tag.
type Site struct {
	Title       string
	Description string
	BaseURL     string
	Author      string

	Documents []Document
	ByTag     map[string][]int
}

// PageURL returns the site-relative URL for a document's rendered page.
func (s *Site) PageURL(d Document) string {
	return "/" + d.Slug + ".html"
}

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts an identifier into a URL-safe slug: accents are folded
// away, letters lowercased, and every other run of characters collapsed to a
// single dash. Path separators are preserved so nested documents keep their
// directory layout in the output tree.
func Slugify(identifier string) string {
	folded, _, err := transform.String(stripMarks, identifier)
	if err != nil {
		folded = identifier
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == '/':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = true
		}
	}

	out := b.String()
	out = strings.Trim(out, "-")
	out = strings.ReplaceAll(out, "-/", "/")
	out = strings.ReplaceAll(out, "/-", "/")
	return out
}

package site

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/sssg/internal/content"
)

// Recognized front-matter keys for post documents.
const (
	KeyTitle   = "title"
	KeyDate    = "date"
	KeySummary = "summary"
	KeyTags    = "tags"
	KeyDraft   = "draft"
)

// dateLayouts are the accepted human-readable date formats, tried in order.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"2 January 2006",
	"02 Jan 2006",
}

// Options configures document model building.
type Options struct {
	// SummaryLength is the maximum rune count of the derived excerpt used
	// when a document has no explicit summary. Zero means no excerpt: absent
	// summaries stay empty.
	SummaryLength int
	// IncludeDrafts keeps documents marked draft = "true" in the collection.
	IncludeDrafts bool

	Title       string
	Description string
	BaseURL     string
	Author      string
}

// Build validates loader output against the document invariants and assembles
// the ordered Site collection.
//
// Every violation across the whole batch is collected before failing, so one
// invocation reports every broken document. On success the returned Site is
// complete and sorted; the input is never mutated.
func Build(files []content.SourceFile, opts Options) (*Site, error) {
	violations := &Violations{}
	docs := make([]Document, 0, len(files))

	for _, f := range files {
		if doc, ok := buildDocument(f, opts, violations); ok {
			docs = append(docs, doc)
		}
	}

	checkUnique(docs, violations)

	if err := violations.Err(); err != nil {
		return nil, err
	}

	if !opts.IncludeDrafts {
		kept := docs[:0]
		for _, d := range docs {
			if !d.Draft {
				kept = append(kept, d)
			}
		}
		docs = kept
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].Date.Equal(docs[j].Date) {
			return docs[i].Date.After(docs[j].Date)
		}
		return docs[i].Identifier < docs[j].Identifier
	})

	byTag := map[string][]int{}
	for i, d := range docs {
		for _, tag := range d.Tags {
			byTag[tag] = append(byTag[tag], i)
		}
	}

	return &Site{
		Title:       opts.Title,
		Description: opts.Description,
		BaseURL:     opts.BaseURL,
		Author:      opts.Author,
		Documents:   docs,
		ByTag:       byTag,
	}, nil
}

func buildDocument(f content.SourceFile, opts Options, violations *Violations) (Document, bool) {
	ok := true

	if !f.HasFrontMatter {
		violations.Add(f.Identifier, "", "post file has no front-matter block")
		return Document{}, false
	}

	doc := Document{
		Identifier: f.Identifier,
		Slug:       Slugify(f.Identifier),
		Body:       string(f.Body),
		Source:     f.RelativePath,
	}

	doc.Title = f.FrontMatter[KeyTitle]
	if strings.TrimSpace(doc.Title) == "" {
		violations.Add(f.Identifier, KeyTitle, "required field is missing or empty")
		ok = false
	}

	rawDate := f.FrontMatter[KeyDate]
	if strings.TrimSpace(rawDate) == "" {
		violations.Add(f.Identifier, KeyDate, "required field is missing or empty")
		ok = false
	} else if date, err := ParseDate(rawDate); err != nil {
		violations.Addf(f.Identifier, KeyDate, "unparseable date %q", rawDate)
		ok = false
	} else {
		doc.Date = date
	}

	if raw, present := f.FrontMatter[KeyDraft]; present {
		draft, err := strconv.ParseBool(raw)
		if err != nil {
			violations.Addf(f.Identifier, KeyDraft, "not a boolean: %q", raw)
			ok = false
		}
		doc.Draft = draft
	}

	if raw, present := f.FrontMatter[KeyTags]; present {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				doc.Tags = append(doc.Tags, tag)
			}
		}
	}

	doc.Summary = f.FrontMatter[KeySummary]
	if doc.Summary == "" {
		doc.Summary = Excerpt(doc.Body, opts.SummaryLength)
	}

	return doc, ok
}

// checkUnique reports identifier and slug collisions, naming every offending
// source so authors can resolve the clash in one pass.
func checkUnique(docs []Document, violations *Violations) {
	byIdentifier := map[string][]string{}
	bySlug := map[string][]string{}
	for _, d := range docs {
		byIdentifier[d.Identifier] = append(byIdentifier[d.Identifier], d.Source)
		bySlug[d.Slug] = append(bySlug[d.Slug], d.Source)
	}

	for _, d := range docs {
		if sources := byIdentifier[d.Identifier]; len(sources) > 1 {
			violations.Addf(d.Source, "", "identifier %q collides with %s",
				d.Identifier, strings.Join(others(sources, d.Source), ", "))
		} else if sources := bySlug[d.Slug]; len(sources) > 1 {
			violations.Addf(d.Source, "", "slug %q collides with %s",
				d.Slug, strings.Join(others(sources, d.Source), ", "))
		}
	}
}

func others(sources []string, self string) []string {
	out := make([]string, 0, len(sources)-1)
	for _, s := range sources {
		if s != self {
			out = append(out, s)
		}
	}
	return out
}

// ParseDate parses a human-readable calendar date into its canonical sortable
// value (midnight UTC).
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

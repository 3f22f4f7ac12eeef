package render

import (
	"bytes"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/sssg/internal/content"
	"git.home.luguber.info/inful/sssg/internal/logfields"
	"git.home.luguber.info/inful/sssg/internal/site"
)

// Generator emits the static site tree for one build.
//
// Output is written to an isolated staging directory and promoted over the
// final output directory only after the whole tree has been produced, so a
// failed build never leaves a half-built site where it could be deployed.
type Generator struct {
	outputDir string
	stageDir  string
	renderer  Renderer
	templates *TemplateSet

	// workers bounds parallel document rendering; <=1 renders sequentially.
	workers   int
	feed      bool
	feedLimit int
}

// NewGenerator creates a site generator writing to outputDir.
func NewGenerator(outputDir string, renderer Renderer, templates *TemplateSet) *Generator {
	return &Generator{
		outputDir: filepath.Clean(outputDir),
		renderer:  renderer,
		templates: templates,
	}
}

// WithWorkers bounds parallel per-document rendering.
func (g *Generator) WithWorkers(n int) *Generator { g.workers = n; return g }

// WithFeed enables feed.xml emission with at most limit entries.
func (g *Generator) WithFeed(limit int) *Generator { g.feed = true; g.feedLimit = limit; return g }

// pageContext is the data handed to the page template for one document.
type pageContext struct {
	Site     *site.Site
	Document site.Document
	Content  template.HTML
}

// indexEntry is one listing row on the index page.
type indexEntry struct {
	Document site.Document
	URL      string
}

type indexContext struct {
	Site    *site.Site
	Entries []indexEntry
}

// GenerateSite renders every document and writes the complete output tree.
//
// Rendering failures are collected per document and reported together after
// the batch; write failures abort immediately. In both cases the staging
// directory is removed and the previous output tree is left untouched.
func (g *Generator) GenerateSite(s *site.Site, assets []content.Asset) error {
	if err := g.beginStaging(); err != nil {
		return &WriteError{Path: g.stageDir, Err: err}
	}

	err := g.generate(s, assets)
	if err != nil {
		g.abortStaging()
		return err
	}

	if err := g.finalizeStaging(); err != nil {
		g.abortStaging()
		return err
	}
	slog.Info("Site generated", logfields.Path(g.outputDir), logfields.Count(len(s.Documents)))
	return nil
}

func (g *Generator) generate(s *site.Site, assets []content.Asset) error {
	rendered, renderErrs := g.renderAll(s)

	// Write the pages that did render even when some failed, so authors see
	// the full extent of problems; the build still fails afterwards.
	for i, d := range s.Documents {
		if rendered[i] == nil {
			continue
		}
		if err := g.writePage(s, d, rendered[i]); err != nil {
			return err
		}
	}

	if err := g.writeIndex(s); err != nil {
		return err
	}
	if g.feed {
		if err := g.writeFeed(s); err != nil {
			return err
		}
	}
	if err := g.copyAssets(assets); err != nil {
		return err
	}

	if len(renderErrs) > 0 {
		return renderErrs
	}
	return nil
}

// renderAll renders every document body to HTML, optionally across a bounded
// worker pool. Workers share nothing mutable: each writes only its own slot
// of the result slice, and failures are joined under a mutex.
func (g *Generator) renderAll(s *site.Site) ([][]byte, RenderErrors) {
	rendered := make([][]byte, len(s.Documents))
	var (
		mu       sync.Mutex
		failures RenderErrors
	)

	renderOne := func(i int) {
		d := s.Documents[i]
		html, err := g.renderer.Render([]byte(d.Body))
		if err != nil {
			mu.Lock()
			failures = append(failures, &RenderError{Document: d.Identifier, Err: err})
			mu.Unlock()
			slog.Error("Document failed to render", logfields.Document(d.Identifier), logfields.Error(err))
			return
		}
		rendered[i] = html
	}

	if g.workers <= 1 || len(s.Documents) < 2 {
		for i := range s.Documents {
			renderOne(i)
		}
		return rendered, sortFailures(failures, s)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				renderOne(i)
			}
		}()
	}
	for i := range s.Documents {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return rendered, sortFailures(failures, s)
}

// sortFailures orders collected failures by document position so reports are
// deterministic regardless of worker scheduling.
func sortFailures(failures RenderErrors, s *site.Site) RenderErrors {
	if len(failures) < 2 {
		return failures
	}
	pos := make(map[string]int, len(s.Documents))
	for i, d := range s.Documents {
		pos[d.Identifier] = i
	}
	ordered := make(RenderErrors, len(failures))
	copy(ordered, failures)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && pos[ordered[j].Document] < pos[ordered[j-1].Document]; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}

func (g *Generator) writePage(s *site.Site, d site.Document, html []byte) error {
	var buf bytes.Buffer
	ctx := pageContext{Site: s, Document: d, Content: template.HTML(html)}
	if err := g.templates.Page.Execute(&buf, ctx); err != nil {
		return &WriteError{Path: d.Slug + ".html", Err: err}
	}
	return g.writeOutputFile(filepath.FromSlash(d.Slug)+".html", buf.Bytes())
}

func (g *Generator) writeIndex(s *site.Site) error {
	entries := make([]indexEntry, 0, len(s.Documents))
	for _, d := range s.Documents {
		entries = append(entries, indexEntry{Document: d, URL: s.PageURL(d)})
	}

	var buf bytes.Buffer
	if err := g.templates.Index.Execute(&buf, indexContext{Site: s, Entries: entries}); err != nil {
		return &WriteError{Path: "index.html", Err: err}
	}
	return g.writeOutputFile("index.html", buf.Bytes())
}

// writeOutputFile writes one file into the staging tree, creating parents.
func (g *Generator) writeOutputFile(rel string, data []byte) error {
	path := filepath.Join(g.stageDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	slog.Debug("Wrote output file", logfields.Path(rel))
	return nil
}

// copyAssets copies every non-content file byte-for-byte, preserving its
// relative path, so images and other files referenced by posts resolve.
func (g *Generator) copyAssets(assets []content.Asset) error {
	for _, a := range assets {
		if err := g.copyAsset(a); err != nil {
			return err
		}
	}
	if len(assets) > 0 {
		slog.Debug("Copied assets", logfields.Count(len(assets)))
	}
	return nil
}

func (g *Generator) copyAsset(a content.Asset) error {
	src, err := os.Open(a.Path)
	if err != nil {
		return &WriteError{Path: a.Path, Err: err}
	}
	defer func() { _ = src.Close() }()

	dstPath := filepath.Join(g.stageDir, a.RelativePath)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return &WriteError{Path: dstPath, Err: err}
	}
	dst, err := os.Create(dstPath)
	if err != nil {
		return &WriteError{Path: dstPath, Err: err}
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return &WriteError{Path: dstPath, Err: err}
	}
	if err := dst.Close(); err != nil {
		return &WriteError{Path: dstPath, Err: err}
	}
	return nil
}

// beginStaging creates an isolated sibling staging directory for this build.
func (g *Generator) beginStaging() error {
	stage := g.outputDir + ".stage"
	// Clear leftovers from an interrupted earlier run.
	if err := os.RemoveAll(stage); err != nil {
		return err
	}
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return err
	}
	g.stageDir = stage
	slog.Debug("Initialized staging directory", slog.String("staging", stage), slog.String("final", g.outputDir))
	return nil
}

// finalizeStaging promotes the staging directory to the final output location:
// the existing output tree (if any) is moved aside, staging renamed into
// place, and the backup removed.
func (g *Generator) finalizeStaging() error {
	prev := g.outputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return &WriteError{Path: prev, Err: err}
	}
	if _, err := os.Stat(g.outputDir); err == nil {
		if err := os.Rename(g.outputDir, prev); err != nil {
			return &WriteError{Path: g.outputDir, Err: err}
		}
	}
	if err := os.Rename(g.stageDir, g.outputDir); err != nil {
		return &WriteError{Path: g.outputDir, Err: err}
	}
	g.stageDir = ""
	if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous output backup", logfields.Path(prev), logfields.Error(err))
	}
	return nil
}

// abortStaging removes the staging directory after a failed build so no
// orphaned temp trees accumulate next to the output.
func (g *Generator) abortStaging() {
	if g.stageDir == "" {
		return
	}
	dir := g.stageDir
	g.stageDir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", logfields.Path(dir), logfields.Error(err))
	}
}

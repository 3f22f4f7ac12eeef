// Package content discovers and reads source files under the content root.
//
// Markdown files become document candidates with their front matter split off;
// every other file is a static asset copied through to the output verbatim.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sssg/internal/frontmatter"
	"git.home.luguber.info/inful/sssg/internal/logfields"
)

// SourceFile is one discovered Markdown file with its front matter split off.
type SourceFile struct {
	Path           string // absolute path to the file
	RelativePath   string // path relative to the content root
	Identifier     string // relative path without extension, slash separated
	FrontMatter    map[string]string
	HasFrontMatter bool
	Body           []byte
	Warnings       []frontmatter.Warning
}

// Asset is a non-Markdown file to be copied into the output tree unmodified.
type Asset struct {
	Path         string
	RelativePath string
}

// Scan is the result of one pass over the content root.
//
// Issues collects front-matter parse failures across the whole scan so one
// invocation reports every broken file; read failures abort the scan instead.
type Scan struct {
	Files  []SourceFile
	Assets []Asset
	Issues []Issue
}

// Issue ties a malformed front-matter error to the file it came from.
type Issue struct {
	Path string
	Err  error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %v", i.Path, i.Err)
}

// ReadError indicates a file or directory under the content root could not be
// read. It is fatal for the whole build; partial sites are never published.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Loader enumerates and reads source files under a content root.
type Loader struct {
	root       string
	extensions map[string]struct{}
}

// NewLoader creates a loader for the given content root. extensions lists the
// file suffixes treated as documents (e.g. ".md"); matching is case
// insensitive.
func NewLoader(root string, extensions []string) *Loader {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Loader{root: root, extensions: exts}
}

// Load walks the content root and reads every candidate file.
//
// Enumeration is lexicographic by path (filepath.WalkDir order) so a scan is
// deterministic within a run. Hidden files and directories are skipped.
func (l *Loader) Load() (*Scan, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		return nil, &ReadError{Path: l.root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ReadError{Path: l.root, Err: fmt.Errorf("not a directory")}
	}

	scan := &Scan{}
	err = filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &ReadError{Path: path, Err: err}
		}
		if strings.HasPrefix(d.Name(), ".") && path != l.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return &ReadError{Path: path, Err: err}
		}

		if _, ok := l.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			scan.Assets = append(scan.Assets, Asset{Path: path, RelativePath: rel})
			return nil
		}

		file, err := l.readDocument(path, rel)
		if err != nil {
			var rerr *ReadError
			if errors.As(err, &rerr) {
				return err
			}
			scan.Issues = append(scan.Issues, Issue{Path: rel, Err: err})
			return nil
		}
		scan.Files = append(scan.Files, *file)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Content scan complete",
		logfields.Path(l.root),
		slog.Int("documents", len(scan.Files)),
		slog.Int("assets", len(scan.Assets)),
		slog.Int("issues", len(scan.Issues)))
	return scan, nil
}

func (l *Loader) readDocument(path, rel string) (*SourceFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	block, body, had, _, err := frontmatter.Split(raw)
	if err != nil {
		return nil, err
	}

	file := &SourceFile{
		Path:           path,
		RelativePath:   rel,
		Identifier:     Identifier(rel),
		HasFrontMatter: had,
		Body:           body,
	}

	if had {
		fields, warnings, err := frontmatter.Parse(block)
		if err != nil {
			return nil, err
		}
		file.FrontMatter = fields
		file.Warnings = warnings
		for _, w := range warnings {
			slog.Warn("Front matter warning",
				logfields.Path(rel),
				slog.Int("line", w.Line),
				logfields.Reason(w.Message))
		}
	} else {
		file.FrontMatter = map[string]string{}
	}

	return file, nil
}

// Identifier derives the stable document identifier from a path relative to
// the content root: the extension is dropped and separators normalized to
// forward slashes. Stable across builds so permalinks never move.
func Identifier(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

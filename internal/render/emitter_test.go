package render

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sssg/internal/content"
	"git.home.luguber.info/inful/sssg/internal/site"
)

// stubRenderer wraps the body in a marker so tests can assert injection
// without depending on any Markdown dialect.
type stubRenderer struct {
	failFor string
}

func (r *stubRenderer) Render(src []byte) ([]byte, error) {
	if r.failFor != "" && strings.Contains(string(src), r.failFor) {
		return nil, errors.New("boom")
	}
	return []byte("<p>" + strings.TrimSpace(string(src)) + "</p>"), nil
}

func writeTestFile(t *testing.T, dir, rel, data string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func testSite(docs ...site.Document) *site.Site {
	return &site.Site{
		Title:       "Test Blog",
		Description: "testing",
		BaseURL:     "https://blog.test",
		Documents:   docs,
	}
}

func doc(id, title, body string, date time.Time) site.Document {
	return site.Document{
		Identifier: id,
		Slug:       site.Slugify(id),
		Title:      title,
		Date:       date,
		Summary:    "about " + id,
		Body:       body,
		Source:     id + ".md",
	}
}

func mustTemplates(t *testing.T) *TemplateSet {
	t.Helper()
	ts, err := LoadTemplates("")
	require.NoError(t, err)
	return ts
}

func readOutput(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	return string(data)
}

func TestGenerateSite_WritesPagesIndexAndAssets(t *testing.T) {
	may := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	s := testSite(
		doc("hello", "Hi", "Body text", may),
		doc("notes/deep", "Deep", "Nested body", may.AddDate(0, 1, 0)),
	)

	assetDir := t.TempDir()
	writeTestFile(t, assetDir, "img/cat.png", "pngbytes")
	assets := []content.Asset{{Path: filepath.Join(assetDir, "img/cat.png"), RelativePath: filepath.Join("img", "cat.png")}}

	out := filepath.Join(t.TempDir(), "site")
	g := NewGenerator(out, &stubRenderer{}, mustTemplates(t))
	require.NoError(t, g.GenerateSite(s, assets))

	page := readOutput(t, out, "hello.html")
	require.Contains(t, page, "<p>Body text</p>")
	require.Contains(t, page, "Hi")
	require.Contains(t, page, "May 1, 2020")

	require.FileExists(t, filepath.Join(out, "notes", "deep.html"))

	index := readOutput(t, out, "index.html")
	require.Contains(t, index, `href="/hello.html"`)
	require.Contains(t, index, `href="/notes/deep.html"`)
	require.Contains(t, index, "about hello")

	require.Equal(t, "pngbytes", readOutput(t, out, filepath.Join("img", "cat.png")))

	// No leftover staging or backup directories.
	_, err := os.Stat(out + ".stage")
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(out + ".prev")
	require.True(t, os.IsNotExist(err))
}

func TestGenerateSite_RenderFailure_FailsBuildAndLeavesNoOutput(t *testing.T) {
	may := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	s := testSite(
		doc("good", "Good", "fine", may),
		doc("bad", "Bad", "explode here", may.AddDate(0, 0, 1)),
	)

	out := filepath.Join(t.TempDir(), "site")
	g := NewGenerator(out, &stubRenderer{failFor: "explode"}, mustTemplates(t))

	err := g.GenerateSite(s, nil)
	var failures RenderErrors
	require.ErrorAs(t, err, &failures)
	require.Len(t, failures, 1)
	require.Equal(t, "bad", failures[0].Document)

	// The failed build must not produce a deployable tree.
	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(out + ".stage")
	require.True(t, os.IsNotExist(statErr))
}

func TestGenerateSite_RenderFailure_PreservesPreviousOutput(t *testing.T) {
	may := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	out := filepath.Join(t.TempDir(), "site")

	good := testSite(doc("hello", "Hi", "v1", may))
	require.NoError(t, NewGenerator(out, &stubRenderer{}, mustTemplates(t)).GenerateSite(good, nil))

	bad := testSite(doc("hello", "Hi", "explode", may))
	err := NewGenerator(out, &stubRenderer{failFor: "explode"}, mustTemplates(t)).GenerateSite(bad, nil)
	require.Error(t, err)

	// Previous tree still intact.
	require.Contains(t, readOutput(t, out, "hello.html"), "<p>v1</p>")
}

func TestGenerateSite_ExistingOutput_ReplacedAtomically(t *testing.T) {
	may := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	out := filepath.Join(t.TempDir(), "site")

	require.NoError(t, NewGenerator(out, &stubRenderer{}, mustTemplates(t)).
		GenerateSite(testSite(doc("old-post", "Old", "old", may)), nil))
	require.NoError(t, NewGenerator(out, &stubRenderer{}, mustTemplates(t)).
		GenerateSite(testSite(doc("new-post", "New", "new", may)), nil))

	require.FileExists(t, filepath.Join(out, "new-post.html"))
	_, err := os.Stat(filepath.Join(out, "old-post.html"))
	require.True(t, os.IsNotExist(err), "stale page from the previous build survived")
}

func TestGenerateSite_Feed_ListsRecentPosts(t *testing.T) {
	may := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	s := testSite(
		doc("b", "Second", "x", may.AddDate(0, 0, 1)),
		doc("a", "First", "x", may),
	)

	out := filepath.Join(t.TempDir(), "site")
	g := NewGenerator(out, &stubRenderer{}, mustTemplates(t)).WithFeed(1)
	require.NoError(t, g.GenerateSite(s, nil))

	feed := readOutput(t, out, "feed.xml")
	require.Contains(t, feed, "<rss version=\"2.0\">")
	require.Contains(t, feed, "<link>https://blog.test/b.html</link>")
	require.Contains(t, feed, "Sat, 02 May 2020 00:00:00 +0000")
	require.NotContains(t, feed, "First", "feed limit not applied")
}

func TestGenerateSite_Idempotent_ByteIdenticalTrees(t *testing.T) {
	may := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	s := testSite(
		doc("hello", "Hi", "Body text", may),
		doc("more", "More", "Other body", may.AddDate(0, 2, 3)),
	)

	out := filepath.Join(t.TempDir(), "site")
	g := NewGenerator(out, &stubRenderer{}, mustTemplates(t)).WithFeed(20)

	require.NoError(t, g.GenerateSite(s, nil))
	first := treeDigest(t, out)

	require.NoError(t, g.GenerateSite(s, nil))
	require.Equal(t, first, treeDigest(t, out))
}

func TestGenerateSite_WorkerPool_MatchesSequentialOutput(t *testing.T) {
	may := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	var docs []site.Document
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		docs = append(docs, doc(id, strings.ToUpper(id), "body of "+id, may))
		may = may.AddDate(0, 0, -1)
	}
	s := testSite(docs...)

	seqOut := filepath.Join(t.TempDir(), "seq")
	require.NoError(t, NewGenerator(seqOut, &stubRenderer{}, mustTemplates(t)).GenerateSite(s, nil))

	parOut := filepath.Join(t.TempDir(), "par")
	require.NoError(t, NewGenerator(parOut, &stubRenderer{}, mustTemplates(t)).WithWorkers(4).GenerateSite(s, nil))

	require.Equal(t, treeDigest(t, seqOut), treeDigest(t, parOut))
}

func TestGenerateSite_WorkerPool_FailuresReportedDeterministically(t *testing.T) {
	may := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	s := testSite(
		doc("a", "A", "explode a", may),
		doc("b", "B", "fine", may.AddDate(0, 0, -1)),
		doc("c", "C", "explode c", may.AddDate(0, 0, -2)),
	)

	out := filepath.Join(t.TempDir(), "site")
	g := NewGenerator(out, &stubRenderer{failFor: "explode"}, mustTemplates(t)).WithWorkers(3)

	err := g.GenerateSite(s, nil)
	var failures RenderErrors
	require.ErrorAs(t, err, &failures)
	require.Len(t, failures, 2)
	require.Equal(t, "a", failures[0].Document)
	require.Equal(t, "c", failures[1].Document)
}

// treeDigest hashes every file path and content under root into one digest,
// ignoring names only (order normalized), so byte-identical trees compare equal.
func treeDigest(t *testing.T, root string) string {
	t.Helper()
	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		sum := sha256.Sum256(data)
		entries = append(entries, filepath.ToSlash(rel)+":"+hex.EncodeToString(sum[:]))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(entries)
	total := sha256.Sum256([]byte(strings.Join(entries, "\n")))
	return hex.EncodeToString(total[:])
}

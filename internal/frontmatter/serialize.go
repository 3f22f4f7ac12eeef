package frontmatter

import (
	"sort"
	"strconv"
	"strings"
)

// Serialize renders a front-matter mapping back into a complete document
// prefix: `---`, one `key = "value"` line per field, `---`, and one blank
// separator line before the body.
//
// Determinism: keys are emitted in sorted order so output is stable across
// runs. Serialize followed by Split+Parse yields the same mapping and body.
func Serialize(fields map[string]string, body []byte, style Style) []byte {
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	if len(fields) == 0 {
		return body
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("---" + nl)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(" = ")
		b.WriteString(strconv.Quote(fields[k]))
		b.WriteString(nl)
	}
	b.WriteString("---" + nl)
	b.WriteString(nl)

	out := make([]byte, 0, b.Len()+len(body))
	out = append(out, b.String()...)
	out = append(out, body...)
	return out
}

package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerialize_RoundTrip_YieldsSameMappingAndBody(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		body   string
	}{
		{"simple", map[string]string{"title": "Hi", "date": "May 1, 2020"}, "Body text\n"},
		{"empty body", map[string]string{"title": "Hi"}, ""},
		{"body with leading blank line", map[string]string{"title": "Hi"}, "\nindented start\n"},
		{"value with quotes", map[string]string{"summary": `say "hello"`}, "x\n"},
		{"no fields", map[string]string{}, "just a body\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Serialize(tc.fields, []byte(tc.body), Style{Newline: "\n"})

			block, body, _, _, err := Split(out)
			require.NoError(t, err)
			require.Equal(t, tc.body, string(body))

			fields, warnings, err := Parse(block)
			require.NoError(t, err)
			require.Empty(t, warnings)
			require.Equal(t, tc.fields, fields)
		})
	}
}

func TestSerialize_KeysSorted_OutputStable(t *testing.T) {
	fields := map[string]string{"zeta": "1", "alpha": "2", "mid": "3"}

	a := Serialize(fields, []byte("b\n"), Style{})
	b := Serialize(fields, []byte("b\n"), Style{})
	require.Equal(t, a, b)
	require.Equal(t, "---\nalpha = \"2\"\nmid = \"3\"\nzeta = \"1\"\n---\n\nb\n", string(a))
}

func TestSerialize_CRLFStyle_UsesCRLF(t *testing.T) {
	out := Serialize(map[string]string{"title": "Hi"}, []byte("b\r\n"), Style{Newline: "\r\n"})
	require.Equal(t, "---\r\ntitle = \"Hi\"\r\n---\r\n\r\nb\r\n", string(out))
}

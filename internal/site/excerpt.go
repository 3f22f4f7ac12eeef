package site

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	linkPattern   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	inlineMarkers = strings.NewReplacer("`", "", "**", "", "__", "", "*", "", "_", "")
)

// Excerpt derives a plain-text summary from a Markdown body: the first
// paragraph that is neither a heading nor a code fence, stripped of inline
// markup, whitespace collapsed, truncated to at most limit runes at a word
// boundary. Deterministic for a given body, so rebuilt output never drifts.
func Excerpt(body string, limit int) string {
	if limit <= 0 {
		return ""
	}

	paragraph := firstParagraph(body)
	if paragraph == "" {
		return ""
	}

	text := linkPattern.ReplaceAllString(paragraph, "$1")
	text = inlineMarkers.Replace(text)
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := limit
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = limit
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "…"
}

func firstParagraph(body string) string {
	inFence := false
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if trimmed == "" {
			if len(lines) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, trimmed)
	}
	return strings.Join(lines, " ")
}

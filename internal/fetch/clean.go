package fetch

import (
	"regexp"
	"strings"
)

// maxContentChars caps cleaned page text before it is stored on an
// evidence source.
const maxContentChars = 5000

var (
	blockTags = []string{"script", "style", "nav", "footer", "header", "iframe", "noscript"}
	tagRe     = regexp.MustCompile(`<[^>]+>`)
	titleRe   = regexp.MustCompile(`(?i)<title[^>]*>(.*?)</title>`)
	spaceRe   = regexp.MustCompile(`[ \t]+`)
	nlRe      = regexp.MustCompile(`\n{3,}`)
)

// ExtractTitle pulls the <title> text from an HTML document.
func ExtractTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// CleanHTML removes non-content blocks, strips tags, decodes common
// entities, and normalizes whitespace. Output is capped at
// maxContentChars.
func CleanHTML(html string) string {
	for _, tag := range blockTags {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	html = spaceRe.ReplaceAllString(html, " ")
	html = nlRe.ReplaceAllString(html, "\n\n")
	html = strings.TrimSpace(html)

	return Truncate(html, maxContentChars)
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	// Back off a partial rune at the boundary.
	for len(cut) > 0 && cut[len(cut)-1]&0xC0 == 0x80 {
		cut = cut[:len(cut)-1]
	}
	if len(cut) > 0 && cut[len(cut)-1] >= 0xC0 {
		cut = cut[:len(cut)-1]
	}
	return cut
}

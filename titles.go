package epubcore

import (
	"path"
	"regexp"
	"strings"
)

// titleMaxTokens is the maximum number of whitespace-separated tokens kept
// verbatim before truncation with an ellipsis.
const titleMaxTokens = 10

var titleTagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<h[1-6][^>]*>(.*?)</h[1-6]>`),
	regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`),
	regexp.MustCompile(`(?is)<div[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<a[^>]*>(.*?)</a>`),
}

var innerTagStrip = regexp.MustCompile(`(?s)<[^>]*>`)

// extractTitleFromHTML implements the HTML-derived title chain: scan for the
// first non-empty content inside h1..h6, then p, then div, then a (matched
// with regexes, not a DOM build); truncate to titleMaxTokens tokens; fall
// back to the file name with its extension removed.
func extractTitleFromHTML(htmlContent, fileName string) string {
	for _, re := range titleTagPatterns {
		for _, m := range re.FindAllStringSubmatch(htmlContent, -1) {
			candidate := cleanTitleText(m[1])
			if candidate != "" {
				return truncateTitle(candidate)
			}
		}
	}
	return stripExtension(fileName)
}

var basicEntityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&nbsp;", " ",
)

// decodeBasicEntities decodes the handful of named entities that show up in
// chapter titles; it is not a general entity decoder.
func decodeBasicEntities(s string) string {
	return basicEntityReplacer.Replace(s)
}

func cleanTitleText(raw string) string {
	stripped := innerTagStrip.ReplaceAllString(raw, "")
	stripped = decodeBasicEntities(stripped)
	return strings.TrimSpace(stripped)
}

func truncateTitle(s string) string {
	tokens := strings.Fields(s)
	if len(tokens) <= titleMaxTokens {
		return s
	}
	return strings.Join(tokens[:titleMaxTokens], " ") + "..."
}

// stripExtension removes a single trailing extension from a file name,
// e.g. "foo.xhtml" → "foo". Any directory prefix is also removed.
func stripExtension(fileName string) string {
	base := path.Base(fileName)
	if ext := path.Ext(base); ext != "" {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

package epubcore

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags is the set of tags that insert a newline during text extraction.
var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Div: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true, atom.Hr: true,
}

var skipTags = map[atom.Atom]bool{atom.Script: true, atom.Style: true}

// extractText renders chapter HTML as plain text, a richer companion to the
// regex-level extractTitleFromHTML: block elements produce line breaks,
// script/style content is skipped.
func extractText(htmlData []byte) (string, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))
	var buf strings.Builder
	skipDepth := 0
	lastWasNewline := true

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				return strings.TrimSpace(buf.String()), nil
			}
			return "", err
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipTags[a] {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}
			if blockTags[a] && buf.Len() > 0 && !lastWasNewline {
				buf.WriteByte('\n')
				lastWasNewline = true
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipTags[a] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := collapseWhitespace(string(tokenizer.Text()))
			if text != "" {
				buf.WriteString(text)
				lastWasNewline = strings.HasSuffix(text, "\n")
			}
		}
	}
}

func collapseWhitespace(s string) string {
	var buf strings.Builder
	inSpace := false
	hasNonSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inSpace = true
			continue
		}
		if inSpace && buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteRune(r)
		inSpace = false
		hasNonSpace = true
	}
	if !hasNonSpace {
		return ""
	}
	result := buf.String()
	if len(s) > 0 && isHTMLSpace(rune(s[0])) {
		result = " " + result
	}
	if inSpace {
		result += " "
	}
	return result
}

func isHTMLSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// extractBodyHTML parses htmlData and renders the inner HTML of <body>,
// stripping <script>/<style> elements and inline event-handler attributes.
func extractBodyHTML(htmlData []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(htmlData))
	if err != nil {
		return "", err
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return "", nil
	}
	cleanNode(body)

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if r := findElement(c, a); r != nil {
			return r
		}
	}
	return nil
}

// cleanNode removes script/style elements and strips on* event-handler
// attributes and javascript: URIs in place.
func cleanNode(n *html.Node) {
	var c, next *html.Node
	for c = n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && skipTags[c.DataAtom] {
			n.RemoveChild(c)
			continue
		}
		if c.Type == html.ElementNode {
			sanitizeAttrs(c)
		}
		cleanNode(c)
	}
}

func sanitizeAttrs(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// hasURIScheme reports whether s starts with a URI scheme like "http:" or
// "data:", per RFC 3986, and should be left untouched rather than resolved
// against the archive.
func hasURIScheme(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !((s[0] >= 'A' && s[0] <= 'Z') || (s[0] >= 'a' && s[0] <= 'z')) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ':' {
			return i > 1
		}
		if !(c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
			return false
		}
	}
	return false
}

// rewriteImagePaths rewrites <img src=...> and <image xlink:href=...>
// attributes in htmlData to archive-absolute paths resolved against base.
func rewriteImagePaths(htmlData []byte, basePath string) []byte {
	doc, err := html.Parse(bytes.NewReader(htmlData))
	if err != nil {
		return htmlData
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for i, a := range n.Attr {
				if (n.DataAtom == atom.Img && a.Key == "src") ||
					(strings.EqualFold(n.Data, "image") && (a.Key == "xlink:href" || a.Key == "href")) {
					if hasURIScheme(a.Val) {
						continue
					}
					if resolved := resolveRelativePath(basePath, a.Val); resolved != "" {
						n.Attr[i].Val = resolved
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return htmlData
	}
	return buf.Bytes()
}

// gutenbergPatterns are case-insensitive substrings that mark a Project
// Gutenberg license page.
var gutenbergPatterns = []string{
	"project gutenberg license",
	"gutenberg.org/license",
	"start of the project gutenberg license",
	"end of the project gutenberg license",
	"start of this project gutenberg ebook",
	"end of this project gutenberg ebook",
	"start of the project gutenberg ebook",
	"end of the project gutenberg ebook",
}

var gutenbergComboPatterns = [][2]string{
	{"project gutenberg", "terms of use"},
	{"full license", "gutenberg"},
}

// isGutenbergLicense reports whether htmlContent looks like a Project
// Gutenberg boilerplate license page.
func isGutenbergLicense(htmlContent string) bool {
	text, err := extractText([]byte(htmlContent))
	if err != nil {
		text = strings.ToLower(htmlContent)
	} else {
		text = strings.ToLower(text)
	}
	for _, pat := range gutenbergPatterns {
		if strings.Contains(text, pat) {
			return true
		}
	}
	for _, combo := range gutenbergComboPatterns {
		if strings.Contains(text, combo[0]) && strings.Contains(text, combo[1]) {
			return true
		}
	}
	return false
}

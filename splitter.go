package epubcore

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	wordStripTagsPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
	wordStripEntityPattern  = regexp.MustCompile(`&[^;\s]*;`)
	docDoctypePattern       = regexp.MustCompile(`(?is)<!DOCTYPE[^>]*>`)
	docHTMLOpenPattern      = regexp.MustCompile(`(?is)<html\b[^>]*>`)
	docHeadPattern          = regexp.MustCompile(`(?is)<head\b[^>]*>.*?</head\s*>`)
	docBodyOpenPattern      = regexp.MustCompile(`(?is)<body\b[^>]*>`)
	docBodyClosePattern     = regexp.MustCompile(`(?is)</body\s*>`)
	blockElementPattern     = regexp.MustCompile(`(?is)` + strings.Join([]string{
		`<p\b[^>]*>.*?</p\s*>`,
		`<blockquote\b[^>]*>.*?</blockquote\s*>`,
		`<div\b[^>]*>.*?</div\s*>`,
		`<h1\b[^>]*>.*?</h1\s*>`,
		`<h2\b[^>]*>.*?</h2\s*>`,
		`<h3\b[^>]*>.*?</h3\s*>`,
		`<h4\b[^>]*>.*?</h4\s*>`,
		`<h5\b[^>]*>.*?</h5\s*>`,
		`<h6\b[^>]*>.*?</h6\s*>`,
		`<section\b[^>]*>.*?</section\s*>`,
		`<article\b[^>]*>.*?</article\s*>`,
		`<aside\b[^>]*>.*?</aside\s*>`,
		`<pre\b[^>]*>.*?</pre\s*>`,
		`<li\b[^>]*>.*?</li\s*>`,
		`<tr\b[^>]*>.*?</tr\s*>`,
	}, "|"))
)

// countWords is the language-agnostic word counter the splitter and the
// threshold comparison both use: strip tags, strip entities, collapse
// whitespace, count non-empty tokens.
func countWords(htmlContent string) int {
	stripped := wordStripTagsPattern.ReplaceAllString(htmlContent, " ")
	stripped = wordStripEntityPattern.ReplaceAllString(stripped, " ")
	return len(strings.Fields(stripped))
}

// splitPartsNeeded returns ceil(words/threshold), minimum 1.
func splitPartsNeeded(words, threshold int) int {
	if threshold <= 0 || words <= threshold {
		return 1
	}
	return int(math.Ceil(float64(words) / float64(threshold)))
}

// isCompleteDocument reports whether content looks like a full XHTML
// document carrying <html>, <head> and <body>.
func isCompleteDocument(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "<html") && strings.Contains(lower, "<head") && strings.Contains(lower, "<body")
}

// docFrame holds the pieces of a complete document surrounding its
// body-content, so splitting never disturbs DOCTYPE/head/body attributes.
type docFrame struct {
	doctype  string
	htmlOpen string
	head     string
	bodyOpen string
	tail     string // content after </body>, including a trailing </html>; set only when more than </html> follows
	hadTail  bool
}

// disassembleDocument splits content into its frame and body-content. ok is
// false if content is not a complete document (per isCompleteDocument).
func disassembleDocument(content string) (frame docFrame, body string, ok bool) {
	if !isCompleteDocument(content) {
		return docFrame{}, content, false
	}

	frame.doctype = docDoctypePattern.FindString(content)
	frame.htmlOpen = docHTMLOpenPattern.FindString(content)
	frame.head = docHeadPattern.FindString(content)

	bodyOpenLoc := docBodyOpenPattern.FindStringIndex(content)
	bodyCloseLoc := docBodyClosePattern.FindStringIndex(content)
	if bodyOpenLoc == nil || bodyCloseLoc == nil || bodyCloseLoc[0] < bodyOpenLoc[1] {
		return docFrame{}, content, false
	}

	frame.bodyOpen = content[bodyOpenLoc[0]:bodyOpenLoc[1]]
	body = content[bodyOpenLoc[1]:bodyCloseLoc[0]]
	trailing := strings.TrimSpace(content[bodyCloseLoc[1]:])
	trailing = strings.TrimSuffix(trailing, "</html>")
	trailing = strings.TrimSpace(trailing)
	if trailing != "" {
		frame.tail = content[bodyCloseLoc[1]:]
		frame.hadTail = true
	}
	return frame, body, true
}

// reassembleDocument reconstructs a full document around one body part.
func reassembleDocument(frame docFrame, bodyPart string) string {
	var sb strings.Builder
	if frame.doctype != "" {
		sb.WriteString(frame.doctype)
		sb.WriteByte('\n')
	}
	sb.WriteString(frame.htmlOpen)
	sb.WriteString(frame.head)
	sb.WriteString(frame.bodyOpen)
	sb.WriteString(bodyPart)
	sb.WriteString("</body>")
	if frame.hadTail {
		sb.WriteString(frame.tail)
	} else if frame.htmlOpen != "" {
		sb.WriteString("\n</html>")
	}
	return sb.String()
}

// splitBodyContent splits body-content into at most `parts` chunks, streaming
// block-level elements so each part's word count approximates
// ceil(totalWords/parts); fewer chunks result when there are too few blocks.
// Falls back to equal character slices when no block-level elements are
// found.
func splitBodyContent(body string, parts int) []string {
	if parts <= 1 {
		return []string{body}
	}

	locs := blockElementPattern.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return splitByCharCount(body, parts)
	}

	prelude := body[:locs[0][0]]
	tail := body[locs[len(locs)-1][1]:]

	type block struct {
		text  string
		words int
	}
	blocks := make([]block, len(locs))
	totalWords := 0
	for i, loc := range locs {
		t := body[loc[0]:loc[1]]
		w := countWords(t)
		blocks[i] = block{text: t, words: w}
		totalWords += w
	}
	target := int(math.Ceil(float64(totalWords) / float64(parts)))
	if target < 1 {
		target = 1
	}

	var result []string
	var cur strings.Builder
	curWords := 0
	curBlocks := 0
	emitted := 0

	flush := func() {
		result = append(result, cur.String())
		cur.Reset()
		curWords = 0
		curBlocks = 0
		emitted++
	}

	for _, b := range blocks {
		if curBlocks >= 1 && curWords+b.words > target && emitted < parts-1 {
			flush()
		}
		if cur.Len() == 0 && len(result) == 0 && curBlocks == 0 {
			cur.WriteString(prelude)
		}
		cur.WriteString(b.text)
		curWords += b.words
		curBlocks++
	}
	cur.WriteString(tail)
	result = append(result, cur.String())

	return result
}

// splitByCharCount is the fallback when a chapter has no recognised
// block-level elements: equal character-count slices.
func splitByCharCount(body string, parts int) []string {
	n := len(body)
	if n == 0 {
		out := make([]string, parts)
		for i := range out {
			out[i] = ""
		}
		return out
	}
	chunk := int(math.Ceil(float64(n) / float64(parts)))
	var out []string
	for i := 0; i < n; i += chunk {
		end := i + chunk
		if end > n {
			end = n
		}
		out = append(out, body[i:end])
	}
	for len(out) < parts {
		out = append(out, "")
	}
	return out
}

// splitTitleBase resolves the base title used when titling split parts: the
// chapter's own title, else the caller-supplied parent title, else the file
// name minus extension, else "Chapter".
func splitTitleBase(ownTitle, parentTitle, fileName string) string {
	if strings.TrimSpace(ownTitle) != "" {
		return ownTitle
	}
	if strings.TrimSpace(parentTitle) != "" {
		return parentTitle
	}
	if fileName != "" {
		if s := stripExtension(fileName); s != "" {
			return s
		}
	}
	return "Chapter"
}

// splitPartTitle formats the i-th of n part titles (1-based i).
func splitPartTitle(base string, i, n int) string {
	return fmt.Sprintf("%s (%d/%d)", base, i, n)
}

// splitHTMLIntoParts splits htmlContent into n parts (n == 1 returns the
// content unchanged as a single-element slice), preserving document
// structure when present.
func splitHTMLIntoParts(htmlContent string, n int) []string {
	if n <= 1 {
		return []string{htmlContent}
	}
	frame, body, ok := disassembleDocument(htmlContent)
	bodyParts := splitBodyContent(body, n)
	if !ok {
		return bodyParts
	}
	out := make([]string, len(bodyParts))
	for i, bp := range bodyParts {
		out[i] = reassembleDocument(frame, bp)
	}
	return out
}

// splitChapters applies the ChapterSplitter to a list of sibling eager
// Chapters, flattening each over-threshold chapter into its split parts.
func splitChapters(chapters []Chapter, parentTitle string, threshold int) []Chapter {
	if len(chapters) == 0 {
		return chapters
	}
	var out []Chapter
	for _, c := range chapters {
		out = append(out, splitChapter(c, parentTitle, threshold)...)
	}
	return out
}

// splitChapter splits a single eager Chapter into 1..N parts. When the
// chapter is under threshold it is returned unchanged except that its
// subchapters still recurse through the splitter (the non-splitting pass).
func splitChapter(c Chapter, parentTitle string, threshold int) []Chapter {
	n := splitPartsNeeded(countWords(c.HTMLContent), threshold)
	if n <= 1 {
		resolvedTitle := c.Title
		if resolvedTitle == "" {
			resolvedTitle = splitTitleBase(c.Title, parentTitle, c.ContentFileName)
		}
		c.SubChapters = splitChapters(c.SubChapters, resolvedTitle, threshold)
		return []Chapter{c}
	}

	base := splitTitleBase(c.Title, parentTitle, c.ContentFileName)
	parts := splitHTMLIntoParts(c.HTMLContent, n)
	out := make([]Chapter, len(parts))
	for i, p := range parts {
		part := Chapter{
			Title:           splitPartTitle(base, i+1, len(parts)),
			ContentFileName: c.ContentFileName,
			HTMLContent:     p,
			IsLicense:       c.IsLicense,
		}
		if i == 0 {
			part.Anchor = c.Anchor
			part.SubChapters = splitChapters(c.SubChapters, base, threshold)
		}
		out[i] = part
	}
	return out
}

// splitChapterRefs is the lazy-variant counterpart of splitChapters: each
// over-threshold ChapterRef is read once and flattened into precomputed
// split-part refs.
func splitChapterRefs(chapters []ChapterRef, parentTitle string, threshold int) ([]ChapterRef, error) {
	if len(chapters) == 0 {
		return chapters, nil
	}
	var out []ChapterRef
	for _, c := range chapters {
		parts, err := splitChapterRef(c, parentTitle, threshold)
		if err != nil {
			return nil, err
		}
		out = append(out, parts...)
	}
	return out, nil
}

func splitChapterRef(c ChapterRef, parentTitle string, threshold int) ([]ChapterRef, error) {
	htmlContent, err := c.ReadHTML()
	if err != nil {
		return nil, err
	}
	n := splitPartsNeeded(countWords(htmlContent), threshold)
	if n <= 1 {
		resolvedTitle := c.Title
		if resolvedTitle == "" {
			resolvedTitle = splitTitleBase(c.Title, parentTitle, c.ContentFileName)
		}
		subs, err := splitChapterRefs(c.SubChapters, resolvedTitle, threshold)
		if err != nil {
			return nil, err
		}
		c.SubChapters = subs
		return []ChapterRef{c}, nil
	}

	base := splitTitleBase(c.Title, parentTitle, c.ContentFileName)
	parts := splitHTMLIntoParts(htmlContent, n)
	out := make([]ChapterRef, len(parts))
	for i, p := range parts {
		part := p
		ref := ChapterRef{
			Title:           splitPartTitle(base, i+1, len(parts)),
			ContentFileName: c.ContentFileName,
			precomputed:     &part,
		}
		if i == 0 {
			ref.Anchor = c.Anchor
			subs, err := splitChapterRefs(c.SubChapters, base, threshold)
			if err != nil {
				return nil, err
			}
			ref.SubChapters = subs
		}
		out[i] = ref
	}
	return out, nil
}

package epubcore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
)

// parseNavigation locates and parses the table of contents: NCX for EPUB2,
// the nav document for EPUB3. EPUB3 books lacking a nav item fall back to
// NCX if spine.toc names one.
func parseNavigation(ctx context.Context, archive Archive, opfPath string, pkg *Package) (Navigation, error) {
	if pkg.Version == EPUB3 {
		if navItem, ok := manifestItemByProperty(pkg.Manifest, "nav"); ok {
			nav, err := parseNav3(ctx, archive, opfPath, navItem, pkg)
			if err != nil {
				return Navigation{}, err
			}
			return nav, nil
		}
	}

	if pkg.Spine.Toc == "" {
		return Navigation{}, ErrMissingTOC
	}
	ncxItem, ok := manifestItemByIDFold(pkg.Manifest, pkg.Spine.Toc)
	if !ok {
		return Navigation{}, ErrMissingTOC
	}
	return parseNCXNavigation(ctx, archive, opfPath, ncxItem)
}

// --- NCX (EPUB 2) ---

const ncxNamespace = "http://www.daisy.org/z3986/2005/ncx/"

func parseNCXNavigation(ctx context.Context, archive Archive, opfPath string, ncxItem ManifestItem) (Navigation, error) {
	ncxPath := resolveRelativePath(opfPath, ncxItem.Href)
	if ncxPath == "" {
		return Navigation{}, ErrMissingTOC
	}
	data, err := archive.Read(ctx, ncxPath)
	if err != nil {
		return Navigation{}, fmt.Errorf("%w: read NCX %s: %v", ErrMissingTOC, ncxPath, err)
	}
	data = stripBOM(data)

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return Navigation{}, fmt.Errorf("%w: parse NCX: %v", ErrMalformedNCX, err)
	}
	root := doc.SelectElement("ncx")
	if root == nil {
		return Navigation{}, fmt.Errorf("%w: no <ncx> root element", ErrMalformedNCX)
	}

	var nav Navigation

	if headEl := findChildFold(root, "head"); headEl != nil {
		for _, m := range childrenFold(headEl, "meta") {
			name := attrFold(m, "name")
			content := attrFold(m, "content")
			if name == "" || content == "" {
				continue
			}
			nav.Head = append(nav.Head, NavMeta{Name: name, Content: content, Scheme: attrFold(m, "scheme")})
		}
	}

	if titleEl := findChildFold(root, "docTitle"); titleEl != nil {
		nav.DocTitle = navTextChildren(titleEl)
	}

	for _, authEl := range childrenFold(root, "docAuthor") {
		nav.DocAuthors = append(nav.DocAuthors, navTextChildren(authEl))
	}

	if navMapEl := findChildFold(root, "navMap"); navMapEl != nil {
		points, err := parseNCXNavPoints(childrenFold(navMapEl, "navPoint"), ncxPath)
		if err != nil {
			return Navigation{}, err
		}
		nav.NavMap = points
	}

	if pageListEl := findChildFold(root, "pageList"); pageListEl != nil {
		targets, err := parseNCXNavPoints(childrenFold(pageListEl, "pageTarget"), ncxPath)
		if err != nil {
			return Navigation{}, err
		}
		nav.PageList = targets
	}

	for _, navListEl := range childrenFold(root, "navList") {
		label := ""
		if lbl := findChildFold(navListEl, "navLabel"); lbl != nil {
			label = navTextOf(lbl)
		}
		targets, err := parseNCXNavPoints(childrenFold(navListEl, "navTarget"), ncxPath)
		if err != nil {
			return Navigation{}, err
		}
		nav.NavLists = append(nav.NavLists, NavList{Label: label, Items: targets})
	}

	return nav, nil
}

// playOrderInt parses an NCX playOrder attribute, defaulting to 0 when
// absent or non-numeric; order is advisory and never rejects a document.
func playOrderInt(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// navTextOf returns the trimmed text of the first <text> child.
func navTextOf(el *etree.Element) string {
	if t := findChildFold(el, "text"); t != nil {
		return strings.TrimSpace(t.Text())
	}
	return ""
}

// navTextChildren returns the trimmed text of every <text> child, in order.
func navTextChildren(el *etree.Element) []string {
	var out []string
	for _, t := range childrenFold(el, "text") {
		if v := strings.TrimSpace(t.Text()); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseNCXNavPoints converts a slice of navPoint/pageTarget/navTarget
// elements into NavPoints, recursing into nested navPoint children. Each
// point requires an id, at least one non-empty navLabel/text, and exactly
// one content@src.
func parseNCXNavPoints(points []*etree.Element, ncxPath string) ([]NavPoint, error) {
	if len(points) == 0 {
		return nil, nil
	}
	out := make([]NavPoint, 0, len(points))
	for _, p := range points {
		id := attrFold(p, "id")
		if id == "" {
			return nil, fmt.Errorf("%w: navPoint missing id", ErrMalformedNCX)
		}

		var labels []string
		for _, lbl := range childrenFold(p, "navLabel") {
			if v := navTextOf(lbl); v != "" {
				labels = append(labels, v)
			}
		}
		if len(labels) == 0 {
			return nil, parseErr(ErrMalformedNCX, id)
		}

		contentEls := childrenFold(p, "content")
		if len(contentEls) != 1 {
			return nil, parseErr(ErrMalformedNCX, id)
		}
		src := strings.TrimSpace(attrFold(contentEls[0], "src"))
		resolvedSrc := resolveHrefPreservingAnchor(ncxPath, src)
		if resolvedSrc == "" {
			resolvedSrc = src
		}

		np := NavPoint{
			ID:        id,
			Class:     attrFold(p, "class"),
			PlayOrder: playOrderInt(attrFold(p, "playOrder")),
			Labels:    labels,
			Content:   NavContent{Source: resolvedSrc, ID: attrFold(contentEls[0], "id")},
		}

		children, err := parseNCXNavPoints(childrenFold(p, "navPoint"), ncxPath)
		if err != nil {
			return nil, err
		}
		np.Children = children

		out = append(out, np)
	}
	return out, nil
}

// --- Nav document (EPUB 3) ---

func parseNav3(ctx context.Context, archive Archive, opfPath string, navItem ManifestItem, pkg *Package) (Navigation, error) {
	navPath := resolveRelativePath(opfPath, navItem.Href)
	if navPath == "" {
		return Navigation{}, ErrMissingTOC
	}
	data, err := archive.Read(ctx, navPath)
	if err != nil {
		return Navigation{}, fmt.Errorf("%w: read nav document %s: %v", ErrMissingTOC, navPath, err)
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return Navigation{}, fmt.Errorf("%w: parse nav document: %v", ErrMalformedNav3, err)
	}

	tocEntryPath := navPath

	// Pick out the toc/landmarks nav elements by epub:type; when nothing
	// carries epub:type="toc", the <ol> child of the very first <nav> in the
	// document is used as the implicit toc (none if that <nav> has no <ol>).
	var toc, landmarks []NavPoint
	var firstNav *html.Node
	var findNavs func(*html.Node)
	findNavs = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "nav" {
			if firstNav == nil {
				firstNav = n
			}
			if hasEpubTypeToken(n, "landmarks") {
				if ol := firstChildElement(n, "ol"); ol != nil {
					landmarks = parseNav3OL(ol, tocEntryPath)
				}
			}
			if hasEpubTypeToken(n, "toc") {
				if ol := firstChildElement(n, "ol"); ol != nil {
					toc = parseNav3OL(ol, tocEntryPath)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findNavs(c)
		}
	}
	findNavs(doc)

	if toc == nil && firstNav != nil {
		if ol := firstChildElement(firstNav, "ol"); ol != nil {
			toc = parseNav3OL(ol, tocEntryPath)
		}
	}

	var docTitle []string
	for _, t := range pkg.Metadata.Titles {
		if t != "" {
			docTitle = append(docTitle, t)
		}
	}

	return Navigation{
		DocTitle:  docTitle,
		NavMap:    toc,
		Landmarks: landmarks,
	}, nil
}

func hasEpubTypeToken(n *html.Node, token string) bool {
	for _, a := range n.Attr {
		if a.Key == "epub:type" || a.Key == "type" {
			for _, t := range strings.Fields(a.Val) {
				if t == token {
					return true
				}
			}
		}
	}
	return false
}

func firstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func parseNav3OL(ol *html.Node, tocEntryPath string) []NavPoint {
	var items []NavPoint
	for c := ol.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			items = append(items, parseNav3LI(c, tocEntryPath))
		}
	}
	return items
}

func parseNav3LI(li *html.Node, tocEntryPath string) NavPoint {
	var np NavPoint
	var href, label string
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "a":
			if href == "" {
				href = nodeAttr(c, "href")
				label = strings.TrimSpace(nodeText(c))
			}
		case "span":
			if label == "" {
				label = strings.TrimSpace(nodeText(c))
			}
		case "ol":
			np.Children = parseNav3OL(c, tocEntryPath)
		}
	}
	if label != "" {
		np.Labels = []string{label}
	}
	if href != "" {
		np.Content = NavContent{Source: resolveNav3Href(tocEntryPath, href)}
	}
	return np
}

// resolveNav3Href implements the spec's href resolution rule: if href
// already starts with the toc entry's directory prefix, keep it verbatim;
// otherwise resolve it relative to the nav document's location. The anchor,
// if any, is carried through untouched by resolveHrefPreservingAnchor.
func resolveNav3Href(tocEntryPath, href string) string {
	prefix := dirPrefix(tocEntryPath)
	if prefix != "" && strings.HasPrefix(href, prefix) {
		return href
	}
	if resolved := resolveHrefPreservingAnchor(tocEntryPath, href); resolved != "" {
		return resolved
	}
	return href
}

// resolveHrefPreservingAnchor resolves the file portion of href (the part
// before any '#') against basePath, then reattaches the anchor verbatim.
// resolveRelativePath alone would fold a literal '#fragment' into the path.
func resolveHrefPreservingAnchor(basePath, href string) string {
	base, anchor := href, ""
	if i := strings.IndexByte(href, '#'); i >= 0 {
		base, anchor = href[:i], href[i:]
	}
	resolved := resolveRelativePath(basePath, base)
	if resolved == "" {
		return ""
	}
	return resolved + anchor
}

func dirPrefix(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i+1]
	}
	return ""
}

func nodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

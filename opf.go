package epubcore

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// parsePackage parses OPF XML into a Package. Child-element dispatch within
// <metadata> is case-insensitive on local name (some real-world EPUBs emit
// "Title"/"DC:Creator"/etc.), which is why this uses beevik/etree's element
// walk instead of encoding/xml struct tags: etree exposes each child's local
// tag name directly so we can fold case ourselves.
func parsePackage(data []byte) (*Package, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: parse OPF: %v", ErrMalformedMetadata, err)
	}

	root := doc.SelectElement("package")
	if root == nil {
		return nil, fmt.Errorf("%w: no <package> root element", ErrMalformedMetadata)
	}

	pkg := &Package{}

	switch v := root.SelectAttrValue("version", "2.0"); v {
	case "2.0":
		pkg.Version = EPUB2
	case "3.0":
		pkg.Version = EPUB3
	default:
		return nil, parseErr(ErrUnsupportedVersion, v)
	}

	if metaEl := findChildFold(root, "metadata"); metaEl != nil {
		md, err := parseMetadata(metaEl, pkg.Version)
		if err != nil {
			return nil, err
		}
		pkg.Metadata = md
	}

	if manEl := findChildFold(root, "manifest"); manEl != nil {
		manifest, err := parseManifest(manEl)
		if err != nil {
			return nil, err
		}
		pkg.Manifest = manifest
	}

	if spineEl := findChildFold(root, "spine"); spineEl != nil {
		spine, err := parseSpine(spineEl)
		if err != nil {
			return nil, err
		}
		pkg.Spine = spine
	} else {
		return nil, fmt.Errorf("%w: no <spine> element", ErrMalformedSpine)
	}

	if guideEl := findChildFold(root, "guide"); guideEl != nil {
		guide, err := parseGuide(guideEl)
		if err != nil {
			return nil, err
		}
		pkg.Guide = &guide
	}

	return pkg, nil
}

// findChildFold returns the first direct child of el whose local tag name
// matches name case-insensitively.
func findChildFold(el *etree.Element, name string) *etree.Element {
	for _, c := range el.ChildElements() {
		if strings.EqualFold(c.Tag, name) {
			return c
		}
	}
	return nil
}

// childrenFold returns all direct children of el whose local tag name
// matches name case-insensitively.
func childrenFold(el *etree.Element, name string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if strings.EqualFold(c.Tag, name) {
			out = append(out, c)
		}
	}
	return out
}

func attrFold(el *etree.Element, name string) string {
	for _, a := range el.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Value
		}
	}
	return ""
}

func parseManifest(el *etree.Element) (Manifest, error) {
	var m Manifest
	for _, item := range childrenFold(el, "item") {
		id := attrFold(item, "id")
		href := attrFold(item, "href")
		mediaType := attrFold(item, "media-type")
		if id == "" || href == "" || mediaType == "" {
			detail := id
			if detail == "" {
				detail = href
			}
			return Manifest{}, parseErr(ErrMalformedManifest, detail)
		}
		var props []string
		if p := attrFold(item, "properties"); p != "" {
			props = strings.Fields(p)
		}
		m.Items = append(m.Items, ManifestItem{
			ID:                id,
			Href:              href,
			MediaType:         strings.ToLower(strings.TrimSpace(mediaType)),
			MediaOverlay:      attrFold(item, "media-overlay"),
			Fallback:          attrFold(item, "fallback"),
			FallbackStyle:     attrFold(item, "fallback-style"),
			RequiredNamespace: attrFold(item, "required-namespace"),
			RequiredModules:   attrFold(item, "required-modules"),
			Properties:        props,
		})
	}
	return m, nil
}

func parseSpine(el *etree.Element) (Spine, error) {
	s := Spine{Toc: attrFold(el, "toc"), LTR: true}
	switch strings.ToLower(strings.TrimSpace(attrFold(el, "page-progression-direction"))) {
	case "rtl":
		s.LTR = false
	default:
		s.LTR = true
	}
	for _, ref := range childrenFold(el, "itemref") {
		idref := attrFold(ref, "idref")
		if idref == "" {
			return Spine{}, parseErr(ErrMalformedSpine, "itemref missing idref")
		}
		// linear="no" => not linear; absent or "yes" (or any other value)
		// is historically treated as linear — preserved deliberately.
		isLinear := strings.ToLower(strings.TrimSpace(attrFold(ref, "linear"))) != "no"
		s.ItemRefs = append(s.ItemRefs, SpineItemRef{IDRef: idref, IsLinear: isLinear})
	}
	return s, nil
}

func parseGuide(el *etree.Element) (Guide, error) {
	var g Guide
	for _, ref := range childrenFold(el, "reference") {
		typ := attrFold(ref, "type")
		href := attrFold(ref, "href")
		if typ == "" || href == "" {
			return Guide{}, parseErr(ErrMalformedGuide, typ+href)
		}
		g.References = append(g.References, GuideReference{
			Type:  typ,
			Title: attrFold(ref, "title"),
			Href:  href,
		})
	}
	return g, nil
}

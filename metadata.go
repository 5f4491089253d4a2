package epubcore

import (
	"strings"

	"github.com/beevik/etree"
)

// parseMetadata converts an OPF <metadata> element into a Metadata value.
// Child-element dispatch is case-insensitive on local name; unknown
// elements are ignored.
func parseMetadata(el *etree.Element, version Version) (Metadata, error) {
	var md Metadata

	for _, c := range el.ChildElements() {
		local := localName(c.Tag)
		switch strings.ToLower(local) {
		case "title":
			if v := text(c); v != "" {
				md.Titles = append(md.Titles, v)
			}
		case "creator":
			md.Creators = append(md.Creators, parseCreator(c))
		case "contributor":
			md.Contributors = append(md.Contributors, parseCreator(c))
		case "subject":
			if v := text(c); v != "" {
				md.Subjects = append(md.Subjects, v)
			}
		case "publisher":
			if v := text(c); v != "" {
				md.Publishers = append(md.Publishers, v)
			}
		case "date":
			md.Dates = append(md.Dates, DateEntry{Value: text(c), Event: attrFold(c, "event")})
		case "identifier":
			md.Identifiers = append(md.Identifiers, Identifier{
				Value:  text(c),
				ID:     attrFold(c, "id"),
				Scheme: attrFold(c, "scheme"),
			})
		case "language":
			if v := text(c); v != "" {
				md.Languages = append(md.Languages, v)
			}
		case "relation":
			if v := text(c); v != "" {
				md.Relations = append(md.Relations, v)
			}
		case "coverage":
			if v := text(c); v != "" {
				md.Coverages = append(md.Coverages, v)
			}
		case "rights":
			if v := text(c); v != "" {
				md.Rights = append(md.Rights, v)
			}
		case "type":
			if v := text(c); v != "" {
				md.Types = append(md.Types, v)
			}
		case "format":
			if v := text(c); v != "" {
				md.Formats = append(md.Formats, v)
			}
		case "source":
			if v := text(c); v != "" {
				md.Sources = append(md.Sources, v)
			}
		case "description":
			if md.Description == "" {
				md.Description = text(c)
			}
		case "meta":
			md.Meta = append(md.Meta, parseMetaEntry(c, version))
		default:
			// Unknown element: ignored per spec.
		}
	}

	return md, nil
}

// localName strips an "ns:" prefix some parsers leave in Tag.
func localName(tag string) string {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

func text(el *etree.Element) string {
	return strings.TrimSpace(el.Text())
}

func parseCreator(el *etree.Element) Creator {
	return Creator{
		Value:  text(el),
		Role:   attrFold(el, "role"),
		FileAs: attrFold(el, "file-as"),
	}
}

func parseMetaEntry(el *etree.Element, version Version) MetaEntry {
	if version == EPUB2 {
		return MetaEntry{
			Name:    attrFold(el, "name"),
			Content: attrFold(el, "content"),
		}
	}

	m := MetaEntry{
		ID:       attrFold(el, "id"),
		Refines:  attrFold(el, "refines"),
		Property: attrFold(el, "property"),
		Scheme:   attrFold(el, "scheme"),
		Content:  text(el),
	}
	// v3 allows a free attribute bag beyond the well-known attrs above.
	known := map[string]bool{"id": true, "refines": true, "property": true, "scheme": true}
	for _, a := range el.Attr {
		if !known[strings.ToLower(a.Key)] {
			if m.Attrs == nil {
				m.Attrs = make(map[string]string)
			}
			m.Attrs[a.Key] = a.Value
		}
	}
	// EPUB3 documents keep the OPF2-style <meta name="cover" content="..."/>
	// compat form for reader fallback: no property attribute, just name/
	// content. Populate Name/Content from those attrs so findMetaByName
	// still matches it the same way it does under EPUB2.
	if m.Property == "" {
		if name := attrFold(el, "name"); name != "" {
			m.Name = name
			m.Content = attrFold(el, "content")
		}
	}
	return m
}

// findMetaByName returns the first v2-shape <meta name=.../> entry whose
// name matches (case-insensitive), or false.
func findMetaByName(md Metadata, name string) (MetaEntry, bool) {
	for _, m := range md.Meta {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return MetaEntry{}, false
}

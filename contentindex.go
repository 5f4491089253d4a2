package epubcore

import (
	"context"
	"strings"
)

// classifyMime maps a lower-cased manifest media-type to its ContentKind and
// destination collection per the MIME classifier table.
func classifyMime(mimeType string) (kind ContentKind, collection string) {
	switch mimeType {
	case "application/xhtml+xml", "text/html":
		return KindText, "html"
	case "text/css":
		return KindText, "css"
	case "application/x-dtbook+xml", "application/x-dtbncx+xml", "text/x-oeb1-document", "application/xml", "text/x-oeb1-css":
		return KindText, "allFiles"
	case "image/gif", "image/jpeg", "image/png", "image/svg+xml", "image/bmp":
		return KindByte, "images"
	case "font/truetype", "font/opentype", "application/vnd.ms-opentype":
		return KindByte, "fonts"
	default:
		return KindByte, "other"
	}
}

// buildContentIndex builds a ContentIndex from a manifest, resolving every
// item's href to an archive path relative to opfDir and producing a
// ContentFileRef for each.
func buildContentIndex(ctx context.Context, archive Archive, opfPath string, manifest Manifest) ContentIndex {
	idx := ContentIndex{
		HTML:     make(map[string]ContentFileRef),
		CSS:      make(map[string]ContentFileRef),
		Images:   make(map[string]ContentFileRef),
		Fonts:    make(map[string]ContentFileRef),
		AllFiles: make(map[string]ContentFileRef),
	}

	for _, item := range manifest.Items {
		resolved := resolveRelativePath(opfPath, item.Href)
		if resolved == "" {
			continue
		}
		mimeType := strings.ToLower(strings.TrimSpace(item.MediaType))
		kind, collection := classifyMime(mimeType)
		ref := newContentFileRef(ctx, archive, resolved, mimeType, kind)

		// Keyed by the resolved archive-absolute path (not the raw manifest
		// href) so that NCX/nav href resolution and spine resolution, which
		// both produce archive-absolute paths, can look items up directly.
		idx.AllFiles[resolved] = ref
		switch collection {
		case "html":
			idx.HTML[resolved] = ref
		case "css":
			idx.CSS[resolved] = ref
		case "images":
			idx.Images[resolved] = ref
		case "fonts":
			idx.Fonts[resolved] = ref
		}
	}
	return idx
}

// manifestItemByID looks up a manifest item by id.
func manifestItemByID(m Manifest, id string) (ManifestItem, bool) {
	for _, it := range m.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ManifestItem{}, false
}

// manifestItemByIDFold is the case-insensitive variant used for spine.toc
// (NCX) resolution, where real-world EPUBs sometimes vary id casing.
func manifestItemByIDFold(m Manifest, id string) (ManifestItem, bool) {
	for _, it := range m.Items {
		if strings.EqualFold(it.ID, id) {
			return it, true
		}
	}
	return ManifestItem{}, false
}

// manifestItemByProperty returns the first item whose properties list
// contains prop.
func manifestItemByProperty(m Manifest, prop string) (ManifestItem, bool) {
	for _, it := range m.Items {
		if it.HasProperty(prop) {
			return it, true
		}
	}
	return ManifestItem{}, false
}

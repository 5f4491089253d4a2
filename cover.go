package epubcore

import (
	"strings"
)

// locateCover implements the CoverLocator: meta[name=cover] → manifest id →
// image, falling back to the first image in the content index when enabled.
// opfPath resolves manifest hrefs to the archive-absolute paths ContentIndex
// is keyed by.
func locateCover(pkg *Package, opfPath string, content ContentIndex, fallbackToFirstImage bool) (*Cover, error) {
	if meta, ok := findMetaByName(pkg.Metadata, "cover"); ok {
		if item, ok := manifestItemByID(pkg.Manifest, meta.Content); ok {
			if ref, ok := content.Images[resolveRelativePath(opfPath, item.Href)]; ok {
				return readCover(ref)
			}
		}
	}

	if !fallbackToFirstImage {
		return nil, nil
	}

	// Manifest order, not map iteration order, determines "first image".
	for _, item := range pkg.Manifest.Items {
		if _, collection := classifyMime(strings.ToLower(strings.TrimSpace(item.MediaType))); collection == "images" {
			if ref, ok := content.Images[resolveRelativePath(opfPath, item.Href)]; ok {
				return readCover(ref)
			}
		}
	}
	return nil, nil
}

func readCover(ref ContentFileRef) (*Cover, error) {
	data, err := ref.Bytes()
	if err != nil {
		return nil, err
	}
	return &Cover{MediaType: ref.MimeType(), Data: data}, nil
}

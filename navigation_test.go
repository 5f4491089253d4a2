package epubcore

import (
	"context"
	"testing"
)

func TestParseNavigationNCX(t *testing.T) {
	ncx := `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/">
  <head>
    <meta name="dtb:uid" content="urn:uuid:test"/>
  </head>
  <docTitle><text>Test Book</text></docTitle>
  <navMap>
    <navPoint id="np1" playOrder="1">
      <navLabel><text>Chapter 1</text></navLabel>
      <content src="chapter1.xhtml"/>
      <navPoint id="np1-1" playOrder="2">
        <navLabel><text>Section 1.1</text></navLabel>
        <content src="chapter1.xhtml#sec1"/>
      </navPoint>
    </navPoint>
  </navMap>
</ncx>`

	zr := buildTestZip(t, map[string]string{
		"OEBPS/toc.ncx": ncx,
	})
	archive := newZipArchive(zr, nil)

	pkg := &Package{
		Version: EPUB2,
		Manifest: Manifest{Items: []ManifestItem{
			{ID: "ncx", Href: "toc.ncx", MediaType: "application/x-dtbncx+xml"},
		}},
		Spine: Spine{Toc: "ncx"},
	}

	nav, err := parseNavigation(context.Background(), archive, "OEBPS/content.opf", pkg)
	if err != nil {
		t.Fatalf("parseNavigation: %v", err)
	}
	if len(nav.NavMap) != 1 || nav.NavMap[0].Content.Source != "OEBPS/chapter1.xhtml" {
		t.Fatalf("NavMap = %+v", nav.NavMap)
	}
	if len(nav.NavMap[0].Children) != 1 {
		t.Fatalf("expected nested navPoint, got %+v", nav.NavMap[0])
	}
	if nav.NavMap[0].Labels[0] != "Chapter 1" {
		t.Errorf("Labels = %+v", nav.NavMap[0].Labels)
	}
}

func TestParseNavigationMissingTOC(t *testing.T) {
	pkg := &Package{Version: EPUB2, Spine: Spine{}}
	_, err := parseNavigation(context.Background(), nil, "OEBPS/content.opf", pkg)
	if err != ErrMissingTOC {
		t.Fatalf("expected ErrMissingTOC, got %v", err)
	}
}

func TestParseNav3WithLandmarks(t *testing.T) {
	navDoc := `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<body>
  <nav epub:type="toc">
    <ol>
      <li><a href="chapter1.xhtml">Chapter 1</a>
        <ol><li><a href="chapter1.xhtml#sec1">Section 1.1</a></li></ol>
      </li>
    </ol>
  </nav>
  <nav epub:type="landmarks">
    <ol>
      <li><a epub:type="cover" href="cover.xhtml">Cover</a></li>
    </ol>
  </nav>
</body>
</html>`

	zr := buildTestZip(t, map[string]string{
		"OEBPS/nav.xhtml": navDoc,
	})
	archive := newZipArchive(zr, nil)

	pkg := &Package{
		Version:  EPUB3,
		Metadata: Metadata{Titles: []string{"Test Book"}},
		Manifest: Manifest{Items: []ManifestItem{
			{ID: "nav", Href: "nav.xhtml", Properties: []string{"nav"}},
		}},
	}

	nav, err := parseNavigation(context.Background(), archive, "OEBPS/content.opf", pkg)
	if err != nil {
		t.Fatalf("parseNavigation: %v", err)
	}
	if len(nav.NavMap) != 1 || nav.NavMap[0].Labels[0] != "Chapter 1" {
		t.Fatalf("NavMap = %+v", nav.NavMap)
	}
	if len(nav.NavMap[0].Children) != 1 {
		t.Fatalf("expected nested nav entry, got %+v", nav.NavMap[0])
	}
	if len(nav.Landmarks) != 1 || nav.Landmarks[0].Labels[0] != "Cover" {
		t.Fatalf("Landmarks = %+v", nav.Landmarks)
	}
	if nav.Landmarks[0].Content.Source != "OEBPS/cover.xhtml" {
		t.Errorf("Landmarks[0].Content.Source = %q", nav.Landmarks[0].Content.Source)
	}
}

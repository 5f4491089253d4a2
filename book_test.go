package epubcore

import (
	"strings"
	"testing"
)

func epub3Fixture() map[string]string {
	opf := `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Jane Doe</dc:creator>
    <dc:identifier id="bookid">urn:uuid:test</dc:identifier>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="c1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
    <item id="cover-img" href="images/cover.jpg" media-type="image/jpeg"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
  </spine>
</package>`

	nav := `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<body>
  <nav epub:type="toc">
    <ol>
      <li><a href="chapter1.xhtml">Chapter One</a></li>
      <li><a href="chapter2.xhtml">Chapter Two</a></li>
    </ol>
  </nav>
</body>
</html>`

	return map[string]string{
		"mimetype":                  "application/epub+zip",
		"META-INF/container.xml":    testContainerXML,
		"OEBPS/content.opf":         opf,
		"OEBPS/nav.xhtml":           nav,
		"OEBPS/chapter1.xhtml":      `<html><body><h1>Chapter One</h1><p>First chapter text.</p></body></html>`,
		"OEBPS/chapter2.xhtml":      `<html><body><h1>Chapter Two</h1><p>Second chapter text.</p></body></html>`,
		"OEBPS/images/cover.jpg":    "fake-jpeg-bytes",
	}
}

func TestOpenEagerBook(t *testing.T) {
	path := buildTestEPubFile(t, epub3Fixture())
	book, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	if book.Title != "Test Book" {
		t.Errorf("Title = %q", book.Title)
	}
	if book.Author != "Jane Doe" {
		t.Errorf("Author = %q", book.Author)
	}
	if len(book.Chapters) != 2 {
		t.Fatalf("Chapters = %d, want 2", len(book.Chapters))
	}
	if book.Chapters[0].Title != "Chapter One" || book.Chapters[1].Title != "Chapter Two" {
		t.Errorf("chapter titles = %q, %q", book.Chapters[0].Title, book.Chapters[1].Title)
	}
	if book.CoverImage == nil || string(book.CoverImage.Data) != "fake-jpeg-bytes" {
		t.Errorf("CoverImage = %+v", book.CoverImage)
	}
}

func TestNewReaderEagerBook(t *testing.T) {
	data := buildTestZipBytes(t, epub3Fixture())
	book, err := NewReader(data)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer book.Close()
	if len(book.Chapters) != 2 {
		t.Fatalf("Chapters = %d, want 2", len(book.Chapters))
	}
}

func TestBookContentChaptersExcludesLicense(t *testing.T) {
	files := epub3Fixture()
	files["OEBPS/chapter1.xhtml"] = `<p>START OF THE PROJECT GUTENBERG EBOOK</p>`
	path := buildTestEPubFile(t, files)
	book, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	content := book.ContentChapters()
	for _, c := range content {
		if c.IsLicense {
			t.Errorf("ContentChapters() included a license chapter: %q", c.Title)
		}
	}
	if len(content) != 1 {
		t.Fatalf("ContentChapters() = %d, want 1 (license chapter excluded)", len(content))
	}
}

func TestBookSplitEnabled(t *testing.T) {
	files := epub3Fixture()
	body := "<html><body>" + repeatParagraphs(21, 500) + "</body></html>"
	files["OEBPS/chapter1.xhtml"] = body
	path := buildTestEPubFile(t, files)

	book, err := Open(path, WithSplitEnabled(true), WithSplitThreshold(3000))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	found := false
	for _, c := range book.Chapters {
		if strings.Contains(c.Title, "(1/4)") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a split part titled with (1/4), chapters: %+v", titlesOf(book.Chapters))
	}
}

func TestBookRewritesImagePathsInChapterHTML(t *testing.T) {
	files := epub3Fixture()
	files["OEBPS/chapter1.xhtml"] = `<html><body><h1>Chapter One</h1><img src="images/cover.jpg"/></body></html>`
	path := buildTestEPubFile(t, files)
	book, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	if !strings.Contains(book.Chapters[0].HTMLContent, "OEBPS/images/cover.jpg") {
		t.Errorf("chapter HTML image src not rewritten to archive-absolute path: %q", book.Chapters[0].HTMLContent)
	}
}

func titlesOf(chapters []Chapter) []string {
	out := make([]string, len(chapters))
	for i, c := range chapters {
		out[i] = c.Title
	}
	return out
}

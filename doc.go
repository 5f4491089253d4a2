// Package epubcore reads EPUB 2 and EPUB 3 publications and exposes them as
// a navigable, structured document model: metadata, manifest, spine, the
// NCX/Nav navigation tree, a MIME-classified content index, a reconciled
// chapter tree, and a detected cover image.
//
// The package deliberately stops short of rendering, pagination, layout, or
// DRM remediation. It hands back a tree an application can walk; what it
// does with that tree is out of scope.
//
// # Opening a book
//
// [Open] materialises every chapter's HTML, the title, the authors and the
// cover image up front and returns a [Book]; only the Book's Content index
// still reads from the archive, which stays open until Close. [OpenRef] stops after
// building the content index and returns a [BookRef] whose chapters read
// bytes from the archive on demand:
//
//	book, err := epubcore.Open("book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(book.Title)
//
//	ref, err := epubcore.OpenRef("book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ref.Close()
//	html, err := ref.Chapters[0].ReadHTML()
//
// # Chapter reconciliation
//
// The [Package]'s spine is the book's ground truth reading order; the NCX
// (EPUB 2) or nav document (EPUB 3) is a hierarchy layered on top of it,
// and real-world books frequently publish one that is incomplete. Opening
// a book runs the NCX/spine reconciliation algorithm (see chapterbuilder.go)
// so every spine HTML item is reachable in the resulting chapter tree, even
// when the navigation document omits it.
//
// # Splitting long chapters
//
// [WithSplitEnabled] turns on the structure-preserving chapter splitter,
// which breaks chapters over a configurable word-count threshold into
// numbered parts at block-element boundaries, without disturbing the
// surrounding XHTML document (DOCTYPE, head, body attributes).
//
// # Error handling
//
// All error conditions are typed and enumerable — see errors.go. The
// package is strict on structural errors (malformed manifest, malformed
// spine, unsupported version) and tolerant of missing optional elements
// (guide, page list, nav lists, individual missing labels). A table of
// contents that is missing or fails to parse is logged and the book opens
// with an empty Navigation. A missing chapter label is replaced by a title
// taken from the chapter's HTML (heading, then paragraph, div or link text),
// or else from its file name without extension.
package epubcore

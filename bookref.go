package epubcore

import (
	"os"
	"sync"
)

// BookRef is the lazy façade: chapters and content resources hold handles
// into the archive and are read on demand. A BookRef owns its Archive for
// the lifetime of any outstanding ContentFileRef; Close invalidates further
// reads.
type BookRef struct {
	Title          string
	Author         string
	Authors        []string
	Schema         Schema
	Content        ContentIndex
	Chapters       []ChapterRef
	FontObfuscated bool
	Warnings       []string

	mu      sync.Mutex
	archive *zipArchive
	opfPath string
	closed  bool
}

// Cover resolves and reads the cover image on demand.
func (b *BookRef) Cover(opts ...Option) (*Cover, error) {
	o := buildOptions(opts)
	return locateCover(&b.Schema.Package, b.opfPath, b.Content, o.coverFallbackToFirstImage)
}

// Landmarks returns the EPUB3 epub:type="landmarks" navigation entries, if
// the book carries any. Always empty for EPUB2 books.
func (b *BookRef) Landmarks() []NavPoint {
	return b.Schema.Navigation.Landmarks
}

// ContentChapters flattens the chapter tree in document order and excludes
// any chapter whose content looks like Project Gutenberg boilerplate. Unlike
// Book.ContentChapters, this reads every chapter's content from the archive
// to perform the check.
func (b *BookRef) ContentChapters() ([]ChapterRef, error) {
	var out []ChapterRef
	var walk func([]ChapterRef) error
	walk = func(chapters []ChapterRef) error {
		for _, c := range chapters {
			license, err := c.IsGutenbergLicense()
			if err != nil {
				return err
			}
			if !license {
				out = append(out, c)
			}
			if err := walk(c.SubChapters); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(b.Chapters); err != nil {
		return nil, err
	}
	return out, nil
}

// Close invalidates the archive handle; further ContentFileRef reads return
// ErrClosed instead of silently succeeding.
func (b *BookRef) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.archive.close()
}

// OpenRef parses an EPUB file at path into a lazy BookRef. The returned
// BookRef keeps the file open until Close is called.
func OpenRef(path string, opt ...Option) (*BookRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	archive, err := openArchiveFile(f, info.Size(), f)
	if err != nil {
		return nil, err
	}
	book, err := newBookRef(archive, opt)
	if err != nil {
		archive.close()
		return nil, err
	}
	return book, nil
}

// NewReaderRef parses an in-memory EPUB byte slice into a lazy BookRef. The
// returned BookRef's archive is backed entirely by data; Close is a no-op
// beyond marking it closed.
func NewReaderRef(data []byte, opt ...Option) (*BookRef, error) {
	archive, err := openArchiveBytes(data)
	if err != nil {
		return nil, err
	}
	book, err := newBookRef(archive, opt)
	if err != nil {
		archive.close()
		return nil, err
	}
	return book, nil
}

func newBookRef(archive *zipArchive, opt []Option) (*BookRef, error) {
	opts := buildOptions(opt)

	pb, err := runPipeline(opts.ctx, archive, opts)
	if err != nil {
		return nil, err
	}

	chapters, err := buildChapterRefs(opts.ctx, pb.nav, pb.pkg.Spine, pb.pkg.Manifest, pb.opfPath, pb.content, opts.splitThreshold, opts.splitEnabled, opts.logger)
	if err != nil {
		return nil, err
	}

	authors := derivedAuthors(pb.pkg.Metadata)

	var warnings []string
	if pb.fontObfus {
		warnings = append(warnings, "font obfuscation detected; not treated as DRM")
		opts.logger.Warn("font obfuscation detected, not treated as DRM")
	}

	return &BookRef{
		Title:   derivedTitle(pb.pkg.Metadata),
		Author:  derivedAuthor(authors),
		Authors: authors,
		Schema: Schema{
			Package:              *pb.pkg,
			Navigation:           pb.nav,
			ContentDirectoryPath: pb.opfDir,
		},
		Content:        pb.content,
		Chapters:       chapters,
		FontObfuscated: pb.fontObfus,
		Warnings:       warnings,
		archive:        archive,
		opfPath:        pb.opfPath,
	}, nil
}


package epubcore

import (
	"os"

	"go.uber.org/zap"
)

// Book is the eager façade: chapter HTML and the cover image are read up
// front, so Chapters, Title/Author and CoverImage never depend on the
// archive. Content (css, images, fonts) still reads from the archive on
// demand — Book keeps it open until Close is called, the same way the
// corpus's "eager" readers do.
type Book struct {
	Title          string
	Author         string
	Authors        []string
	Schema         Schema
	Content        ContentIndex
	Chapters       []Chapter
	CoverImage     *Cover
	FontObfuscated bool
	Warnings       []string

	archive *zipArchive
}

// Open parses an EPUB file at path into an eager Book. The caller must call
// Close when done.
func Open(path string, opt ...Option) (*Book, error) {
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
	book, err := newBook(archive, opt)
	if err != nil {
		archive.close()
		return nil, err
	}
	return book, nil
}

// NewReader parses an in-memory EPUB byte slice into an eager Book. Close is
// still safe to call (it only invalidates further Content reads).
func NewReader(data []byte, opt ...Option) (*Book, error) {
	archive, err := openArchiveBytes(data)
	if err != nil {
		return nil, err
	}
	book, err := newBook(archive, opt)
	if err != nil {
		archive.close()
		return nil, err
	}
	return book, nil
}

// Close releases the underlying archive. Idempotent.
func (b *Book) Close() error {
	return b.archive.close()
}

// Landmarks returns the EPUB3 epub:type="landmarks" navigation entries, if
// the book carries any. Always empty for EPUB2 books.
func (b *Book) Landmarks() []NavPoint {
	return b.Schema.Navigation.Landmarks
}

// ContentChapters flattens the chapter tree in document order and excludes
// any chapter flagged IsLicense, for callers that want to skip Project
// Gutenberg boilerplate without walking SubChapters themselves.
func (b *Book) ContentChapters() []Chapter {
	var out []Chapter
	var walk func([]Chapter)
	walk = func(chapters []Chapter) {
		for _, c := range chapters {
			if !c.IsLicense {
				out = append(out, c)
			}
			walk(c.SubChapters)
		}
	}
	walk(b.Chapters)
	return out
}

func newBook(archive *zipArchive, opt []Option) (*Book, error) {
	opts := buildOptions(opt)

	pb, err := runPipeline(opts.ctx, archive, opts)
	if err != nil {
		return nil, err
	}

	chapters, err := buildChapters(pb.nav, pb.pkg.Spine, pb.pkg.Manifest, pb.opfPath, pb.content, opts.splitThreshold, opts.splitEnabled, opts.logger)
	if err != nil {
		return nil, err
	}

	cover, err := locateCover(pb.pkg, pb.opfPath, pb.content, opts.coverFallbackToFirstImage)
	if err != nil {
		opts.logger.Warn("cover resolution failed", zap.Error(err))
		cover = nil
	}

	authors := derivedAuthors(pb.pkg.Metadata)

	var warnings []string
	if pb.fontObfus {
		warnings = append(warnings, "font obfuscation detected; not treated as DRM")
		opts.logger.Warn("font obfuscation detected, not treated as DRM")
	}

	return &Book{
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
		CoverImage:     cover,
		FontObfuscated: pb.fontObfus,
		Warnings:       warnings,
		archive:        archive,
	}, nil
}

package epubcore

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"
)

// parsedBook holds everything the synchronous parse pipeline produces,
// before the eager/lazy façades diverge on chapter materialisation.
type parsedBook struct {
	archive     Archive
	opfPath     string
	opfDir      string
	pkg         *Package
	nav         Navigation
	content     ContentIndex
	fontObfus   bool
}

// runPipeline executes ContainerLocator → PackageParser → NavigationParser,
// the synchronous portion shared by Open and OpenRef.
func runPipeline(ctx context.Context, archive Archive, opts *options) (*parsedBook, error) {
	fontObfuscation, err := checkDRM(ctx, archive)
	if err != nil {
		return nil, err
	}

	opfPath, err := locateRootFile(ctx, archive)
	if err != nil {
		return nil, err
	}
	opfDir := path.Dir(opfPath)
	if opfDir == "." {
		opfDir = ""
	}

	opfData, err := archive.Read(ctx, opfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read OPF %s: %v", ErrMalformedMetadata, opfPath, err)
	}
	opfData = stripBOM(opfData)

	pkg, err := parsePackage(opfData)
	if err != nil {
		return nil, err
	}

	content := buildContentIndex(ctx, archive, opfPath, pkg.Manifest)

	nav, err := parseNavigation(ctx, archive, opfPath, pkg)
	if err != nil {
		opts.logger.Warn("navigation parse failed, continuing without TOC", zap.Error(err))
		nav = Navigation{}
	}

	return &parsedBook{
		archive:   archive,
		opfPath:   opfPath,
		opfDir:    opfDir,
		pkg:       pkg,
		nav:       nav,
		content:   content,
		fontObfus: fontObfuscation,
	}, nil
}

// openArchiveBytes and openArchiveFile open a ZIP-format EPUB from an
// in-memory byte slice or a file reader, producing the Archive collaborator
// used by the rest of the pipeline.
func openArchiveBytes(data []byte) (*zipArchive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid ZIP archive: %v", ErrIO, err)
	}
	return newZipArchive(zr, nil), nil
}

func openArchiveFile(rdr io.ReaderAt, size int64, closer io.Closer) (*zipArchive, error) {
	zr, err := zip.NewReader(rdr, size)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("%w: not a valid ZIP archive: %v", ErrIO, err)
	}
	return newZipArchive(zr, closer), nil
}

// derivedTitle implements spec's title rule: metadata.titles[0] or "".
func derivedTitle(md Metadata) string {
	if len(md.Titles) == 0 {
		return ""
	}
	return md.Titles[0]
}

// derivedAuthors filters creator values to non-empty, preserving order.
func derivedAuthors(md Metadata) []string {
	var out []string
	for _, c := range md.Creators {
		if v := strings.TrimSpace(c.Value); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func derivedAuthor(authors []string) string {
	return strings.Join(authors, ", ")
}

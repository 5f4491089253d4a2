package epubcore

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxDecompressSize is the maximum allowed decompressed size for a single
// ZIP entry, guarding against zip-bomb archives.
const maxDecompressSize int64 = 256 * 1024 * 1024

// archiveCacheSize bounds the number of decoded-content entries kept per
// archive; the cache is strictly additive (nothing is ever proactively
// invalidated) and safe for concurrent reads.
const archiveCacheSize = 256

// Archive is the abstract (path → bytes) collaborator spec.md §6 describes.
// Path lookups are case-insensitive; stored names are preserved as-is.
type Archive interface {
	// Read returns the raw bytes stored at name. Lookup tries an exact
	// match first, then falls back to a case-insensitive comparison.
	Read(ctx context.Context, name string) ([]byte, error)
	// Has reports whether name resolves to an entry in the archive.
	Has(name string) bool
}

// zipArchive is the built-in Archive implementation backed by archive/zip.
type zipArchive struct {
	reader *zip.Reader
	closer io.Closer // non-nil only when opened from a file path
	closed bool

	exact map[string]*zip.File
	lower map[string]*zip.File

	cache *lru.Cache[string, []byte]
}

func newZipArchive(zr *zip.Reader, closer io.Closer) *zipArchive {
	a := &zipArchive{reader: zr, closer: closer}
	a.exact = make(map[string]*zip.File, len(zr.File))
	a.lower = make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if _, ok := a.exact[f.Name]; !ok {
			a.exact[f.Name] = f
		}
		lname := strings.ToLower(f.Name)
		if _, ok := a.lower[lname]; !ok {
			a.lower[lname] = f
		}
	}
	c, _ := lru.New[string, []byte](archiveCacheSize)
	a.cache = c
	return a
}

func (a *zipArchive) findFile(name string) *zip.File {
	if f, ok := a.exact[name]; ok {
		return f
	}
	if f, ok := a.lower[strings.ToLower(name)]; ok {
		return f
	}
	return nil
}

func (a *zipArchive) Has(name string) bool {
	return a.findFile(name) != nil
}

func (a *zipArchive) Read(ctx context.Context, name string) ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if data, ok := a.cache.Get(name); ok {
		return data, nil
	}
	f := a.findFile(name)
	if f == nil {
		return nil, ErrFileNotFound
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, err
	}
	a.cache.Add(name, data)
	return data, nil
}

func (a *zipArchive) close() error {
	a.closed = true
	if a.closer != nil {
		c := a.closer
		a.closer = nil
		return c.Close()
	}
	return nil
}

// readZipFile reads a ZIP entry's full contents, guarding against zip bombs
// and unsafe (path-traversal) entry names.
func readZipFile(f *zip.File) ([]byte, error) {
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("%w: unsafe zip entry path %q", ErrIO, f.Name)
	}
	if f.UncompressedSize64 > uint64(maxDecompressSize) {
		return nil, fmt.Errorf("%w: entry %s too large (%d bytes)", ErrIO, f.Name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open entry %s: %v", ErrIO, f.Name, err)
	}
	defer rc.Close()

	lr := io.LimitReader(rc, maxDecompressSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("%w: read entry %s: %v", ErrIO, f.Name, err)
	}
	if int64(len(data)) > maxDecompressSize {
		return nil, fmt.Errorf("%w: entry %s exceeds decompressed size limit", ErrIO, f.Name)
	}
	return data, nil
}

// isSafePath reports whether p stays within the archive root.
func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}

// resolveRelativePath resolves href relative to the directory of basePath,
// both ZIP-internal forward-slash paths. Returns "" if href is absolute,
// percent-decoding fails, or the resolved path would escape the archive root.
func resolveRelativePath(basePath, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "/") {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	dir := path.Dir(basePath)
	cleaned := path.Clean(path.Join(dir, href))
	if !isSafePath(cleaned) {
		return ""
	}
	return cleaned
}

// stripBOM removes a leading UTF-8 byte-order mark, if present.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

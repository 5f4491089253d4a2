package epubcore

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// ContentFileRef is a handle that produces bytes or a decoded UTF-8 string
// for a single manifest resource on demand. It is valid for as long as its
// backing Archive is open; ContentFileRefs MAY cache decoded bytes (the
// archive itself does the caching, so every ContentFileRef sharing an
// archive benefits from a single decode).
type ContentFileRef struct {
	archive  Archive
	ctx      context.Context
	path     string
	mimeType string
	kind     ContentKind
}

func newContentFileRef(ctx context.Context, archive Archive, path, mimeType string, kind ContentKind) ContentFileRef {
	return ContentFileRef{archive: archive, ctx: ctx, path: path, mimeType: mimeType, kind: kind}
}

// Path is the archive-internal path this ref reads from.
func (r ContentFileRef) Path() string { return r.path }

// MimeType is the manifest-declared MIME type of the resource.
func (r ContentFileRef) MimeType() string { return r.mimeType }

// Kind reports whether this resource decodes as text or returns raw bytes.
func (r ContentFileRef) Kind() ContentKind { return r.kind }

// Bytes reads the raw bytes of the resource, regardless of Kind.
func (r ContentFileRef) Bytes() ([]byte, error) {
	if r.archive == nil {
		return nil, ErrInvalidChapter
	}
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return r.archive.Read(ctx, r.path)
}

// Text reads and decodes the resource as UTF-8. It returns an error if Kind
// is KindByte.
func (r ContentFileRef) Text() (string, error) {
	if r.kind != KindText {
		return "", fmt.Errorf("%w: %s is not a text resource", ErrDecode, r.path)
	}
	data, err := r.Bytes()
	if err != nil {
		return "", err
	}
	data = stripBOM(data)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrDecode, r.path)
	}
	return string(data), nil
}

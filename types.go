package epubcore

// Version identifies the EPUB specification a package document conforms to.
type Version string

const (
	EPUB2 Version = "2.0"
	EPUB3 Version = "3.0"
)

// Package is the parsed OPF package document: metadata, manifest, spine,
// and an optional guide.
type Package struct {
	Version  Version
	Metadata Metadata
	Manifest Manifest
	Spine    Spine
	Guide    *Guide // nil when the OPF has no <guide>
}

// Metadata holds the Dublin Core fields as ordered sequences, plus the raw
// <meta> entries. A single optional Description is kept separate because
// spec.md calls out "a single optional description" rather than a sequence.
type Metadata struct {
	Titles       []string
	Creators     []Creator
	Subjects     []string
	Publishers   []string
	Contributors []Creator
	Dates        []DateEntry
	Identifiers  []Identifier
	Languages    []string
	Relations    []string
	Coverages    []string
	Rights       []string
	Types        []string
	Formats      []string
	Sources      []string
	Description  string
	Meta         []MetaEntry
}

// Creator represents a dc:creator or dc:contributor entry with its optional
// role and file-as attributes, read from the element itself; EPUB3
// <meta refines="..."> entries are not folded into these fields.
type Creator struct {
	Value  string
	Role   string
	FileAs string
}

// DateEntry represents a dc:date entry with its optional opf:event attribute.
type DateEntry struct {
	Value string
	Event string
}

// Identifier represents a dc:identifier entry with its optional id and
// scheme attributes.
type Identifier struct {
	Value  string
	ID     string
	Scheme string
}

// MetaEntry represents a <meta> element from the OPF metadata block. For
// EPUB2, Name/Content carry the pair. For EPUB3, ID/Refines/Property/Scheme
// and Content (the element's text) carry the full attribute bag, and Attrs
// preserves any remaining attributes verbatim.
type MetaEntry struct {
	Name     string
	Content  string
	ID       string
	Refines  string
	Property string
	Scheme   string
	Attrs    map[string]string
}

// Manifest is the ordered sequence of all files declared by the OPF.
type Manifest struct {
	Items []ManifestItem
}

// ManifestItem is a single <item> in the manifest.
type ManifestItem struct {
	ID                string
	Href              string // URL-decoded when used as an archive path; stored raw otherwise
	MediaType         string
	MediaOverlay      string
	Fallback          string
	FallbackStyle     string
	RequiredNamespace string
	RequiredModules   string
	Properties        []string
}

// HasProperty reports whether the item's properties attribute contains prop.
func (m ManifestItem) HasProperty(prop string) bool {
	for _, p := range m.Properties {
		if p == prop {
			return true
		}
	}
	return false
}

// Spine is the ordered reading sequence plus the v2 toc pointer and
// reading-direction flag.
type Spine struct {
	Toc      string // manifest id of the NCX item (v2); empty for v3-only books
	ItemRefs []SpineItemRef
	LTR      bool // page-progression-direction: true unless explicitly "rtl"
}

// SpineItemRef is a single <itemref>.
type SpineItemRef struct {
	IDRef    string
	IsLinear bool
}

// Guide is the optional ordered sequence of <guide><reference> entries.
type Guide struct {
	References []GuideReference
}

// GuideReference is a single <reference> in the guide.
type GuideReference struct {
	Type  string
	Title string
	Href  string
}

// Navigation is the parsed NCX (EPUB2) or nav document (EPUB3). For EPUB3
// only DocTitle, NavMap and Landmarks are populated; Head, DocAuthors,
// PageList, and NavLists are NCX-only.
type Navigation struct {
	Head       []NavMeta
	DocTitle   []string
	DocAuthors [][]string // one label-line slice per docAuthor
	NavMap     []NavPoint
	PageList   []NavPoint
	NavLists   []NavList
	Landmarks  []NavPoint // EPUB3 epub:type="landmarks" nav, if present
}

// NavMeta is a <head><meta name=... content=... scheme=.../> entry (NCX only).
type NavMeta struct {
	Name    string
	Content string
	Scheme  string
}

// NavList is a named <navList> (NCX only): a label plus its nav targets.
type NavList struct {
	Label string
	Items []NavPoint
}

// NavPoint is a single node of the navigation tree.
type NavPoint struct {
	ID        string
	Class     string
	PlayOrder int
	Labels    []string
	Content   NavContent
	Children  []NavPoint
}

// NavContent is the target of a NavPoint: a relative URL, possibly with a
// "#anchor" fragment, plus an optional content@id (NCX pageList/navList targets).
type NavContent struct {
	Source string
	ID     string
}

// ContentKind distinguishes text resources (decoded as UTF-8 strings) from
// byte resources (returned as raw bytes).
type ContentKind int

const (
	KindByte ContentKind = iota
	KindText
)

// ContentIndex categorises every manifest item by MIME into five keyed
// collections, all keyed by the item's archive-absolute path (the manifest
// href resolved against the OPF's directory). Built once during open and
// never mutated afterward.
type ContentIndex struct {
	HTML     map[string]ContentFileRef
	CSS      map[string]ContentFileRef
	Images   map[string]ContentFileRef
	Fonts    map[string]ContentFileRef
	AllFiles map[string]ContentFileRef
}

// Cover is the detected cover image: raw bytes plus MIME type. Decoding into
// a pixel buffer is left to a collaborator.
type Cover struct {
	MediaType string
	Data      []byte
}

// Chapter is a node of the eager chapter tree: HTML is materialised up
// front and the value has no lifetime dependency on the archive.
type Chapter struct {
	Title           string
	ContentFileName string // base href, anchor stripped
	Anchor          string // fragment from the NCX/nav content src, if any
	HTMLContent     string
	IsLicense       bool // detected Project Gutenberg license boilerplate
	SubChapters     []Chapter
}

// ChapterRef is a node of the lazy chapter tree: HTML is read from the
// still-open archive on demand via Content, unless precomputed holds
// split-part content computed at split time (see splitter.go), in
// which case ReadHTML returns it directly without reopening the original
// chapter file.
type ChapterRef struct {
	Title           string
	ContentFileName string
	Anchor          string
	Content         ContentFileRef
	SubChapters     []ChapterRef

	precomputed *string
}

// ReadHTML reads and decodes this chapter's HTML content.
func (c ChapterRef) ReadHTML() (string, error) {
	if c.precomputed != nil {
		return *c.precomputed, nil
	}
	if c.Content.archive == nil {
		return "", ErrInvalidChapter
	}
	text, err := c.Content.Text()
	if err != nil {
		return "", err
	}
	return string(rewriteImagePaths([]byte(text), c.ContentFileName)), nil
}

// Schema exposes the parsed structural layers a book was built from,
// shared by both the eager and lazy façades.
type Schema struct {
	Package              Package
	Navigation           Navigation
	ContentDirectoryPath string // the OPF's directory, ZIP-internal
}

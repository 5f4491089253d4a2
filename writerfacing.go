package epubcore

import "github.com/google/uuid"

// Writer-facing model objects describe the manifest/spine edits an external
// EPUB writer would need to apply after a split, without this module ever
// producing serialised OPF XML itself. WriterManifestPatch/WriterSpinePatch
// are the model a writer collaborator would consume; minting stable ids for
// the new entries is the one piece that can't be deferred to the writer,
// since the split parts must agree with each other on what those ids are.

// WriterManifestEntry describes one manifest <item> a writer should add.
type WriterManifestEntry struct {
	ID        string
	Href      string
	MediaType string
}

// WriterSpineEntry describes one spine <itemref> a writer should add,
// referencing a WriterManifestEntry by ID.
type WriterSpineEntry struct {
	IDRef    string
	IsLinear bool
}

// WriterManifestPatch is the set of manifest additions produced by splitting
// a single original chapter file into parts.
type WriterManifestPatch struct {
	// OriginalHref is the archive-absolute href of the chapter that was
	// split; the writer may choose to remove it from the manifest or keep
	// it as an orphan, depending on its own policy.
	OriginalHref string
	Entries      []WriterManifestEntry
}

// WriterSpinePatch is the spine addition that corresponds to a
// WriterManifestPatch: one itemref per new manifest entry, in reading order,
// meant to replace the single itemref that referenced OriginalHref.
type WriterSpinePatch struct {
	OriginalIDRef string
	Entries       []WriterSpineEntry
}

// BuildWriterPatch mints fresh manifest ids for each split part href and
// returns the manifest/spine patches a writer would need to splice the parts
// into place of originalHref/originalIDRef. mediaType is carried over from
// the original manifest item (split parts are always XHTML, so callers
// normally pass "application/xhtml+xml").
func BuildWriterPatch(originalHref, originalIDRef, mediaType string, partHrefs []string) (WriterManifestPatch, WriterSpinePatch) {
	manifest := WriterManifestPatch{OriginalHref: originalHref}
	spine := WriterSpinePatch{OriginalIDRef: originalIDRef}

	for _, href := range partHrefs {
		id := "epubcore-" + uuid.NewString()
		manifest.Entries = append(manifest.Entries, WriterManifestEntry{
			ID:        id,
			Href:      href,
			MediaType: mediaType,
		})
		spine.Entries = append(spine.Entries, WriterSpineEntry{
			IDRef:    id,
			IsLinear: true,
		})
	}

	return manifest, spine
}

package epubcore

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// spinePositions maps a spine item's resolved archive path to its order
// within the spine, skipping itemRefs whose idref has no manifest item.
func spinePositions(opfPath string, spine Spine, manifest Manifest) map[string]int {
	positions := make(map[string]int, len(spine.ItemRefs))
	pos := 0
	for _, ref := range spine.ItemRefs {
		item, ok := manifestItemByID(manifest, ref.IDRef)
		if !ok {
			continue
		}
		resolved := resolveRelativePath(opfPath, item.Href)
		if resolved == "" {
			continue
		}
		if _, exists := positions[resolved]; !exists {
			positions[resolved] = pos
		}
		pos++
	}
	return positions
}

// splitAnchor splits a NavPoint content source at the first '#' into
// (base, anchor), URL-decoding base.
func splitAnchor(source string) (base, anchor string) {
	if idx := strings.IndexByte(source, '#'); idx >= 0 {
		base, anchor = source[:idx], source[idx+1:]
	} else {
		base = source
	}
	if decoded, err := url.PathUnescape(base); err == nil {
		base = decoded
	}
	return base, anchor
}

// buildChapters runs the NCX/spine reconciliation algorithm (§ ChapterBuilder)
// and returns the ordered top-level eager Chapters.
func buildChapters(nav Navigation, spine Spine, manifest Manifest, opfPath string, content ContentIndex, threshold int, splitEnabled bool, logger *zap.Logger) ([]Chapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	positions := spinePositions(opfPath, spine, manifest)
	seen := make(map[string]bool)
	handled := make(map[string]bool)

	ncxTop, err := buildEagerNavPoints(nav.NavMap, content, seen, handled, logger)
	if err != nil {
		return nil, err
	}

	orphans := buildOrphans(spine, manifest, opfPath, content, handled, logger)

	merged := mergeChapters(ncxTop, orphans, positions)

	if splitEnabled {
		merged = splitChapters(merged, "", threshold)
	}

	return merged, nil
}

type namedChapter struct {
	base    string // resolved content-file path, used only for merge ordering
	chapter Chapter
}

// buildEagerNavPoints performs the NCX walk (step 2), materialising HTML
// eagerly.
func buildEagerNavPoints(points []NavPoint, content ContentIndex, seen, handled map[string]bool, logger *zap.Logger) ([]namedChapter, error) {
	var out []namedChapter
	for _, p := range points {
		base, anchor := splitAnchor(p.Content.Source)
		if base == "" {
			continue
		}
		if seen[base] {
			logger.Warn("duplicate NCX navPoint into already-visited content, dropping", zap.String("source", base))
			continue // same-file duplicate: drop, do not recurse
		}
		ref, ok := content.HTML[base]
		if !ok {
			return nil, parseErr(ErrMissingContent, base)
		}
		seen[base] = true
		handled[base] = true

		htmlContent, err := ref.Text()
		if err != nil {
			return nil, err
		}
		htmlContent = string(rewriteImagePaths([]byte(htmlContent), base))

		title := firstNonEmptyLabel(p.Labels)
		if title == "" {
			title = extractTitleFromHTML(htmlContent, base)
		}

		children, err := buildEagerNavPoints(p.Children, content, seen, handled, logger)
		if err != nil {
			return nil, err
		}

		ch := Chapter{
			Title:           title,
			ContentFileName: base,
			Anchor:          anchor,
			HTMLContent:     htmlContent,
			IsLicense:       isGutenbergLicense(htmlContent),
			SubChapters:     flattenChapters(children),
		}
		out = append(out, namedChapter{base: base, chapter: ch})
	}
	return out, nil
}

func flattenChapters(named []namedChapter) []Chapter {
	if len(named) == 0 {
		return nil
	}
	out := make([]Chapter, len(named))
	for i, n := range named {
		out[i] = n.chapter
	}
	return out
}

func firstNonEmptyLabel(labels []string) string {
	for _, l := range labels {
		if strings.TrimSpace(l) != "" {
			return strings.TrimSpace(l)
		}
	}
	return ""
}

// buildOrphans runs the orphan pass (step 3): spine HTML items not already
// handled become standalone top-level chapters.
func buildOrphans(spine Spine, manifest Manifest, opfPath string, content ContentIndex, handled map[string]bool, logger *zap.Logger) []namedChapter {
	var out []namedChapter
	for _, ref := range spine.ItemRefs {
		item, ok := manifestItemByID(manifest, ref.IDRef)
		if !ok {
			continue
		}
		resolved := resolveRelativePath(opfPath, item.Href)
		if resolved == "" {
			continue
		}
		htmlRef, ok := content.HTML[resolved]
		if !ok || handled[resolved] {
			continue
		}
		htmlContent, err := htmlRef.Text()
		if err != nil {
			continue
		}
		htmlContent = string(rewriteImagePaths([]byte(htmlContent), resolved))
		title := extractTitleFromHTML(htmlContent, resolved)
		logger.Warn("spine item not reachable from navigation, adding as orphan chapter", zap.String("source", resolved))
		out = append(out, namedChapter{
			base: resolved,
			chapter: Chapter{
				Title:           title,
				ContentFileName: resolved,
				HTMLContent:     htmlContent,
				IsLicense:       isGutenbergLicense(htmlContent),
			},
		})
	}
	return out
}

// mergeChapters interleaves NCX-derived top-level chapters and orphan
// chapters by spine position of their ContentFileName. NCX chapters whose
// base href is absent from the spine are appended at the end in NCX order.
type mergeEntry struct {
	pos     int
	inSpine bool
	order   int
	chapter Chapter
}

func mergeChapters(ncxTop, orphans []namedChapter, positions map[string]int) []Chapter {
	all := make([]mergeEntry, 0, len(ncxTop)+len(orphans))
	order := 0
	for _, n := range ncxTop {
		pos, inSpine := positions[n.base]
		all = append(all, mergeEntry{pos: pos, inSpine: inSpine, order: order, chapter: n.chapter})
		order++
	}
	for _, n := range orphans {
		pos, inSpine := positions[n.base]
		all = append(all, mergeEntry{pos: pos, inSpine: inSpine, order: order, chapter: n.chapter})
		order++
	}

	// Stable insertion sort: in-spine entries ordered by spine position;
	// not-in-spine entries retain relative (NCX/orphan emission) order and
	// sort after.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && lessEntry(all[j], all[j-1]); j-- {
			all[j-1], all[j] = all[j], all[j-1]
		}
	}

	out := make([]Chapter, len(all))
	for i, e := range all {
		out[i] = e.chapter
	}
	return out
}

func lessEntry(a, b mergeEntry) bool {
	if a.inSpine && b.inSpine {
		if a.pos != b.pos {
			return a.pos < b.pos
		}
		return a.order < b.order
	}
	if a.inSpine != b.inSpine {
		return a.inSpine // in-spine entries sort before not-in-spine
	}
	return a.order < b.order
}

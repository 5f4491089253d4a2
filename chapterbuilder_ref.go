package epubcore

import (
	"context"

	"go.uber.org/zap"
)

// buildChapterRefs is the lazy-variant ChapterBuilder: identical
// reconciliation algorithm, but nodes hold a ContentFileRef instead of
// materialised HTML. NCX-label titles still resolve without reading content;
// empty-label and orphan titles require one content read (a suspension
// point the spec explicitly allows).
func buildChapterRefs(ctx context.Context, nav Navigation, spine Spine, manifest Manifest, opfPath string, content ContentIndex, threshold int, splitEnabled bool, logger *zap.Logger) ([]ChapterRef, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	positions := spinePositions(opfPath, spine, manifest)
	seen := make(map[string]bool)
	handled := make(map[string]bool)

	ncxTop, err := buildLazyNavPoints(nav.NavMap, content, seen, handled, logger)
	if err != nil {
		return nil, err
	}

	orphans := buildOrphanRefs(spine, manifest, opfPath, content, handled, logger)

	merged := mergeChapterRefs(ncxTop, orphans, positions)

	if splitEnabled {
		merged, err = splitChapterRefs(merged, "", threshold)
		if err != nil {
			return nil, err
		}
	}

	return merged, nil
}

type namedChapterRef struct {
	base    string
	chapter ChapterRef
}

func buildLazyNavPoints(points []NavPoint, content ContentIndex, seen, handled map[string]bool, logger *zap.Logger) ([]namedChapterRef, error) {
	var out []namedChapterRef
	for _, p := range points {
		base, anchor := splitAnchor(p.Content.Source)
		if base == "" {
			continue
		}
		if seen[base] {
			logger.Warn("duplicate NCX navPoint into already-visited content, dropping", zap.String("source", base))
			continue
		}
		ref, ok := content.HTML[base]
		if !ok {
			return nil, parseErr(ErrMissingContent, base)
		}
		seen[base] = true
		handled[base] = true

		title := firstNonEmptyLabel(p.Labels)
		if title == "" {
			htmlContent, err := ref.Text()
			if err != nil {
				return nil, err
			}
			title = extractTitleFromHTML(htmlContent, base)
		}

		children, err := buildLazyNavPoints(p.Children, content, seen, handled, logger)
		if err != nil {
			return nil, err
		}

		ch := ChapterRef{
			Title:           title,
			ContentFileName: base,
			Anchor:          anchor,
			Content:         ref,
			SubChapters:     flattenChapterRefs(children),
		}
		out = append(out, namedChapterRef{base: base, chapter: ch})
	}
	return out, nil
}

func flattenChapterRefs(named []namedChapterRef) []ChapterRef {
	if len(named) == 0 {
		return nil
	}
	out := make([]ChapterRef, len(named))
	for i, n := range named {
		out[i] = n.chapter
	}
	return out
}

func buildOrphanRefs(spine Spine, manifest Manifest, opfPath string, content ContentIndex, handled map[string]bool, logger *zap.Logger) []namedChapterRef {
	var out []namedChapterRef
	for _, itemRef := range spine.ItemRefs {
		item, ok := manifestItemByID(manifest, itemRef.IDRef)
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
		title := extractTitleFromHTML(htmlContent, resolved)
		logger.Warn("spine item not reachable from navigation, adding as orphan chapter", zap.String("source", resolved))
		out = append(out, namedChapterRef{
			base: resolved,
			chapter: ChapterRef{
				Title:           title,
				ContentFileName: resolved,
				Content:         htmlRef,
			},
		})
	}
	return out
}

func mergeChapterRefs(ncxTop, orphans []namedChapterRef, positions map[string]int) []ChapterRef {
	all := make([]mergeRefEntry, 0, len(ncxTop)+len(orphans))
	order := 0
	for _, n := range ncxTop {
		pos, inSpine := positions[n.base]
		all = append(all, mergeRefEntry{pos: pos, inSpine: inSpine, order: order, chapter: n.chapter})
		order++
	}
	for _, n := range orphans {
		pos, inSpine := positions[n.base]
		all = append(all, mergeRefEntry{pos: pos, inSpine: inSpine, order: order, chapter: n.chapter})
		order++
	}

	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && lessRefEntry(all[j], all[j-1]); j-- {
			all[j-1], all[j] = all[j], all[j-1]
		}
	}

	out := make([]ChapterRef, len(all))
	for i, e := range all {
		out[i] = e.chapter
	}
	return out
}

type mergeRefEntry struct {
	pos     int
	inSpine bool
	order   int
	chapter ChapterRef
}

func lessRefEntry(a, b mergeRefEntry) bool {
	if a.inSpine && b.inSpine {
		if a.pos != b.pos {
			return a.pos < b.pos
		}
		return a.order < b.order
	}
	if a.inSpine != b.inSpine {
		return a.inSpine
	}
	return a.order < b.order
}

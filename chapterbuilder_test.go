package epubcore

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func buildTestContentIndex(t *testing.T, files map[string]string, manifest Manifest) ContentIndex {
	t.Helper()
	zr := buildTestZip(t, files)
	archive := newZipArchive(zr, nil)
	return buildContentIndex(context.Background(), archive, "OEBPS/content.opf", manifest)
}

func TestBuildChaptersOrphanInterleave(t *testing.T) {
	manifest := Manifest{Items: []ManifestItem{
		{ID: "c1", Href: "c1.xhtml", MediaType: "application/xhtml+xml"},
		{ID: "c2", Href: "c2.xhtml", MediaType: "application/xhtml+xml"},
		{ID: "c3", Href: "c3.xhtml", MediaType: "application/xhtml+xml"},
	}}
	content := buildTestContentIndex(t, map[string]string{
		"OEBPS/c1.xhtml": `<html><body><h1>One</h1>text</body></html>`,
		"OEBPS/c2.xhtml": `<html><body><h1>Orphan</h1>text</body></html>`,
		"OEBPS/c3.xhtml": `<html><body><h1>Three</h1>text</body></html>`,
	}, manifest)

	nav := Navigation{NavMap: []NavPoint{
		{ID: "n1", Labels: []string{"One"}, Content: NavContent{Source: "OEBPS/c1.xhtml"}},
		{ID: "n3", Labels: []string{"Three"}, Content: NavContent{Source: "OEBPS/c3.xhtml"}},
	}}
	spine := Spine{ItemRefs: []SpineItemRef{
		{IDRef: "c1", IsLinear: true},
		{IDRef: "c2", IsLinear: true},
		{IDRef: "c3", IsLinear: true},
	}}

	chapters, err := buildChapters(nav, spine, manifest, "OEBPS/content.opf", content, 0, false, zap.NewNop())
	if err != nil {
		t.Fatalf("buildChapters: %v", err)
	}
	if len(chapters) != 3 {
		t.Fatalf("chapters = %d, want 3: %+v", len(chapters), chapters)
	}
	if chapters[0].Title != "One" || chapters[1].Title != "Orphan" || chapters[2].Title != "Three" {
		t.Errorf("titles = %q, %q, %q; want orphan interleaved by spine position",
			chapters[0].Title, chapters[1].Title, chapters[2].Title)
	}
}

func TestBuildChaptersDuplicateNCXAnchorDedup(t *testing.T) {
	manifest := Manifest{Items: []ManifestItem{
		{ID: "c1", Href: "c1.xhtml", MediaType: "application/xhtml+xml"},
	}}
	content := buildTestContentIndex(t, map[string]string{
		"OEBPS/c1.xhtml": `<html><body><h1>One</h1><h2 id="sec1">Sub</h2>text</body></html>`,
	}, manifest)

	nav := Navigation{NavMap: []NavPoint{
		{ID: "n1", Labels: []string{"One"}, Content: NavContent{Source: "OEBPS/c1.xhtml"}},
		{ID: "n2", Labels: []string{"One Again"}, Content: NavContent{Source: "OEBPS/c1.xhtml#sec1"}},
	}}
	spine := Spine{ItemRefs: []SpineItemRef{{IDRef: "c1", IsLinear: true}}}

	chapters, err := buildChapters(nav, spine, manifest, "OEBPS/content.opf", content, 0, false, zap.NewNop())
	if err != nil {
		t.Fatalf("buildChapters: %v", err)
	}
	if len(chapters) != 1 {
		t.Fatalf("chapters = %d, want 1 (second same-file navPoint dropped), got %+v", len(chapters), chapters)
	}
}

func TestBuildChaptersLogsDuplicateNCXDedupAndOrphanPass(t *testing.T) {
	manifest := Manifest{Items: []ManifestItem{
		{ID: "c1", Href: "c1.xhtml", MediaType: "application/xhtml+xml"},
		{ID: "c2", Href: "c2.xhtml", MediaType: "application/xhtml+xml"},
	}}
	content := buildTestContentIndex(t, map[string]string{
		"OEBPS/c1.xhtml": `<html><body><h1>One</h1><h2 id="sec1">Sub</h2>text</body></html>`,
		"OEBPS/c2.xhtml": `<html><body><h1>Orphan</h1>text</body></html>`,
	}, manifest)

	nav := Navigation{NavMap: []NavPoint{
		{ID: "n1", Labels: []string{"One"}, Content: NavContent{Source: "OEBPS/c1.xhtml"}},
		{ID: "n2", Labels: []string{"One Again"}, Content: NavContent{Source: "OEBPS/c1.xhtml#sec1"}},
	}}
	spine := Spine{ItemRefs: []SpineItemRef{
		{IDRef: "c1", IsLinear: true},
		{IDRef: "c2", IsLinear: true},
	}}

	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	if _, err := buildChapters(nav, spine, manifest, "OEBPS/content.opf", content, 0, false, logger); err != nil {
		t.Fatalf("buildChapters: %v", err)
	}

	messages := make([]string, logs.Len())
	for i, entry := range logs.All() {
		messages[i] = entry.Message
	}
	wantDedup := "duplicate NCX navPoint into already-visited content, dropping"
	wantOrphan := "spine item not reachable from navigation, adding as orphan chapter"
	if !containsString(messages, wantDedup) {
		t.Errorf("logs = %v, want a Warn entry %q", messages, wantDedup)
	}
	if !containsString(messages, wantOrphan) {
		t.Errorf("logs = %v, want a Warn entry %q", messages, wantOrphan)
	}
}

func containsString(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}

func TestBuildChaptersMissingContentError(t *testing.T) {
	manifest := Manifest{}
	content := ContentIndex{HTML: map[string]ContentFileRef{}}
	nav := Navigation{NavMap: []NavPoint{
		{ID: "n1", Labels: []string{"One"}, Content: NavContent{Source: "missing.xhtml"}},
	}}
	_, err := buildChapters(nav, Spine{}, manifest, "OEBPS/content.opf", content, 0, false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for missing content")
	}
}

func TestSpinePositions(t *testing.T) {
	manifest := Manifest{Items: []ManifestItem{
		{ID: "a", Href: "a.xhtml"},
		{ID: "b", Href: "b.xhtml"},
	}}
	spine := Spine{ItemRefs: []SpineItemRef{{IDRef: "a"}, {IDRef: "b"}}}
	positions := spinePositions("OEBPS/content.opf", spine, manifest)
	if positions["OEBPS/a.xhtml"] != 0 || positions["OEBPS/b.xhtml"] != 1 {
		t.Errorf("positions = %+v", positions)
	}
}

func TestSplitAnchor(t *testing.T) {
	base, anchor := splitAnchor("chapter%201.xhtml#sec-2")
	if base != "chapter 1.xhtml" || anchor != "sec-2" {
		t.Errorf("splitAnchor = (%q, %q)", base, anchor)
	}
	base, anchor = splitAnchor("chapter1.xhtml")
	if base != "chapter1.xhtml" || anchor != "" {
		t.Errorf("splitAnchor (no anchor) = (%q, %q)", base, anchor)
	}
}

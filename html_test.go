package epubcore

import (
	"strings"
	"testing"
)

func TestExtractTextSkipsScriptAndBreaksOnBlocks(t *testing.T) {
	html := `<html><body><h1>Title</h1><p>First <b>part</b>.</p><script>alert(1)</script><p>Second part.</p></body></html>`
	got, err := extractText([]byte(html))
	if err != nil {
		t.Fatalf("extractText: %v", err)
	}
	want := "Title\nFirst part.\nSecond part."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractBodyHTMLStripsScriptAndEventHandlers(t *testing.T) {
	html := `<html><head><title>T</title></head><body><p onclick="evil()">Hi</p><script>bad()</script></body></html>`
	got, err := extractBodyHTML([]byte(html))
	if err != nil {
		t.Fatalf("extractBodyHTML: %v", err)
	}
	if strings.Contains(got, "onclick") || strings.Contains(got, "script") {
		t.Errorf("body not sanitized: %q", got)
	}
	if !strings.Contains(got, "Hi") {
		t.Errorf("body missing content: %q", got)
	}
}

func TestIsGutenbergLicenseDetectsBoilerplate(t *testing.T) {
	html := `<html><body><p>START OF THE PROJECT GUTENBERG EBOOK MOBY DICK</p></body></html>`
	if !isGutenbergLicense(html) {
		t.Error("expected Gutenberg license detection")
	}
}

func TestIsGutenbergLicenseDoesNotFlagOrdinaryChapter(t *testing.T) {
	html := `<html><body><h1>Chapter One</h1><p>Call me Ishmael.</p></body></html>`
	if isGutenbergLicense(html) {
		t.Error("expected ordinary chapter not flagged as license")
	}
}

func TestIsGutenbergLicenseComboPattern(t *testing.T) {
	html := `<html><body><p>This is the full license of Project Gutenberg works.</p></body></html>`
	if !isGutenbergLicense(html) {
		t.Error("expected combo-pattern detection (full license + gutenberg)")
	}
}

func TestRewriteImagePathsResolvesImgSrc(t *testing.T) {
	html := `<html><body><img src="../images/cover.jpg"/></body></html>`
	got := string(rewriteImagePaths([]byte(html), "OEBPS/text/chapter1.xhtml"))
	if !strings.Contains(got, `src="OEBPS/images/cover.jpg"`) {
		t.Errorf("img src not rewritten to archive-absolute path: %q", got)
	}
}

func TestRewriteImagePathsResolvesSVGImageHref(t *testing.T) {
	html := `<html><body><svg><image xlink:href="figures/fig1.png"/></svg></body></html>`
	got := string(rewriteImagePaths([]byte(html), "OEBPS/chapter1.xhtml"))
	if !strings.Contains(got, "OEBPS/figures/fig1.png") {
		t.Errorf("svg image href not rewritten: %q", got)
	}
}

func TestRewriteImagePathsLeavesAbsoluteHrefAlone(t *testing.T) {
	html := `<html><body><img src="http://example.com/a.png"/></body></html>`
	got := string(rewriteImagePaths([]byte(html), "OEBPS/chapter1.xhtml"))
	if !strings.Contains(got, "http://example.com/a.png") {
		t.Errorf("absolute URL should be left untouched: %q", got)
	}
}


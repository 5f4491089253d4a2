package epubcore

// RawContent returns this chapter's materialised XHTML.
func (c Chapter) RawContent() string { return c.HTMLContent }

// TextContent extracts the plain text content of this chapter's XHTML.
// Block-level elements produce line breaks; script/style content is skipped.
func (c Chapter) TextContent() (string, error) {
	return extractText([]byte(c.HTMLContent))
}

// BodyHTML extracts the inner HTML of this chapter's <body> element, with
// script/style elements and inline event-handler attributes stripped.
func (c Chapter) BodyHTML() (string, error) {
	return extractBodyHTML([]byte(c.HTMLContent))
}

// IsGutenbergLicense reports whether this chapter looks like a Project
// Gutenberg boilerplate license page.
func (c Chapter) IsGutenbergLicense() bool {
	return isGutenbergLicense(c.HTMLContent)
}

// RawContent reads this chapter's XHTML from the archive (or its precomputed
// split-part content).
func (c ChapterRef) RawContent() (string, error) { return c.ReadHTML() }

// TextContent extracts the plain text content of this chapter's XHTML.
func (c ChapterRef) TextContent() (string, error) {
	raw, err := c.ReadHTML()
	if err != nil {
		return "", err
	}
	return extractText([]byte(raw))
}

// BodyHTML extracts the inner HTML of this chapter's <body> element.
func (c ChapterRef) BodyHTML() (string, error) {
	raw, err := c.ReadHTML()
	if err != nil {
		return "", err
	}
	return extractBodyHTML([]byte(raw))
}

// IsGutenbergLicense reports whether this chapter looks like a Project
// Gutenberg boilerplate license page.
func (c ChapterRef) IsGutenbergLicense() (bool, error) {
	raw, err := c.ReadHTML()
	if err != nil {
		return false, err
	}
	return isGutenbergLicense(raw), nil
}

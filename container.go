package epubcore

import (
	"context"
	"encoding/xml"
	"fmt"
)

// containerPath is the well-known location of container.xml in an EPUB archive.
const containerPath = "META-INF/container.xml"

// containerXML models META-INF/container.xml under the OCF container namespace.
type containerXML struct {
	XMLName   xml.Name   `xml:"urn:oasis:names:tc:opendocument:xmlns:container container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// locateRootFile reads META-INF/container.xml and returns the full path of
// the first rootfile declared, preferring one whose media-type is the OPF
// package media type when more than one is present.
func locateRootFile(ctx context.Context, archive Archive) (string, error) {
	data, err := archive.Read(ctx, containerPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	data = stripBOM(data)

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("%w: parse container.xml: %v", ErrMalformedContainer, err)
	}
	if len(c.RootFiles) == 0 {
		return "", fmt.Errorf("%w: no rootfile entries", ErrMalformedContainer)
	}

	var fallback string
	for _, rf := range c.RootFiles {
		if rf.FullPath == "" {
			continue
		}
		if rf.MediaType == "application/oebps-package+xml" {
			return rf.FullPath, nil
		}
		if fallback == "" {
			fallback = rf.FullPath
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("%w: rootfile has empty full-path", ErrMalformedContainer)
	}
	return fallback, nil
}

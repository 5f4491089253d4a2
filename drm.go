package epubcore

import (
	"context"
	"encoding/xml"
	"strings"
)

// encryptionFilePath is the standard path for the encryption descriptor.
const encryptionFilePath = "META-INF/encryption.xml"

// sinfFilePath is the path that indicates Apple FairPlay DRM.
const sinfFilePath = "META-INF/sinf.xml"

// fontObfuscationAlgorithms are encryption-method algorithm URIs that mark
// font obfuscation rather than real DRM.
var fontObfuscationAlgorithms = map[string]bool{
	"http://www.idpf.org/2008/embedding": true,
	"http://ns.adobe.com/pdf/enc#RC":     true,
}

// drmSignatures are known DRM namespace prefixes found in KeyInfo content or
// algorithm URIs.
var drmSignatures = []string{
	"http://ns.adobe.com/adept",
	"http://readium.org/2014/01/lcp",
}

type xmlEncryption struct {
	XMLName       xml.Name           `xml:"encryption"`
	EncryptedData []xmlEncryptedData `xml:"EncryptedData"`
}

type xmlEncryptedData struct {
	EncryptionMethod xmlEncryptionMethod `xml:"EncryptionMethod"`
	KeyInfo          xmlKeyInfo          `xml:"KeyInfo"`
}

type xmlEncryptionMethod struct {
	Algorithm string `xml:"Algorithm,attr"`
}

type xmlKeyInfo struct {
	InnerXML string `xml:",innerxml"`
}

// checkDRM inspects META-INF/encryption.xml (and sinf.xml), returning
// whether the book merely uses font obfuscation and/or ErrDRMProtected when
// real DRM encryption is detected.
func checkDRM(ctx context.Context, archive Archive) (fontObfuscation bool, err error) {
	if archive.Has(sinfFilePath) {
		return false, ErrDRMProtected
	}

	if !archive.Has(encryptionFilePath) {
		return false, nil
	}
	data, err := archive.Read(ctx, encryptionFilePath)
	if err != nil {
		return false, err
	}
	data = stripBOM(data)

	var enc xmlEncryption
	if err := xml.Unmarshal(data, &enc); err != nil {
		return false, ErrDRMProtected
	}
	if len(enc.EncryptedData) == 0 {
		return false, nil
	}

	for _, ed := range enc.EncryptedData {
		algo := ed.EncryptionMethod.Algorithm
		if fontObfuscationAlgorithms[algo] {
			fontObfuscation = true
			continue
		}
		if isDRMSignature(algo) || isDRMSignature(ed.KeyInfo.InnerXML) {
			return false, ErrDRMProtected
		}
		return false, ErrDRMProtected
	}
	return fontObfuscation, nil
}

func isDRMSignature(s string) bool {
	for _, sig := range drmSignatures {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}

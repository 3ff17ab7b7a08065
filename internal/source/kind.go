package source

import (
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the acquisition strategy for a document
type Kind string

const (
	KindText  Kind = "text"
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

var extensionKinds = map[string]Kind{
	".txt":  KindText,
	".text": KindText,
	".pdf":  KindPDF,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".tif":  KindImage,
	".tiff": KindImage,
}

var contentTypeKinds = map[string]Kind{
	"text/plain":      KindText,
	"application/pdf": KindPDF,
	"image/png":       KindImage,
	"image/jpeg":      KindImage,
}

// KindForName picks the strategy from a file name's extension.
func KindForName(name string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if kind, ok := extensionKinds[ext]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: extension %q", ErrUnsupportedType, ext)
}

// SupportedExtensions lists the accepted file extensions, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionKinds))
	for ext := range extensionKinds {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// KindForContentType picks the strategy from a MIME type such as the one
// sent with a multipart upload. Parameters like charset are ignored.
func KindForContentType(contentType string) (Kind, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if kind, ok := contentTypeKinds[mediaType]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: content type %q", ErrUnsupportedType, contentType)
}

// extensionFor returns a file extension tesseract and the PDF reader accept for kind
func extensionFor(kind Kind, name string) string {
	if ext := strings.ToLower(filepath.Ext(name)); extensionKinds[ext] == kind {
		return ext
	}
	switch kind {
	case KindPDF:
		return ".pdf"
	case KindImage:
		return ".png"
	default:
		return ".txt"
	}
}

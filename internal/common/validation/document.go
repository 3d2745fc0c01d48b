package validation

import (
	"fmt"
	"mime"
	"strings"

	"loan-risk-workers/internal/models"
)

const (
	MaxPDFSize   = 10 * 1024 * 1024
	MaxImageSize = 5 * 1024 * 1024
)

var maxSizeByMimeType = map[string]int{
	"application/pdf": MaxPDFSize,
	"image/jpeg":      MaxImageSize,
	"image/png":       MaxImageSize,
	"image/webp":      MaxImageSize,
}

// NormalizeMimeType lower-cases t, drops parameters and maps common aliases.
func NormalizeMimeType(t string) string {
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(t))
	}
	if mt == "image/jpg" || mt == "image/pjpeg" {
		return "image/jpeg"
	}
	return mt
}

// MaxSize returns the size limit for a media type, or 0 when the type is not accepted.
func MaxSize(mimeType string) int {
	return maxSizeByMimeType[NormalizeMimeType(mimeType)]
}

// ValidateDocument checks a document is present, carries the expected kind tag, has an
// accepted media type and a non-empty payload within the size limit for that type.
func ValidateDocument(doc *models.RawDocument, expected models.DocumentKind) error {
	if doc == nil {
		return fmt.Errorf("%s document is missing", expected)
	}
	if doc.Kind != expected {
		return fmt.Errorf("document tagged %q supplied for %s", doc.Kind, expected)
	}

	limit := MaxSize(doc.MimeType)
	if limit == 0 {
		return fmt.Errorf("unsupported media type %q for %s", doc.MimeType, expected)
	}
	if doc.Size() == 0 {
		return fmt.Errorf("%s document is empty", expected)
	}
	if doc.Size() > limit {
		return fmt.Errorf("%s document is %d bytes, limit for %s is %d bytes",
			expected, doc.Size(), NormalizeMimeType(doc.MimeType), limit)
	}
	return nil
}

// ValidateDocumentSet checks all four documents and returns every problem found, keyed by
// kind. An empty map means the set is acceptable.
func ValidateDocumentSet(set models.DocumentSet) map[models.DocumentKind]error {
	problems := make(map[models.DocumentKind]error)
	for _, kind := range models.AllDocumentKinds {
		if err := ValidateDocument(set.Get(kind), kind); err != nil {
			problems[kind] = err
		}
	}
	return problems
}

// internal/models/document.go
package models

// DocumentKind tags which of the four evidentiary documents a payload is.
type DocumentKind string

const (
	KindBankStatement        DocumentKind = "bank_statement"
	KindUniversityAcceptance DocumentKind = "university_acceptance"
	KindScholarshipLetter    DocumentKind = "scholarship_letter"
	KindIdentityDocument     DocumentKind = "identity_document"
)

// AllDocumentKinds is the fixed processing order used for logging and failure reports.
var AllDocumentKinds = []DocumentKind{
	KindBankStatement,
	KindUniversityAcceptance,
	KindScholarshipLetter,
	KindIdentityDocument,
}

func (k DocumentKind) Valid() bool {
	switch k {
	case KindBankStatement, KindUniversityAcceptance, KindScholarshipLetter, KindIdentityDocument:
		return true
	}
	return false
}

func (k DocumentKind) String() string {
	return string(k)
}

// RawDocument is an uploaded document as received from the applicant.
// It is consumed once by extraction and never persisted by the pipeline.
type RawDocument struct {
	Kind     DocumentKind
	MimeType string
	Data     []byte
	// Source is an optional locator (object key, file name) used only in logs.
	Source string
}

// Size returns the payload length in bytes.
func (d *RawDocument) Size() int {
	if d == nil {
		return 0
	}
	return len(d.Data)
}

// DocumentSet carries exactly one document per kind.
type DocumentSet struct {
	BankStatement        *RawDocument
	UniversityAcceptance *RawDocument
	ScholarshipLetter    *RawDocument
	IdentityDocument     *RawDocument
}

// Get returns the document registered for kind, or nil.
func (s DocumentSet) Get(kind DocumentKind) *RawDocument {
	switch kind {
	case KindBankStatement:
		return s.BankStatement
	case KindUniversityAcceptance:
		return s.UniversityAcceptance
	case KindScholarshipLetter:
		return s.ScholarshipLetter
	case KindIdentityDocument:
		return s.IdentityDocument
	}
	return nil
}

// DocumentRef points at an uploaded document in object storage.
type DocumentRef struct {
	Bucket   string `json:"bucket,omitempty"`
	Key      string `json:"key"`
	MimeType string `json:"mimeType"`
}

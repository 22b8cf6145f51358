package entity

import "time"

// SourceFormat is the original format a document was uploaded in.
type SourceFormat string

const (
	SourceFormatHTML SourceFormat = "html"
	SourceFormatDOCX SourceFormat = "docx"
)

// DocumentStorageRef points into the blob store: the encrypted section
// package, and, for DOCX uploads that retain the original for in-place
// redaction (C6), the original file too.
type DocumentStorageRef struct {
	PackageFileID  string
	OriginalFileID string // empty if the original was not retained
	Envelope       *EnvelopePackageParams
}

// EnvelopePackageParams are the opaque per-package envelope-encryption
// parameters C2 attaches when classificationLevel != INTERNAL.
type EnvelopePackageParams struct {
	KeyHandle string
	Nonce     string
}

// SectionMetadataSummary is the per-level section tally C4 produces
// alongside the parsed sections, persisted into Document.Metadata.
type SectionMetadataSummary struct {
	OverallClassification ClassificationLevel   `json:"overallClassification"`
	PerLevelCounts        map[ClassificationLevel]int `json:"perLevelCounts"`
	SourceFormat          SourceFormat          `json:"sourceFormat"`
}

// DocumentMetadata is the free-form side-map described in spec.md §9
// ("dynamic maps of maps... become explicit records with named fields;
// unknown extensions go into a metadata side-map").
type DocumentMetadata struct {
	AuthorID         string                   `json:"authorId,omitempty"`
	Department       string                   `json:"department,omitempty"`
	MIMEType         string                   `json:"mimeType,omitempty"`
	OriginalFilename string                   `json:"originalFilename,omitempty"`
	SectionMetadata  *SectionMetadataSummary  `json:"sectionMetadata,omitempty"`
	Custom           map[string]any           `json:"custom,omitempty"`
}

// EncryptedMetadataBlob is the AEAD ciphertext of a per-company metadata
// view: title, classification and custom fields re-derived for that
// company's projection of the record (spec.md §3 Document record).
type EncryptedMetadataBlob struct {
	Ciphertext []byte
	Nonce      []byte
}

// Document is the registry entry owned by the Document Registry Core (C7),
// keyed by DocumentID, a decentralized identifier string.
type Document struct {
	DocumentID            string
	Title                 string
	OverallClassification ClassificationLevel
	ReleasableTo          []string // company DIDs
	BloomFilter           *BloomFilter
	EncryptedMetadata     map[string]EncryptedMetadataBlob // companyID -> blob
	ContentEncryptionKey  string                           // opaque wrapped key reference
	Storage               DocumentStorageRef
	Metadata              DocumentMetadata
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             *time.Time // non-nil once soft-deleted (spec.md §8: Gone, not NotFound)
}

// Deleted reports whether this record has been soft-deleted.
func (d *Document) Deleted() bool {
	return d.DeletedAt != nil
}

// DocumentSummary is the discovery-query projection emitted by C7.Discover,
// one per visible, sufficiently-cleared record.
type DocumentSummary struct {
	DocumentID           string
	Title                string
	ClassificationLevel  ClassificationLevel
	ContentEncryptionKey string
	CreatedAt            time.Time
	Metadata             DocumentMetadata
}

package entity

import "time"

// Section is a single clearance-tagged content region produced by the
// Section Parser (C4), before encryption.
type Section struct {
	SectionID string
	Clearance ClassificationLevel
	Content   string
}

// ParsedDocument is the common shape both the HTML and DOCX parsers (C4)
// produce.
type ParsedDocument struct {
	Sections []Section
	Metadata SectionMetadataSummary
	Title    string
}

// EncryptedSection is one entry of an Encrypted Section Package's ordered
// encryptedSections sequence (spec.md §3).
type EncryptedSection struct {
	SectionID string
	Clearance ClassificationLevel
	Ciphertext []byte
	Nonce      []byte
	AuthTag    []byte
}

// EncryptedSectionPackage is produced by C5.Encrypt and stored via C2.
type EncryptedSectionPackage struct {
	DocumentPackageID string
	CreatedAt         time.Time
	Metadata          SectionMetadataSummary
	Title             string
	OriginalFilename  string
	EncryptedSections []EncryptedSection
	Keyring           map[ClassificationLevel]string // level -> opaque key handle
}

// RedactedSection is the placeholder C5.DecryptForUser emits in place of a
// section whose clearance exceeds the requesting user's.
type RedactedSection struct {
	SectionID string
	Clearance ClassificationLevel
}

// ProjectedSections is the result of C5.DecryptForUser: every section from
// the package appears exactly once, either decrypted or redacted, in the
// original package order (spec.md §8 invariant 4).
type ProjectedSections struct {
	Decrypted []Section
	Redacted  []RedactedSection
	Order     []SectionRef // preserves original interleaving for rendering
}

// SectionRef identifies which bucket (decrypted or redacted) holds the
// section at a given position in the original order.
type SectionRef struct {
	SectionID  string
	IsRedacted bool
}

package port

import "github.com/techcorp/classified-doc-broker/internal/core/entity"

// SectionCrypto is the C5 component: it derives one content-encryption key
// per classification level from a document's master secret, encrypts each
// parsed section under its own level's key, and later decrypts only the
// sections a given clearance is entitled to, substituting RedactedSection
// placeholders for the rest (spec.md §4.5, §8 invariants 3-4).
type SectionCrypto interface {
	// Encrypt produces an EncryptedSectionPackage from a parsed document,
	// deriving the per-level keyring from masterSecret.
	Encrypt(doc *entity.ParsedDocument, documentPackageID string, masterSecret []byte) (*entity.EncryptedSectionPackage, error)

	// DecryptForUser decrypts every section the given clearance may read and
	// redacts the rest, preserving original section order.
	DecryptForUser(pkg *entity.EncryptedSectionPackage, clearance entity.ClassificationLevel, masterSecret []byte) (*entity.ProjectedSections, error)
}

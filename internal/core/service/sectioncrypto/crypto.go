package sectioncrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

const nonceSize = 12 // 96-bit AEAD nonce per spec.md §4.5

var allLevels = []entity.ClassificationLevel{
	entity.ClassificationInternal,
	entity.ClassificationConfidential,
	entity.ClassificationRestricted,
	entity.ClassificationTopSecret,
}

// Crypto implements port.SectionCrypto. Per-level keys are derived with
// HKDF-SHA256 (golang.org/x/crypto/hkdf) salted by the level label, then
// used as AES-256-GCM keys — no third-party AEAD library exists in the
// example corpus, so the cipher itself is stdlib crypto/aes+crypto/cipher
// (see DESIGN.md).
type Crypto struct{}

// New constructs a Crypto.
func New() *Crypto {
	return &Crypto{}
}

func deriveLevelKey(masterSecret []byte, level entity.ClassificationLevel) ([]byte, error) {
	reader := hkdf.New(sha256.New, masterSecret, []byte(level.String()), []byte("docbroker-section-key"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("section crypto: derive key for %s: %w", level, err)
	}
	return key, nil
}

func aeadFor(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("section crypto: aes cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func associatedData(documentPackageID, sectionID string, level entity.ClassificationLevel) []byte {
	return []byte(documentPackageID + "||" + sectionID + "||" + level.String())
}

// Encrypt implements port.SectionCrypto.
func (c *Crypto) Encrypt(doc *entity.ParsedDocument, documentPackageID string, masterSecret []byte) (*entity.EncryptedSectionPackage, error) {
	keyring := make(map[entity.ClassificationLevel]string, len(allLevels))
	for _, level := range allLevels {
		keyring[level] = level.String() // opaque handle: the level label itself, per spec.md §4.5
	}

	encSections := make([]entity.EncryptedSection, 0, len(doc.Sections))
	for _, section := range doc.Sections {
		key, err := deriveLevelKey(masterSecret, section.Clearance)
		if err != nil {
			return nil, err
		}
		aead, err := aeadFor(key)
		if err != nil {
			return nil, err
		}
		nonce := make([]byte, nonceSize)
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("section crypto: nonce: %w", err)
		}
		ad := associatedData(documentPackageID, section.SectionID, section.Clearance)
		sealed := aead.Seal(nil, nonce, []byte(section.Content), ad)
		ciphertext := sealed[:len(sealed)-aead.Overhead()]
		tag := sealed[len(sealed)-aead.Overhead():]

		encSections = append(encSections, entity.EncryptedSection{
			SectionID:  section.SectionID,
			Clearance:  section.Clearance,
			Ciphertext: ciphertext,
			Nonce:      nonce,
			AuthTag:    tag,
		})
	}

	return &entity.EncryptedSectionPackage{
		DocumentPackageID: documentPackageID,
		Metadata:          doc.Metadata,
		Title:             doc.Title,
		EncryptedSections: encSections,
		Keyring:           keyring,
	}, nil
}

// DecryptForUser implements port.SectionCrypto. AEAD failure on any section
// the user is cleared for aborts the whole projection (spec.md §4.5
// integrity rule: no partial delivery).
func (c *Crypto) DecryptForUser(pkg *entity.EncryptedSectionPackage, clearance entity.ClassificationLevel, masterSecret []byte) (*entity.ProjectedSections, error) {
	result := &entity.ProjectedSections{}

	for _, section := range pkg.EncryptedSections {
		if !clearance.AtLeast(section.Clearance) {
			result.Redacted = append(result.Redacted, entity.RedactedSection{
				SectionID: section.SectionID,
				Clearance: section.Clearance,
			})
			result.Order = append(result.Order, entity.SectionRef{SectionID: section.SectionID, IsRedacted: true})
			continue
		}

		key, err := deriveLevelKey(masterSecret, section.Clearance)
		if err != nil {
			return nil, err
		}
		aead, err := aeadFor(key)
		if err != nil {
			return nil, err
		}
		ad := associatedData(pkg.DocumentPackageID, section.SectionID, section.Clearance)
		sealed := append(append([]byte{}, section.Ciphertext...), section.AuthTag...)
		plaintext, err := aead.Open(nil, section.Nonce, sealed, ad)
		if err != nil {
			return nil, fmt.Errorf("section crypto: decrypt %s: %w", section.SectionID, entity.ErrSectionDecryptFailed)
		}

		result.Decrypted = append(result.Decrypted, entity.Section{
			SectionID: section.SectionID,
			Clearance: section.Clearance,
			Content:   string(plaintext),
		})
		result.Order = append(result.Order, entity.SectionRef{SectionID: section.SectionID, IsRedacted: false})
	}

	return result, nil
}

package ephemeral

import (
	"crypto/rand"
	"fmt"
	"time"

	"filippo.io/age"
	"github.com/google/uuid"
	"golang.org/x/crypto/nacl/box"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// Envelope implements the C8 ephemeral identifier + pickup envelope
// (spec.md §4.8).
//
// Two distinct crypto operations are grounded on different libraries:
//   - CreateDID mints the ephemeral DID's own long-ish-lived X25519 keypair,
//     embedded in its DID document. It is never used to encrypt anything;
//     it only needs a public key to publish, so filippo.io/age's identity
//     type is a convenient X25519 keypair generator and string encoder,
//     grounded on Aureuma-si's age-based vault encryption
//     (tools/si/internal/vault/crypto_age.go).
//   - Stage performs the actual delivery encryption to the wallet's
//     X25519 public key using a fresh per-delivery keypair and a 24-byte
//     nonce, exactly as spec.md §4.8 describes ("AEAD... server key is
//     per-delivery... 24-byte nonce" maps directly onto NaCl box, the
//     textbook X25519-XSalsa20-Poly1305 public-key box construction
//     shipped as golang.org/x/crypto/nacl/box).
type Envelope struct {
	now func() time.Time
}

// New constructs an Envelope using time.Now for TTL bookkeeping.
func New() *Envelope {
	return &Envelope{now: time.Now}
}

// CreateDID mints a fresh ephemeral DID and its embedded X25519 keypair,
// returning the identifier's metadata record (spec.md §4.8
// createEphemeralDID).
func (e *Envelope) CreateDID(originalDocumentID, recipientDID, issuerDID string, clearance entity.ClassificationLevel, redacted []entity.RedactedSectionRef, ttl time.Duration, viewsAllowed int) (*entity.EphemeralIdentifierMetadata, error) {
	ttl = clampTTL(ttl)

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("ephemeral envelope: generate identity: %w", err)
	}

	now := e.now()
	metadata := &entity.EphemeralIdentifierMetadata{
		EphemeralDID:       "did:ephemeral:" + uuid.NewString(),
		OriginalDocumentID: originalDocumentID,
		RecipientDID:       recipientDID,
		ClearanceLevel:     clearance,
		RedactedSections:   redacted,
		TTLMs:              ttl.Milliseconds(),
		ViewsAllowed:       viewsAllowed,
		IssuerDID:          issuerDID,
		PublicKeyBase64:    identity.Recipient().String(),
		ExpiresAt:          now.Add(ttl),
		IssuedAt:           now,
	}
	return metadata, nil
}

// Stage encrypts content to the wallet's X25519 public key and builds the
// pickup record C8.stage persists (spec.md §4.8 "envelope" paragraph and
// §4.9 step 4: "AEADs the prepared bytes to the wallet's key... server key
// is per-delivery").
func (e *Envelope) Stage(pickupID string, content []byte, contentType string, walletPublicKey [32]byte, walletDID, documentID, ephemeralDID string, ttl time.Duration, viewsAllowed int) (*entity.EphemeralPickup, error) {
	ttl = clampTTL(ttl)

	serverPub, serverPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("ephemeral envelope: generate delivery keypair: %w", err)
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("ephemeral envelope: nonce: %w", err)
	}

	encrypted := box.Seal(nil, content, &nonce, &walletPublicKey, serverPriv)

	now := e.now()
	pickup := &entity.EphemeralPickup{
		PickupID:         pickupID,
		EncryptedContent: encrypted,
		Nonce:            nonce[:],
		ServerPublicKey:  serverPub[:],
		WalletDID:        walletDID,
		DocumentID:       documentID,
		EphemeralDID:     ephemeralDID,
		ContentType:      contentType,
		ExpiresAt:        now.Add(ttl),
		ViewsRemaining:   viewsAllowed,
	}
	return pickup, nil
}

// ParseWalletPublicKey validates a wallet-supplied X25519 public key,
// rejecting anything but exactly 32 bytes (spec.md §4.9 failure mode:
// "wallet public key malformed -> 400").
func ParseWalletPublicKey(raw []byte) ([32]byte, error) {
	var key [32]byte
	if len(raw) != 32 {
		return key, entity.ErrMalformedPublicKey
	}
	copy(key[:], raw)
	return key, nil
}

func clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return entity.DefaultEphemeralTTL
	}
	if ttl < entity.MinEphemeralTTL {
		return entity.MinEphemeralTTL
	}
	if ttl > entity.MaxEphemeralTTL {
		return entity.MaxEphemeralTTL
	}
	return ttl
}

package entity

import "time"

// DefaultEphemeralTTL is the default lifetime for an ephemeral identifier
// when the caller does not specify one (spec.md §4.8).
const DefaultEphemeralTTL = time.Hour

// MinEphemeralTTL and MaxEphemeralTTL bound the caller-supplied TTL.
const (
	MinEphemeralTTL = time.Minute
	MaxEphemeralTTL = 24 * time.Hour
)

// UnlimitedViews is the sentinel ViewsAllowed/ViewsRemaining value meaning
// "unlimited reads within the TTL window" (spec.md §9 Open Question 2: the
// source treats it as unlimited-within-TTL, not unlimited-across-sessions —
// the decision recorded in DESIGN.md).
const UnlimitedViews = -1

// RedactedSectionRef is the {sectionID, clearance} pair recorded against an
// ephemeral identifier so the delivery credential can summarize what was
// withheld.
type RedactedSectionRef struct {
	SectionID string
	Clearance ClassificationLevel
}

// EphemeralIdentifierMetadata is keyed by EphemeralDID (spec.md §3).
type EphemeralIdentifierMetadata struct {
	EphemeralDID       string // did:ephemeral:<uuid>
	OriginalDocumentID string
	RecipientDID       string
	ClearanceLevel     ClassificationLevel
	RedactedSections   []RedactedSectionRef
	TTLMs              int64
	ViewsAllowed       int
	IssuerDID          string
	PublicKeyBase64    string // X25519 public key, base64
	ExpiresAt          time.Time
	IssuedAt           time.Time
}

// Expired reports whether the ephemeral identifier has outlived its TTL.
func (m *EphemeralIdentifierMetadata) Expired(now time.Time) bool {
	return now.After(m.ExpiresAt)
}

// EphemeralPickup is keyed by an opaque PickupID (spec.md §3). It is
// co-owned by the server (which deletes it on expiry) and the credential
// holder (who reads it once via GET /ephemeral-documents/content/{pickupId}).
type EphemeralPickup struct {
	PickupID         string
	EncryptedContent []byte
	Nonce            []byte
	ServerPublicKey  []byte // X25519
	WalletDID        string
	DocumentID       string
	EphemeralDID     string
	ContentType      string
	ExpiresAt        time.Time
	ViewsRemaining   int // UnlimitedViews (-1) = unlimited within TTL
}

// Expired reports whether the pickup has outlived its TTL (default 1h from
// creation).
func (p *EphemeralPickup) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

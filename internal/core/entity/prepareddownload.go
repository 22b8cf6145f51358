package entity

import "time"

// PreparedDownloadTTL is the in-memory lifetime of a staged download between
// prepare and complete (spec.md §4.9 step 3).
const PreparedDownloadTTL = 10 * time.Minute

// PreparedDownload is the server-side staging record created by
// C9.PrepareDownload and consumed exactly once by C9.CompleteDownload.
type PreparedDownload struct {
	StorageID      string
	// PickupID is assigned at prepare time so serviceEndpointURL can be
	// computed and handed back immediately (spec.md §4.9 step 3); Complete
	// stages the actual pickup record under this same ID.
	PickupID       string
	DocumentID     string
	EphemeralDID   string
	RenderedBytes  []byte
	ContentType    string
	SourceFormat   SourceFormat
	ClearanceLevel ClassificationLevel
	RedactedSections []RedactedSectionRef
	RecipientDID   string
	IssuerDID      string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the 10-minute staging window has elapsed.
func (p *PreparedDownload) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

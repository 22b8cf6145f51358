package entity

import "time"

// ShortURLTTL is the 24-hour lifetime of a short URL (spec.md §3, §8
// boundary behavior: "24h + 1s age returns a terminal expired page").
const ShortURLTTL = 24 * time.Hour

// ShortURL maps a short identifier to the destination URL it stands in for.
// Short URLs are a QR-capacity optimization only, not part of the SSI trust
// boundary (spec.md §9).
type ShortURL struct {
	ShortID   string
	URL       string
	CreatedAt time.Time
}

// Expired reports whether the short URL has outlived its 24h TTL.
func (s *ShortURL) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > ShortURLTTL
}

package entity

import "time"

// SessionTTL is the server-side session lifetime enforced by C10 and swept
// by the Janitor (C13): 4 hours from AuthenticatedAt.
const SessionTTL = 4 * time.Hour

// Session is keyed by an opaque SessionToken (spec.md §3 Session record).
// It is carried by the client in the X-Session-Token (or X-Session-ID)
// header.
type Session struct {
	SessionToken       string
	ConnectionID       string
	EmployeeDID        string
	EmployeeID         string
	Role               string
	Department         string
	FullName           string
	Email              string
	IssuerDID          string // the employee's company DID
	HasTraining        bool
	TrainingExpiryDate *time.Time
	ClearanceLevel     *ClassificationLevel
	AuthenticatedAt    time.Time
	LastActivity       time.Time
}

// Expired reports whether the session's 4-hour TTL has elapsed as of now.
// Inactivity is explicitly not enforced per spec.md §3.
func (s *Session) Expired(now time.Time) bool {
	return now.Sub(s.AuthenticatedAt) > SessionTTL
}

// EffectiveClearance returns the employee's granted clearance, defaulting
// to INTERNAL when no SecurityClearance VC has been presented.
func (s *Session) EffectiveClearance() ClassificationLevel {
	return EffectiveClearance(s.ClearanceLevel)
}

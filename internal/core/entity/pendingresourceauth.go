package entity

import "time"

// PendingResourceAuthTTL is the dual-VP authorization window: 5 minutes
// from CreatedAt, enforced by C11 and swept by the Janitor.
const PendingResourceAuthTTL = 5 * time.Minute

// ResourceAuthStatus is the state of a dual-VP resource authorization
// attempt, identified by SessionID (distinct from the login SessionToken).
type ResourceAuthStatus string

const (
	ResourceAuthAwaitingEnterpriseVP ResourceAuthStatus = "awaiting_enterprise_vp"
	ResourceAuthEnterpriseVPVerified ResourceAuthStatus = "enterprise_vp_verified"
	ResourceAuthAwaitingPersonalVP   ResourceAuthStatus = "awaiting_personal_vp"
	ResourceAuthAuthorized           ResourceAuthStatus = "authorized"
	ResourceAuthDenied               ResourceAuthStatus = "denied"
	ResourceAuthEnterpriseVPFailed   ResourceAuthStatus = "enterprise_vp_failed"
)

// ResourceAuthorizationResult is the decision C11.Verify produces once both
// presentations are in, per spec.md §8 invariant 8.
type ResourceAuthorizationResult struct {
	Authorized     bool
	Reason         string
	EmployeeRole   string
	Department     string
	ClearanceLevel ClassificationLevel
}

// VPClaims is the subset of a verified presentation's extracted claims the
// dual-VP flow cares about, decoded per spec.md §9 ("ad-hoc JWT decoding is
// formalized as a two-step... the core never verifies VC signatures
// itself").
type VPClaims struct {
	Role           string
	Department     string
	ClearanceLevel ClassificationLevel
}

// PendingResourceAuthorization is keyed by SessionID (spec.md §3).
type PendingResourceAuthorization struct {
	SessionID      string
	ResourceID     string
	Resource       ResourcePolicy
	Challenge      string
	Domain         string

	EnterprisePresentationID string
	EnterpriseVPVerified     bool
	EnterpriseVPClaims       *VPClaims

	PersonalPresentationID string
	PersonalVPVerified     bool
	PersonalVPClaims       *VPClaims

	Status             ResourceAuthStatus
	AuthorizationResult *ResourceAuthorizationResult

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the 5-minute dual-VP window has elapsed.
func (p *PendingResourceAuthorization) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// ResourcePolicy is one row of the resource policy table (spec.md §6):
// RequiredRole "*" matches any role.
type ResourcePolicy struct {
	ResourceID       string
	RequiredClearance ClassificationLevel
	RequiredRole      string
}

// AnyRole is the wildcard RequiredRole value meaning "no role restriction".
const AnyRole = "*"

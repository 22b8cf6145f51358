package entity

import "time"

// Company is the first-class form of what the registry otherwise treats as
// an opaque DID string inside Document.ReleasableTo. It anchors a company's
// identity for releasability checks and onboarding (C12); the catalogue file
// mapping company identifiers to human-facing fields remains an external
// collaborator per spec.md §1.
type Company struct {
	CompanyID               string // DID
	DisplayName             string
	SectionEncryptionSecret string // opaque handle into process config, never persisted verbatim
	CreatedAt               time.Time
}

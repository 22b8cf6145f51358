package entity

import "time"

// VPProof is the subset of a W3C verifiable presentation's proof object the
// session core checks: challenge/domain binding (spec.md §4.10).
type VPProof struct {
	Challenge string `json:"challenge"`
	Domain    string `json:"domain"`
}

// VPPayload is the decoded body of a presentation JWT: `header.payload.signature`,
// decoded without local signature verification (spec.md §9 — verification
// happens upstream at the Cloud Agent; the core only decodes claims already
// marked verified by C1).
type VPPayload struct {
	VP struct {
		Proof                VPProof  `json:"proof"`
		VerifiableCredential []string `json:"verifiableCredential"`
	} `json:"vp"`
}

// VCClaims is the decoded body of a single verifiable credential JWT nested
// inside a presentation. Only one of EmployeeRole/CISTraining/
// SecurityClearance is populated per credential, classified by shape
// (spec.md §4.10).
type VCClaims struct {
	Issuer  string `json:"iss"`
	Subject string `json:"sub"`
	VC      struct {
		CredentialSubject struct {
			PrismDID string `json:"prismDid"`

			// EmployeeRole shape.
			Role       string `json:"role"`
			Department string `json:"department"`
			FullName   string `json:"fullName"`
			Email      string `json:"email"`

			// CISTraining shape.
			TrainingYear      int       `json:"trainingYear"`
			CertificateNumber string    `json:"certificateNumber"`
			ExpiryDate        time.Time `json:"expiryDate"`

			// SecurityClearance shape.
			ClearanceLevel string `json:"clearanceLevel"`
		} `json:"credentialSubject"`
	} `json:"vc"`
}

// IsEmployeeRole reports whether this credential carries the EmployeeRole
// shape (role + department present).
func (c *VCClaims) IsEmployeeRole() bool {
	return c.VC.CredentialSubject.Role != "" && c.VC.CredentialSubject.Department != ""
}

// IsCISTraining reports whether this credential carries the CISTraining
// shape (trainingYear + certificateNumber present).
func (c *VCClaims) IsCISTraining() bool {
	return c.VC.CredentialSubject.TrainingYear != 0 && c.VC.CredentialSubject.CertificateNumber != ""
}

// IsSecurityClearance reports whether this credential carries the
// SecurityClearance shape (clearanceLevel present).
func (c *VCClaims) IsSecurityClearance() bool {
	return c.VC.CredentialSubject.ClearanceLevel != ""
}

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/port"
)

// LoginDomain is the fixed presentation domain for employee-portal logins
// (spec.md §4.10).
const LoginDomain = "employee-portal.techcorp.com"

// ConnectionResolver resolves a login identifier (email or DID string) to a
// known connectionID, per the persistent employee-to-connection mapping
// (spec.md §4.10 Initiate).
type ConnectionResolver interface {
	ResolveConnection(ctx context.Context, identifier string) (connectionID string, issuerDID string, err error)
}

// PendingAuthStore persists in-flight login attempts, keyed by
// PresentationID.
type PendingAuthStore interface {
	Put(ctx context.Context, p *entity.PendingAuth) error
	Get(ctx context.Context, presentationID string) (*entity.PendingAuth, error)
	Delete(ctx context.Context, presentationID string) error
}

// SessionStore persists authenticated sessions, keyed by SessionToken.
type SessionStore interface {
	Put(ctx context.Context, s *entity.Session) error
	Get(ctx context.Context, token string) (*entity.Session, error)
}

// AcceptedIssuers is the process-wide set of issuer DIDs whose credentials
// are trusted (spec.md §4.10 Issuer verification).
type AcceptedIssuers interface {
	Accepted(issuerDID string) bool
}

// StateMachine implements C10: initiate → poll → verify → session.
type StateMachine struct {
	cloudAgent port.CloudAgentClient
	resolver   ConnectionResolver
	pending    PendingAuthStore
	sessions   SessionStore
	issuers    AcceptedIssuers
	now        func() time.Time
}

// NewStateMachine constructs a StateMachine.
func NewStateMachine(cloudAgent port.CloudAgentClient, resolver ConnectionResolver, pending PendingAuthStore, sessions SessionStore, issuers AcceptedIssuers) *StateMachine {
	return &StateMachine{cloudAgent: cloudAgent, resolver: resolver, pending: pending, sessions: sessions, issuers: issuers, now: time.Now}
}

// Initiate starts a login attempt for the given identifier.
func (sm *StateMachine) Initiate(ctx context.Context, identifier string) (*entity.PendingAuth, error) {
	connectionID, _, err := sm.resolver.ResolveConnection(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("auth: resolve %q: %w", identifier, entity.ErrEmployeeNotFound)
	}

	challenge, err := randomHex(16) // 128-bit
	if err != nil {
		return nil, err
	}

	proofReq, err := sm.cloudAgent.CreateProofRequest(ctx, &port.CreateProofRequestRequest{
		ConnectionID: connectionID,
		Challenge:    challenge,
		Domain:       LoginDomain,
		Comment:      "employee-portal login",
	})
	if err != nil {
		return nil, fmt.Errorf("auth: create proof request: %w", entity.ErrUpstream)
	}

	now := sm.now()
	pending := &entity.PendingAuth{
		PresentationID: proofReq.PresentationID,
		ConnectionID:   connectionID,
		Challenge:      challenge,
		Domain:         LoginDomain,
		Identifier:     identifier,
		Status:         entity.LoginStatusPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(entity.PendingAuthTTL),
	}
	if err := sm.pending.Put(ctx, pending); err != nil {
		return nil, fmt.Errorf("auth: store pending auth: %w", err)
	}
	return pending, nil
}

// Poll checks upstream presentation state and advances the pending auth's
// status; it does not itself produce a session (that happens in Verify,
// called once the caller observes Status == LoginStatusReceived/Verified).
func (sm *StateMachine) Poll(ctx context.Context, presentationID string) (*entity.PendingAuth, error) {
	pending, err := sm.pending.Get(ctx, presentationID)
	if err != nil {
		return nil, entity.ErrPendingAuthNotFound
	}
	if pending.Expired(sm.now()) {
		return nil, entity.ErrSessionExpired
	}

	result, err := sm.cloudAgent.GetProofRequest(ctx, presentationID)
	if err != nil {
		return nil, fmt.Errorf("auth: poll proof request: %w", entity.ErrUpstream)
	}

	switch result.State {
	case "presentation-received":
		pending.Status = entity.LoginStatusReceived
	case "verified":
		pending.Status = entity.LoginStatusVerified
	case "abandoned":
		pending.Status = entity.LoginStatusFailed
	}
	if err := sm.pending.Put(ctx, pending); err != nil {
		return nil, fmt.Errorf("auth: update pending auth: %w", err)
	}
	return pending, nil
}

// Verify decodes the verified presentation's nested credentials, enforces
// challenge/domain binding and issuer acceptance, and issues a session
// token (spec.md §4.10 Verify).
func (sm *StateMachine) Verify(ctx context.Context, presentationID string) (*entity.Session, error) {
	pending, err := sm.pending.Get(ctx, presentationID)
	if err != nil {
		return nil, entity.ErrPendingAuthNotFound
	}
	if pending.Expired(sm.now()) {
		return nil, entity.ErrSessionExpired
	}

	result, err := sm.cloudAgent.GetProofRequest(ctx, presentationID)
	if err != nil {
		return nil, fmt.Errorf("auth: fetch presentation: %w", entity.ErrUpstream)
	}
	if result.State != "verified" || !result.Verified {
		return nil, entity.ErrChallengeMismatch
	}

	vp, err := DecodeVP(result.RawClaimsJWT)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(vp.VP.Proof.Challenge), []byte(pending.Challenge)) != 1 {
		return nil, entity.ErrChallengeMismatch
	}
	if subtle.ConstantTimeCompare([]byte(vp.VP.Proof.Domain), []byte(pending.Domain)) != 1 {
		return nil, entity.ErrDomainMismatch
	}

	session := &entity.Session{
		ConnectionID: pending.ConnectionID,
	}
	var employeeSubject string
	haveEmployeeRole := false

	for _, vcJWT := range vp.VP.VerifiableCredential {
		vc, err := DecodeVC(vcJWT)
		if err != nil {
			return nil, err
		}
		if !sm.issuers.Accepted(vc.Issuer) {
			return nil, entity.ErrInvalidIssuer
		}

		switch {
		case vc.IsEmployeeRole():
			session.Role = vc.VC.CredentialSubject.Role
			session.Department = vc.VC.CredentialSubject.Department
			session.FullName = vc.VC.CredentialSubject.FullName
			session.Email = vc.VC.CredentialSubject.Email
			session.EmployeeDID = vc.VC.CredentialSubject.PrismDID
			session.IssuerDID = vc.Issuer
			employeeSubject = vc.VC.CredentialSubject.PrismDID
			haveEmployeeRole = true

		case vc.IsCISTraining():
			if vc.VC.CredentialSubject.PrismDID != employeeSubject {
				continue
			}
			expiry := vc.VC.CredentialSubject.ExpiryDate
			session.HasTraining = expiry.After(sm.now())
			session.TrainingExpiryDate = &expiry

		case vc.IsSecurityClearance():
			if vc.VC.CredentialSubject.PrismDID != employeeSubject {
				continue
			}
			level, err := entity.ParseClassificationLevel(vc.VC.CredentialSubject.ClearanceLevel)
			if err == nil {
				session.ClearanceLevel = &level
			}
		}
	}

	if !haveEmployeeRole {
		return nil, entity.ErrEmployeeNotFound
	}

	token, err := randomHex(32) // 256-bit
	if err != nil {
		return nil, err
	}
	now := sm.now()
	session.SessionToken = token
	session.AuthenticatedAt = now
	session.LastActivity = now

	if err := sm.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("auth: store session: %w", err)
	}
	if err := sm.pending.Delete(ctx, presentationID); err != nil {
		return nil, fmt.Errorf("auth: delete pending auth: %w", err)
	}
	return session, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

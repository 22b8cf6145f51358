// Package resourceauth implements C11, the dual-VP Resource Authorization
// Core (spec.md §4.11): a second, resource-scoped proof flow layered on top
// of the employee login session, requiring both an enterprise-issued and a
// personal-wallet presentation to agree on the same challenge before a
// resource access decision is produced.
package resourceauth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/port"
	"github.com/techcorp/classified-doc-broker/internal/core/service/auth"
)

// PendingStore persists in-flight dual-VP authorization attempts, keyed by
// SessionID.
type PendingStore interface {
	Put(ctx context.Context, p *entity.PendingResourceAuthorization) error
	Get(ctx context.Context, sessionID string) (*entity.PendingResourceAuthorization, error)
	Delete(ctx context.Context, sessionID string) error
	All(ctx context.Context) []*entity.PendingResourceAuthorization
}

// PolicyLookup resolves a resourceID to its policy row (spec.md §6 resource
// policy table).
type PolicyLookup interface {
	Lookup(resourceID string) (entity.ResourcePolicy, bool)
}

// Engine implements C11's two-step dual-VP flow.
type Engine struct {
	cloudAgent port.CloudAgentClient
	resolver   auth.ConnectionResolver
	policies   PolicyLookup
	engine     port.PolicyEngine
	pending    PendingStore
	now        func() time.Time
}

// New constructs an Engine.
func New(cloudAgent port.CloudAgentClient, resolver auth.ConnectionResolver, policies PolicyLookup, engine port.PolicyEngine, pending PendingStore) *Engine {
	return &Engine{cloudAgent: cloudAgent, resolver: resolver, policies: policies, engine: engine, pending: pending, now: time.Now}
}

// Initiate starts a dual-VP authorization session (spec.md §4.11 step 1).
func (e *Engine) Initiate(ctx context.Context, resourceID, employeeIdentifier string) (*entity.PendingResourceAuthorization, error) {
	policy, ok := e.policies.Lookup(resourceID)
	if !ok {
		return nil, entity.ErrResourceNotFound
	}

	connectionID, _, err := e.resolver.ResolveConnection(ctx, employeeIdentifier)
	if err != nil {
		return nil, fmt.Errorf("resourceauth: resolve %q: %w", employeeIdentifier, entity.ErrEmployeeNotFound)
	}

	challenge, err := randomHex(16)
	if err != nil {
		return nil, err
	}
	domain := auth.LoginDomain

	proofReq, err := e.cloudAgent.CreateProofRequest(ctx, &port.CreateProofRequestRequest{
		ConnectionID: connectionID,
		Challenge:    challenge,
		Domain:       domain,
		Comment:      "resource authorization: enterprise VP for " + resourceID,
	})
	if err != nil {
		return nil, fmt.Errorf("resourceauth: create enterprise proof request: %w", entity.ErrUpstream)
	}

	now := e.now()
	pending := &entity.PendingResourceAuthorization{
		SessionID:                uuid.NewString(),
		ResourceID:               resourceID,
		Resource:                 policy,
		Challenge:                challenge,
		Domain:                   domain,
		EnterprisePresentationID: proofReq.PresentationID,
		Status:                   entity.ResourceAuthAwaitingEnterpriseVP,
		CreatedAt:                now,
		ExpiresAt:                now.Add(entity.PendingResourceAuthTTL),
	}
	if err := e.pending.Put(ctx, pending); err != nil {
		return nil, fmt.Errorf("resourceauth: store pending: %w", err)
	}
	return pending, nil
}

// Status polls the enterprise (and, once requested, personal) presentation
// state and advances pending.Status (spec.md §4.11 step 2).
func (e *Engine) Status(ctx context.Context, sessionID string) (*entity.PendingResourceAuthorization, error) {
	pending, err := e.pending.Get(ctx, sessionID)
	if err != nil {
		return nil, entity.ErrPendingResourceAuthNotFound
	}
	if pending.Expired(e.now()) {
		return nil, entity.ErrSessionExpired
	}

	if !pending.EnterpriseVPVerified {
		result, err := e.cloudAgent.GetProofRequest(ctx, pending.EnterprisePresentationID)
		if err != nil {
			return nil, fmt.Errorf("resourceauth: poll enterprise proof: %w", entity.ErrUpstream)
		}
		if result.State == "verified" && result.Verified {
			claims, err := e.extractClaims(result.RawClaimsJWT, pending.Challenge, pending.Domain)
			if err != nil {
				return nil, err
			}
			pending.EnterpriseVPVerified = true
			pending.EnterpriseVPClaims = claims
			pending.Status = entity.ResourceAuthEnterpriseVPVerified
		} else if result.State == "abandoned" {
			pending.Status = entity.ResourceAuthEnterpriseVPFailed
		}
	} else if pending.PersonalPresentationID != "" && !pending.PersonalVPVerified {
		result, err := e.cloudAgent.GetProofRequest(ctx, pending.PersonalPresentationID)
		if err != nil {
			return nil, fmt.Errorf("resourceauth: poll personal proof: %w", entity.ErrUpstream)
		}
		if result.State == "verified" && result.Verified {
			claims, err := e.extractClaims(result.RawClaimsJWT, pending.Challenge, pending.Domain)
			if err != nil {
				return nil, err
			}
			pending.PersonalVPVerified = true
			pending.PersonalVPClaims = claims
		}
	}

	if err := e.pending.Put(ctx, pending); err != nil {
		return nil, fmt.Errorf("resourceauth: update pending: %w", err)
	}
	return pending, nil
}

// RequestClearance sends the second, personal-wallet proof request over the
// same challenge/domain (spec.md §4.11 step 3).
func (e *Engine) RequestClearance(ctx context.Context, sessionID, personalConnectionID string) (*entity.PendingResourceAuthorization, error) {
	pending, err := e.pending.Get(ctx, sessionID)
	if err != nil {
		return nil, entity.ErrPendingResourceAuthNotFound
	}
	if pending.Expired(e.now()) {
		return nil, entity.ErrSessionExpired
	}
	if !pending.EnterpriseVPVerified {
		return nil, fmt.Errorf("resourceauth: enterprise VP not yet verified: %w", entity.ErrInputInvalid)
	}

	proofReq, err := e.cloudAgent.CreateProofRequest(ctx, &port.CreateProofRequestRequest{
		ConnectionID: personalConnectionID,
		Challenge:    pending.Challenge,
		Domain:       pending.Domain,
		Comment:      "resource authorization: personal clearance VP for " + pending.ResourceID,
	})
	if err != nil {
		return nil, fmt.Errorf("resourceauth: create personal proof request: %w", entity.ErrUpstream)
	}

	pending.PersonalPresentationID = proofReq.PresentationID
	pending.Status = entity.ResourceAuthAwaitingPersonalVP
	if err := e.pending.Put(ctx, pending); err != nil {
		return nil, fmt.Errorf("resourceauth: update pending: %w", err)
	}
	return pending, nil
}

// Verify decides the resource access question once both presentations have
// verified (spec.md §4.11 step 4, §8 invariant 8).
func (e *Engine) Verify(ctx context.Context, sessionID string) (*entity.ResourceAuthorizationResult, error) {
	pending, err := e.pending.Get(ctx, sessionID)
	if err != nil {
		return nil, entity.ErrPendingResourceAuthNotFound
	}
	if pending.Expired(e.now()) {
		return nil, entity.ErrSessionExpired
	}
	if !pending.EnterpriseVPVerified || !pending.PersonalVPVerified {
		return nil, fmt.Errorf("resourceauth: both presentations must verify: %w", entity.ErrInputInvalid)
	}

	clearance := pending.PersonalVPClaims.ClearanceLevel
	role := pending.EnterpriseVPClaims.Role
	department := pending.EnterpriseVPClaims.Department

	authorized, err := e.engine.Evaluate(pending.ResourceID, role, clearance)
	if err != nil {
		return nil, fmt.Errorf("resourceauth: evaluate policy: %w", err)
	}

	reason := "authorized"
	if !authorized {
		reason = denialReason(pending.Resource, role, clearance)
	}

	result := &entity.ResourceAuthorizationResult{
		Authorized:     authorized,
		Reason:         reason,
		EmployeeRole:   role,
		Department:     department,
		ClearanceLevel: clearance,
	}

	if authorized {
		pending.Status = entity.ResourceAuthAuthorized
	} else {
		pending.Status = entity.ResourceAuthDenied
	}
	pending.AuthorizationResult = result
	if err := e.pending.Put(ctx, pending); err != nil {
		return nil, fmt.Errorf("resourceauth: store result: %w", err)
	}
	return result, nil
}

func (e *Engine) extractClaims(rawVP, challenge, domain string) (*entity.VPClaims, error) {
	vp, err := auth.DecodeVP(rawVP)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(vp.VP.Proof.Challenge), []byte(challenge)) != 1 {
		return nil, entity.ErrChallengeMismatch
	}
	if subtle.ConstantTimeCompare([]byte(vp.VP.Proof.Domain), []byte(domain)) != 1 {
		return nil, entity.ErrDomainMismatch
	}

	claims := &entity.VPClaims{}
	for _, vcJWT := range vp.VP.VerifiableCredential {
		vc, err := auth.DecodeVC(vcJWT)
		if err != nil {
			return nil, err
		}
		switch {
		case vc.IsEmployeeRole():
			claims.Role = vc.VC.CredentialSubject.Role
			claims.Department = vc.VC.CredentialSubject.Department
		case vc.IsSecurityClearance():
			level, err := entity.ParseClassificationLevel(vc.VC.CredentialSubject.ClearanceLevel)
			if err == nil {
				claims.ClearanceLevel = level
			}
		}
	}
	if claims.ClearanceLevel == "" {
		claims.ClearanceLevel = entity.ClassificationInternal
	}
	return claims, nil
}

// denialReason reproduces spec.md §8 S5's literal wording. Clearance is
// checked first since that is the scenario the spec calls out by name;
// role is checked only once clearance already clears the bar.
func denialReason(resource entity.ResourcePolicy, role string, clearance entity.ClassificationLevel) string {
	if clearance.Rank() < resource.RequiredClearance.Rank() {
		return fmt.Sprintf("Insufficient clearance: %s < %s", clearance, resource.RequiredClearance)
	}
	if resource.RequiredRole != entity.AnyRole && role != resource.RequiredRole {
		return fmt.Sprintf("Insufficient role: %s requires %s", resource.RequiredRole, role)
	}
	return "role or clearance insufficient for resource"
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("resourceauth: random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

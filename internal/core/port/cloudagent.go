package port

import (
	"context"
	"time"
)

// CloudAgentClient defines the interface against a self-sovereign-identity
// Cloud Agent (ACA-Py style): DID lifecycle, DIDComm connections, and the
// issue/verify credential exchange. Two roles exist in the system
// (enterprise and tenant, spec.md §4.1) but both speak this same interface;
// only their base URL, API key and wallet ID differ.
//
// One interface per external system, with request/result structs instead of
// provider-specific DTOs leaking into the core.
type CloudAgentClient interface {
	// CreateDID creates (but does not yet publish) a DID for the given method.
	CreateDID(ctx context.Context, method string) (*DIDResult, error)

	// PublishDID anchors a previously created DID on its ledger/registry.
	PublishDID(ctx context.Context, did string) error

	// GetDID reports the current state of a previously created DID,
	// including whether ledger publication has completed.
	GetDID(ctx context.Context, did string) (*DIDResult, error)

	// CreateConnection starts a DIDComm connection invitation.
	CreateConnection(ctx context.Context, req *CreateConnectionRequest) (*ConnectionResult, error)

	// GetConnection retrieves the current state of a connection.
	GetConnection(ctx context.Context, connectionID string) (*ConnectionResult, error)

	// ListConnections lists all connections known to this agent.
	ListConnections(ctx context.Context) ([]*ConnectionResult, error)

	// DeleteConnection tears down a connection record on the agent.
	DeleteConnection(ctx context.Context, connectionID string) error

	// CreateProofRequest asks a connection to present a verifiable
	// presentation matching the given proof definition.
	CreateProofRequest(ctx context.Context, req *CreateProofRequestRequest) (*ProofRequestResult, error)

	// GetProofRequest polls the state of a previously issued proof request.
	GetProofRequest(ctx context.Context, presentationID string) (*ProofRequestResult, error)

	// CreateCredentialOffer issues a verifiable credential offer over an
	// established connection.
	CreateCredentialOffer(ctx context.Context, req *CreateCredentialOfferRequest) (*CredentialRecordResult, error)

	// GetCredentialRecord polls the state of a previously issued credential.
	GetCredentialRecord(ctx context.Context, credentialExchangeID string) (*CredentialRecordResult, error)

	// EnsureSchema publishes (or resolves an existing) credential schema
	// and its corresponding credential definition, idempotently.
	EnsureSchema(ctx context.Context, req *EnsureSchemaRequest) (*SchemaResult, error)
}

// DIDResult is the agent's response to DID creation.
type DIDResult struct {
	DID       string
	VerKey    string
	Published bool
}

// CreateConnectionRequest starts a new DIDComm connection.
type CreateConnectionRequest struct {
	Alias      string
	MyDID      string
	MultiUse   bool
	AutoAccept bool
}

// ConnectionResult reflects the agent's view of a DIDComm connection.
type ConnectionResult struct {
	ConnectionID string
	State        string // invitation, request, response, active, error
	TheirDID     string
	InvitationURL string
	CreatedAt    time.Time
}

// CreateProofRequestRequest asks for a presentation matching a set of
// attribute/predicate restrictions, anchored to a fresh challenge+domain
// pair (spec.md §4.1, §8 invariant on VP domain/challenge binding).
type CreateProofRequestRequest struct {
	ConnectionID    string
	Challenge       string
	Domain          string
	RequestedAttrs  map[string]AttributeRestriction
	Comment         string
}

// AttributeRestriction names an attribute and the credential schema(s) that
// may satisfy it.
type AttributeRestriction struct {
	Name           string
	RestrictionsDID []string
}

// ProofRequestResult is the state of a proof-request/presentation exchange.
type ProofRequestResult struct {
	PresentationID string
	State          string // request-sent, presentation-received, verified, abandoned
	Verified       bool
	RevealedAttrs  map[string]string
	IssuerDID      string
	RawClaimsJWT   string // the raw presented token, before any further decoding
}

// CreateCredentialOfferRequest issues a credential over an existing
// connection with the given attribute values.
type CreateCredentialOfferRequest struct {
	ConnectionID string
	SchemaID     string
	CredDefID    string
	Attributes   map[string]string
	Comment      string
}

// CredentialRecordResult is the state of a credential-issuance exchange.
type CredentialRecordResult struct {
	CredentialExchangeID string
	State                string // offer-sent, request-received, credential-issued, credential-acked
}

// EnsureSchemaRequest describes the credential schema to resolve-or-create.
type EnsureSchemaRequest struct {
	Name       string
	Version    string
	Attributes []string
}

// SchemaResult is the resolved schema/creddef pair.
type SchemaResult struct {
	SchemaID  string
	CredDefID string
}

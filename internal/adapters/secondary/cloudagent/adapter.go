// Package cloudagent implements C1: a REST client against a self-sovereign
// identity Cloud Agent (ACA-Py style), used for both the enterprise and
// tenant roles spec.md §4.1 describes. Grounded on the teacher's Documenso
// signing adapter (internal/adapters/secondary/signing/documenso): a thin
// *http.Client wrapper, one private method per endpoint, stdlib
// encoding/json for the wire format, and a uniform *entity.CloudAgentError
// failure shape ("cloud agent: <op>: status %d: %s").
package cloudagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/port"
)

// Adapter implements port.CloudAgentClient against one agent instance.
type Adapter struct {
	config     *Config
	httpClient *http.Client
}

// New creates a Cloud Agent REST client.
func New(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Adapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

func (a *Adapter) setAuthHeader(req *http.Request) {
	req.Header.Set("x-api-key", a.config.APIKey)
	if a.config.WalletID != "" {
		req.Header.Set("x-wallet-id", a.config.WalletID)
	}
}

// do marshals body (if non-nil), sends the request, and decodes the JSON
// response into out (if non-nil). A non-2xx response becomes an
// *entity.CloudAgentError wrapping entity.ErrUpstream.
func (a *Adapter) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cloudagent: marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("cloudagent: build request: %w", err)
	}
	a.setAuthHeader(httpReq)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("cloudagent: %s %s: %w", method, path, entity.ErrUpstream)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cloudagent: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &entity.CloudAgentError{Op: method + " " + path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("cloudagent: decode response: %w", err)
	}
	return nil
}

// CreateDID creates (but does not publish) a DID for the given method.
func (a *Adapter) CreateDID(ctx context.Context, method string) (*port.DIDResult, error) {
	var resp didResponse
	if err := a.do(ctx, http.MethodPost, "/did/create", createDIDRequest{Method: method, KeyType: "ed25519"}, &resp); err != nil {
		return nil, err
	}
	return &port.DIDResult{DID: resp.DID, VerKey: resp.VerKey, Published: resp.Published}, nil
}

// PublishDID anchors a previously created DID on its ledger/registry.
func (a *Adapter) PublishDID(ctx context.Context, did string) error {
	return a.do(ctx, http.MethodPost, "/did/"+did+"/publish", nil, nil)
}

// GetDID reports the current state of a previously created DID.
func (a *Adapter) GetDID(ctx context.Context, did string) (*port.DIDResult, error) {
	var resp didResponse
	if err := a.do(ctx, http.MethodGet, "/did/"+did, nil, &resp); err != nil {
		return nil, err
	}
	return &port.DIDResult{DID: resp.DID, VerKey: resp.VerKey, Published: resp.Published}, nil
}

// CreateConnection starts a DIDComm connection invitation.
func (a *Adapter) CreateConnection(ctx context.Context, req *port.CreateConnectionRequest) (*port.ConnectionResult, error) {
	var resp connectionResponse
	body := createConnectionRequest{
		Alias:      req.Alias,
		MyDID:      req.MyDID,
		MultiUse:   req.MultiUse,
		AutoAccept: req.AutoAccept,
	}
	if err := a.do(ctx, http.MethodPost, "/connections/create-invitation", body, &resp); err != nil {
		return nil, err
	}
	return connectionFromResponse(resp), nil
}

// GetConnection retrieves the current state of a connection.
func (a *Adapter) GetConnection(ctx context.Context, connectionID string) (*port.ConnectionResult, error) {
	var resp connectionResponse
	if err := a.do(ctx, http.MethodGet, "/connections/"+connectionID, nil, &resp); err != nil {
		return nil, err
	}
	return connectionFromResponse(resp), nil
}

// ListConnections lists all connections known to this agent.
func (a *Adapter) ListConnections(ctx context.Context) ([]*port.ConnectionResult, error) {
	var resp connectionListResponse
	if err := a.do(ctx, http.MethodGet, "/connections", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]*port.ConnectionResult, 0, len(resp.Results))
	for _, c := range resp.Results {
		out = append(out, connectionFromResponse(c))
	}
	return out, nil
}

// DeleteConnection tears down a connection record on the agent.
func (a *Adapter) DeleteConnection(ctx context.Context, connectionID string) error {
	err := a.do(ctx, http.MethodDelete, "/connections/"+connectionID, nil, nil)
	var cagErr *entity.CloudAgentError
	if asCloudAgentError(err, &cagErr) && cagErr.StatusCode == http.StatusForbidden {
		return &entity.InvalidStateForOperation{ConnectionID: connectionID}
	}
	return err
}

// CreateProofRequest asks a connection to present a verifiable
// presentation matching the given proof definition.
func (a *Adapter) CreateProofRequest(ctx context.Context, req *port.CreateProofRequestRequest) (*port.ProofRequestResult, error) {
	attrs := make(map[string]attributeRestrictionPayload, len(req.RequestedAttrs))
	for name, restriction := range req.RequestedAttrs {
		attrs[name] = attributeRestrictionPayload{Name: restriction.Name, RestrictionsDID: restriction.RestrictionsDID}
	}
	body := createProofRequestRequest{
		ConnectionID:   req.ConnectionID,
		Challenge:      req.Challenge,
		Domain:         req.Domain,
		RequestedAttrs: attrs,
		Comment:        req.Comment,
	}
	var resp proofRequestResponse
	if err := a.do(ctx, http.MethodPost, "/present-proof-2.0/send-request", body, &resp); err != nil {
		return nil, err
	}
	return proofResultFromResponse(resp), nil
}

// GetProofRequest polls the state of a previously issued proof request.
func (a *Adapter) GetProofRequest(ctx context.Context, presentationID string) (*port.ProofRequestResult, error) {
	var resp proofRequestResponse
	if err := a.do(ctx, http.MethodGet, "/present-proof-2.0/records/"+presentationID, nil, &resp); err != nil {
		return nil, err
	}
	return proofResultFromResponse(resp), nil
}

// CreateCredentialOffer issues a verifiable credential offer over an
// established connection.
func (a *Adapter) CreateCredentialOffer(ctx context.Context, req *port.CreateCredentialOfferRequest) (*port.CredentialRecordResult, error) {
	body := createCredentialOfferRequest{
		ConnectionID: req.ConnectionID,
		SchemaID:     req.SchemaID,
		CredDefID:    req.CredDefID,
		Attributes:   req.Attributes,
		Comment:      req.Comment,
	}
	var resp credentialRecordResponse
	if err := a.do(ctx, http.MethodPost, "/issue-credential-2.0/send-offer", body, &resp); err != nil {
		return nil, err
	}
	return &port.CredentialRecordResult{CredentialExchangeID: resp.CredentialExchangeID, State: resp.State}, nil
}

// GetCredentialRecord polls the state of a previously issued credential.
func (a *Adapter) GetCredentialRecord(ctx context.Context, credentialExchangeID string) (*port.CredentialRecordResult, error) {
	var resp credentialRecordResponse
	if err := a.do(ctx, http.MethodGet, "/issue-credential-2.0/records/"+credentialExchangeID, nil, &resp); err != nil {
		return nil, err
	}
	return &port.CredentialRecordResult{CredentialExchangeID: resp.CredentialExchangeID, State: resp.State}, nil
}

// EnsureSchema publishes (or resolves an existing) credential schema and its
// corresponding credential definition, idempotently.
func (a *Adapter) EnsureSchema(ctx context.Context, req *port.EnsureSchemaRequest) (*port.SchemaResult, error) {
	body := ensureSchemaRequest{Name: req.Name, Version: req.Version, Attributes: req.Attributes}
	var resp schemaResponse
	if err := a.do(ctx, http.MethodPost, "/schemas/ensure", body, &resp); err != nil {
		return nil, err
	}
	return &port.SchemaResult{SchemaID: resp.SchemaID, CredDefID: resp.CredDefID}, nil
}

func connectionFromResponse(resp connectionResponse) *port.ConnectionResult {
	return &port.ConnectionResult{
		ConnectionID:  resp.ConnectionID,
		State:         resp.State,
		TheirDID:      resp.TheirDID,
		InvitationURL: resp.InvitationURL,
		CreatedAt:     resp.CreatedAt,
	}
}

func proofResultFromResponse(resp proofRequestResponse) *port.ProofRequestResult {
	return &port.ProofRequestResult{
		PresentationID: resp.PresentationExchangeID,
		State:          resp.State,
		Verified:       resp.Verified == "true",
		RevealedAttrs:  resp.RevealedAttrs,
		IssuerDID:      resp.IssuerDID,
		RawClaimsJWT:   resp.PresentationJWT,
	}
}

func asCloudAgentError(err error, target **entity.CloudAgentError) bool {
	cagErr, ok := err.(*entity.CloudAgentError)
	if !ok {
		return false
	}
	*target = cagErr
	return true
}

var _ port.CloudAgentClient = (*Adapter)(nil)

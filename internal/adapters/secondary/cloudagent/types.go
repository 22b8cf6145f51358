package cloudagent

import "time"

type createDIDRequest struct {
	Method  string `json:"method"`
	KeyType string `json:"keyType"`
}

type didResponse struct {
	DID       string `json:"did"`
	VerKey    string `json:"verkey"`
	Published bool   `json:"published"`
}

type createConnectionRequest struct {
	Alias      string `json:"alias,omitempty"`
	MyDID      string `json:"myDid,omitempty"`
	MultiUse   bool   `json:"multiUse"`
	AutoAccept bool   `json:"autoAccept"`
}

type connectionResponse struct {
	ConnectionID  string    `json:"connectionId"`
	State         string    `json:"state"`
	TheirDID      string    `json:"theirDid,omitempty"`
	InvitationURL string    `json:"invitationUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type connectionListResponse struct {
	Results []connectionResponse `json:"results"`
}

type attributeRestrictionPayload struct {
	Name            string   `json:"name"`
	RestrictionsDID []string `json:"restrictionsDid,omitempty"`
}

type createProofRequestRequest struct {
	ConnectionID   string                                 `json:"connectionId"`
	Challenge      string                                 `json:"challenge"`
	Domain         string                                 `json:"domain"`
	RequestedAttrs map[string]attributeRestrictionPayload `json:"requestedAttributes"`
	Comment        string                                 `json:"comment,omitempty"`
}

type proofRequestResponse struct {
	PresentationExchangeID string            `json:"presentationExchangeId"`
	State                  string            `json:"state"`
	Verified               string            `json:"verified"`
	RevealedAttrs          map[string]string `json:"revealedAttributes,omitempty"`
	IssuerDID              string            `json:"issuerDid,omitempty"`
	PresentationJWT        string            `json:"presentationJwt,omitempty"`
}

type createCredentialOfferRequest struct {
	ConnectionID string            `json:"connectionId"`
	SchemaID     string            `json:"schemaId"`
	CredDefID    string            `json:"credDefId,omitempty"`
	Attributes   map[string]string `json:"attributes"`
	Comment      string            `json:"comment,omitempty"`
}

type credentialRecordResponse struct {
	CredentialExchangeID string `json:"credentialExchangeId"`
	State                string `json:"state"`
}

type ensureSchemaRequest struct {
	Name       string   `json:"name"`
	Version    string   `json:"version"`
	Attributes []string `json:"attributes"`
}

type schemaResponse struct {
	SchemaID  string `json:"schemaId"`
	CredDefID string `json:"credDefId"`
}

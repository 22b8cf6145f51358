package dto

import (
	"time"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// RegisterDocumentRequest is the body of POST /documents/register: a
// document whose encryption already happened upstream of the broker.
type RegisterDocumentRequest struct {
	DocumentDID          string         `json:"documentDID"`
	Title                string         `json:"title" binding:"required"`
	ClassificationLevel  string         `json:"classificationLevel" binding:"required"`
	ReleasableTo         []string       `json:"releasableTo" binding:"required"`
	ContentEncryptionKey string         `json:"contentEncryptionKey" binding:"required"`
	Metadata             map[string]any `json:"metadata,omitempty"`
}

// RegisterDocumentResponse is returned by POST /documents/register.
type RegisterDocumentResponse struct {
	DocumentDID string `json:"documentDID"`
}

// DocumentSummaryView is one entry of a discovery response.
type DocumentSummaryView struct {
	DocumentDID         string    `json:"documentDID"`
	Title               string    `json:"title"`
	ClassificationLevel string    `json:"classificationLevel"`
	CreatedAt           time.Time `json:"createdAt"`
}

// NewDocumentSummaryView projects a registry discovery result.
func NewDocumentSummaryView(s entity.DocumentSummary) DocumentSummaryView {
	return DocumentSummaryView{
		DocumentDID:         s.DocumentID,
		Title:               s.Title,
		ClassificationLevel: s.ClassificationLevel.String(),
		CreatedAt:           s.CreatedAt,
	}
}

// DiscoverDocumentsResponse is returned by GET /documents/discover.
type DiscoverDocumentsResponse struct {
	Documents      []DocumentSummaryView `json:"documents"`
	ClearanceLevel string                `json:"clearanceLevel"`
}

// UploadDocumentResponse is returned by POST /classified-documents/upload.
type UploadDocumentResponse struct {
	DocumentDID           string         `json:"documentDID"`
	OverallClassification string         `json:"overallClassification"`
	SectionCount          int            `json:"sectionCount"`
	ClearanceLevelStats   map[string]int `json:"clearanceLevelStats"`
}

// DownloadDocumentRequest is the body of POST /classified-documents/download,
// the legacy one-shot prepare+complete flow.
type DownloadDocumentRequest struct {
	DocumentDID        string `json:"documentDID" binding:"required"`
	RecipientPublicKey string `json:"recipientPublicKey" binding:"required"` // base64 X25519 key
	ConnectionID       string `json:"connectionId,omitempty"`
}

// EncryptionInfo describes how EncryptedDocument was sealed.
type EncryptionInfo struct {
	Nonce           string `json:"nonce"`
	ServerPublicKey string `json:"serverPublicKey"`
	ContentType     string `json:"contentType"`
}

// SectionSummaryView is the clearance-level summary attached to a legacy
// direct download response.
type SectionSummaryView struct {
	ClearanceLevelGranted string `json:"clearanceLevelGranted"`
}

// DownloadDocumentResponse is returned by POST /classified-documents/download.
type DownloadDocumentResponse struct {
	EphemeralDID      string             `json:"ephemeralDID"`
	EncryptedDocument string             `json:"encryptedDocument"` // base64
	EncryptionInfo    EncryptionInfo     `json:"encryptionInfo"`
	SectionSummary    SectionSummaryView `json:"sectionSummary"`
}

// PrepareDownloadRequest is the body of POST
// /documents/prepare-download/{documentDID}.
type PrepareDownloadRequest struct {
	RecipientDID string `json:"recipientDID,omitempty"`
}

// PrepareDownloadResponse is returned by POST
// /documents/prepare-download/{documentDID}.
type PrepareDownloadResponse struct {
	StorageID          string    `json:"storageId"`
	EphemeralDID       string    `json:"ephemeralDID"`
	ServiceEndpointURL string    `json:"serviceEndpointUrl"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

// CompleteDownloadRequest is the body of POST
// /documents/complete-download/{storageId}.
type CompleteDownloadRequest struct {
	X25519PublicKey string `json:"x25519PublicKey" binding:"required"` // base64
	ConnectionID    string `json:"connectionId,omitempty"`
}

// DeliveryView describes where the completed download can be picked up.
type DeliveryView struct {
	ServiceEndpointURL string `json:"serviceEndpointUrl"`
	ContentHash        string `json:"contentHash"`
}

// CompleteDownloadResponse is returned by POST
// /documents/complete-download/{storageId}.
type CompleteDownloadResponse struct {
	Delivery              DeliveryView `json:"delivery"`
	CredentialOfferIssued bool         `json:"credentialOffer"`
}

// Package download implements C9, the section-level download pipeline:
// authorize, project (decrypt-and-redact), stage an ephemeral pickup, and
// hand the wallet a delivery credential offer (spec.md §4.9).
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/port"
	"github.com/techcorp/classified-doc-broker/internal/core/service/ephemeral"
	"github.com/techcorp/classified-doc-broker/internal/core/service/redaction"
)

// Pipeline wires together C7 (registry lookup), C2 (blob store), C5
// (section crypto), C6 (redaction, one per format), C8 (ephemeral envelope)
// and C1 (the DocumentCopy credential offer).
//
// htmlRedactor is stateless and shared across requests. DOCX redaction is
// not: redaction.DOCXRedactor carries the specific original document's
// bytes, so it is constructed fresh per download rather than held in this
// struct (see project below).
type Pipeline struct {
	registry     port.DocumentRegistry
	storage      port.StorageAdapter
	crypto       port.SectionCrypto
	htmlRedactor port.Redactor
	cloudAgent   port.CloudAgentClient
	envelope     *ephemeral.Envelope
	ephStore     port.EphemeralStore
	prepared     port.PreparedDownloadStore
	baseURL      string
	now          func() time.Time
}

// New constructs a Pipeline. baseURL is the server's externally-reachable
// base URL, used to build the ephemeral pickup service endpoint.
func New(
	registry port.DocumentRegistry,
	storage port.StorageAdapter,
	crypto port.SectionCrypto,
	htmlRedactor port.Redactor,
	cloudAgent port.CloudAgentClient,
	envelope *ephemeral.Envelope,
	ephStore port.EphemeralStore,
	prepared port.PreparedDownloadStore,
	baseURL string,
) *Pipeline {
	return &Pipeline{
		registry:     registry,
		storage:      storage,
		crypto:       crypto,
		htmlRedactor: htmlRedactor,
		cloudAgent:   cloudAgent,
		envelope:     envelope,
		ephStore:     ephStore,
		prepared:     prepared,
		baseURL:      baseURL,
		now:          time.Now,
	}
}

// PrepareResult is the response shape for POST
// /documents/prepare-download/{documentDID}.
type PrepareResult struct {
	StorageID          string
	EphemeralDID       string
	ServiceEndpointURL string
	ExpiresAt          time.Time
}

// PrepareDownload runs steps 1-3 of spec.md §4.9: authorize, project, and
// stage an in-memory prepared-download record.
func (p *Pipeline) PrepareDownload(ctx context.Context, documentID, issuerDID, recipientDID string, clearance entity.ClassificationLevel) (*PrepareResult, error) {
	doc, err := p.registry.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// Step 1: authorize.
	if !releasableTo(doc.ReleasableTo, issuerDID) {
		return nil, entity.ErrAccessDenied
	}
	if !clearance.AtLeast(doc.OverallClassification) {
		return nil, entity.ErrAccessDenied
	}

	// Step 2: project.
	rendered, contentType, redactedRefs, err := p.project(ctx, doc, clearance)
	if err != nil {
		return nil, err
	}

	// Step 3: prepare.
	metadata, err := p.envelope.CreateDID(documentID, recipientDID, issuerDID, clearance, redactedRefs, entity.DefaultEphemeralTTL, entity.UnlimitedViews)
	if err != nil {
		return nil, err
	}
	if err := p.ephStore.PutMetadata(ctx, metadata); err != nil {
		return nil, fmt.Errorf("download: store ephemeral metadata: %w", err)
	}

	storageID := uuid.NewString()
	pickupID := uuid.NewString()
	now := p.now()
	staged := &entity.PreparedDownload{
		StorageID:        storageID,
		PickupID:         pickupID,
		DocumentID:       documentID,
		EphemeralDID:     metadata.EphemeralDID,
		RenderedBytes:    rendered,
		ContentType:      contentType,
		SourceFormat:     doc.Metadata.SectionMetadata.SourceFormat,
		ClearanceLevel:   clearance,
		RedactedSections: redactedRefs,
		RecipientDID:     recipientDID,
		IssuerDID:        issuerDID,
		CreatedAt:        now,
		ExpiresAt:        now.Add(entity.PreparedDownloadTTL),
	}
	if err := p.prepared.Put(ctx, staged); err != nil {
		return nil, fmt.Errorf("download: store prepared download: %w", err)
	}

	return &PrepareResult{
		StorageID:          storageID,
		EphemeralDID:       metadata.EphemeralDID,
		ServiceEndpointURL: p.baseURL + "/ephemeral-documents/content/" + pickupID,
		ExpiresAt:          staged.ExpiresAt,
	}, nil
}

// CompleteResult is the response shape for POST
// /documents/complete-download/{storageID}.
type CompleteResult struct {
	PickupID            string
	ServiceEndpointURL   string
	ContentHash          string
	CredentialOfferIssued bool
}

// CompleteDownload runs step 4 of spec.md §4.9: encrypt the staged bytes to
// the wallet's X25519 key, persist the pickup, and best-effort issue a
// DocumentCopy credential offer.
func (p *Pipeline) CompleteDownload(ctx context.Context, storageID string, walletPublicKey []byte, connectionID string) (*CompleteResult, error) {
	staged, ok := p.prepared.Get(ctx, storageID)
	if !ok {
		return nil, entity.ErrDocumentNotFound
	}
	if staged.Expired(p.now()) {
		_ = p.prepared.Delete(ctx, storageID)
		return nil, entity.ErrPickupExpired
	}

	walletKey, err := ephemeral.ParseWalletPublicKey(walletPublicKey)
	if err != nil {
		return nil, err
	}

	pickupID := staged.PickupID
	pickup, err := p.envelope.Stage(pickupID, staged.RenderedBytes, staged.ContentType, walletKey, staged.RecipientDID, staged.DocumentID, staged.EphemeralDID, entity.DefaultEphemeralTTL, entity.UnlimitedViews)
	if err != nil {
		return nil, err
	}
	if err := p.ephStore.PutPickup(ctx, pickup); err != nil {
		return nil, fmt.Errorf("download: store pickup: %w", err)
	}

	contentHash := sha256.Sum256(staged.RenderedBytes)
	endpoint := p.baseURL + "/ephemeral-documents/content/" + pickupID

	offerIssued := true
	if connectionID != "" {
		attrs := map[string]string{
			"ephemeralDID":             staged.EphemeralDID,
			"ephemeralServiceEndpoint": endpoint,
			"clearanceLevelGranted":    string(staged.ClearanceLevel),
			"contentHash":              hex.EncodeToString(contentHash[:]),
		}
		if _, err := p.cloudAgent.CreateCredentialOffer(ctx, &port.CreateCredentialOfferRequest{
			ConnectionID: connectionID,
			SchemaID:     "DocumentCopy",
			Attributes:   attrs,
			Comment:      "section-level download delivery",
		}); err != nil {
			// spec.md §4.9 failure modes: "unable to issue credential offer
			// (no DIDComm connection) -> warning only; document remains
			// accessible via the service endpoint."
			offerIssued = false
		}
	} else {
		offerIssued = false
	}

	_ = p.prepared.Delete(ctx, storageID)

	return &CompleteResult{
		PickupID:             pickupID,
		ServiceEndpointURL:    endpoint,
		ContentHash:           hex.EncodeToString(contentHash[:]),
		CredentialOfferIssued: offerIssued,
	}, nil
}

// Pickup implements step 5: GET /ephemeral-documents/content/{pickupID}.
func (p *Pipeline) Pickup(ctx context.Context, pickupID string) (*entity.EphemeralPickup, error) {
	pickup, ok := p.ephStore.GetPickup(ctx, pickupID)
	if !ok {
		return nil, entity.ErrPickupNotFound
	}
	if pickup.Expired(p.now()) {
		_ = p.ephStore.DeletePickup(ctx, pickupID)
		return nil, entity.ErrPickupExpired
	}
	if pickup.ViewsRemaining == 0 {
		_ = p.ephStore.DeletePickup(ctx, pickupID)
		return nil, entity.ErrPickupExpired
	}
	if pickup.ViewsRemaining != entity.UnlimitedViews {
		pickup.ViewsRemaining--
		_ = p.ephStore.PutPickup(ctx, pickup)
	}
	return pickup, nil
}

// project implements step 2: decrypt-and-redact for HTML, or DOCX
// in-place redaction when the original was retained.
func (p *Pipeline) project(ctx context.Context, doc *entity.Document, clearance entity.ClassificationLevel) (rendered []byte, contentType string, redacted []entity.RedactedSectionRef, err error) {
	format := doc.Metadata.SectionMetadata.SourceFormat

	if format == entity.SourceFormatDOCX && doc.Storage.OriginalFileID != "" {
		original, err := p.storage.Download(ctx, doc.Storage.OriginalFileID)
		if err != nil {
			return nil, "", nil, fmt.Errorf("download: fetch original: %w", entity.ErrUpstream)
		}
		pkg, err := p.fetchPackage(ctx, doc)
		if err != nil {
			return nil, "", nil, err
		}
		masterSecret, err := decodeMasterSecret(doc.ContentEncryptionKey)
		if err != nil {
			return nil, "", nil, err
		}
		projected, err := p.crypto.DecryptForUser(pkg, clearance, masterSecret)
		if err != nil {
			return nil, "", nil, err
		}
		// Each download's DOCXRedactor is built fresh against this
		// document's own original bytes (it carries no shared state).
		rendered, err := redaction.NewDOCXRedactor(original).Render(projected, entity.SourceFormatDOCX)
		if err != nil {
			return nil, "", nil, err
		}
		return rendered, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", redactedRefs(projected), nil
	}

	pkg, err := p.fetchPackage(ctx, doc)
	if err != nil {
		return nil, "", nil, err
	}
	masterSecret, err := decodeMasterSecret(doc.ContentEncryptionKey)
	if err != nil {
		return nil, "", nil, err
	}
	projected, err := p.crypto.DecryptForUser(pkg, clearance, masterSecret)
	if err != nil {
		return nil, "", nil, err
	}
	htmlBytes, err := p.htmlRedactor.Render(projected, entity.SourceFormatHTML)
	if err != nil {
		return nil, "", nil, err
	}
	return htmlBytes, "text/html; charset=utf-8", redactedRefs(projected), nil
}

func (p *Pipeline) fetchPackage(ctx context.Context, doc *entity.Document) (*entity.EncryptedSectionPackage, error) {
	raw, err := p.storage.Download(ctx, doc.Storage.PackageFileID)
	if err != nil {
		return nil, fmt.Errorf("download: fetch section package: %w", entity.ErrUpstream)
	}
	var pkg entity.EncryptedSectionPackage
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil, fmt.Errorf("download: decode section package: %w", entity.ErrUpstream)
	}
	return &pkg, nil
}

func redactedRefs(projected *entity.ProjectedSections) []entity.RedactedSectionRef {
	refs := make([]entity.RedactedSectionRef, 0, len(projected.Redacted))
	for _, r := range projected.Redacted {
		refs = append(refs, entity.RedactedSectionRef{SectionID: r.SectionID, Clearance: r.Clearance})
	}
	return refs
}

func releasableTo(companies []string, issuerDID string) bool {
	for _, c := range companies {
		if c == issuerDID {
			return true
		}
	}
	return false
}

func decodeMasterSecret(contentEncryptionKey string) ([]byte, error) {
	key, err := hex.DecodeString(contentEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("download: decode content encryption key: %w", entity.ErrInputInvalid)
	}
	return key, nil
}

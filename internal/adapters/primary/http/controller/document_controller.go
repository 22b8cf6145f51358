package controller

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/techcorp/classified-doc-broker/internal/adapters/primary/http/dto"
	"github.com/techcorp/classified-doc-broker/internal/adapters/primary/http/middleware"
	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/service/download"
	"github.com/techcorp/classified-doc-broker/internal/core/service/ingest"
	"github.com/techcorp/classified-doc-broker/internal/core/service/registry"
)

// maxUploadSize bounds POST /classified-documents/upload (spec.md §8:
// "upload exceeding 40 MB -> InputInvalid"); spec.md §6 Non-goals excludes
// resumable/chunked upload entirely.
const maxUploadSize = 40 << 20

// DocumentController exposes discovery, registration, upload, and the C9
// download pipeline over HTTP (spec.md §6 /documents/*,
// /classified-documents/*).
type DocumentController struct {
	registry *registry.Registry
	ingest   *ingest.Service
	pipeline *download.Pipeline
}

// NewDocumentController wires the registry, ingest service, and download
// pipeline this controller fronts.
func NewDocumentController(reg *registry.Registry, ing *ingest.Service, pipeline *download.Pipeline) *DocumentController {
	return &DocumentController{registry: reg, ingest: ing, pipeline: pipeline}
}

// RegisterRoutes mounts the controller's public and session-gated routes.
func (c *DocumentController) RegisterRoutes(public gin.IRouter, authenticated gin.IRouter) {
	public.GET("/documents/discover", c.discover)
	public.POST("/documents/register", c.register)
	public.POST("/classified-documents/upload", c.upload)

	authenticated.POST("/classified-documents/download", c.downloadDirect)
	authenticated.POST("/documents/prepare-download/:documentDID", c.prepareDownload)
	authenticated.POST("/documents/complete-download/:storageId", c.completeDownload)
}

func (c *DocumentController) discover(ctx *gin.Context) {
	issuerDID := ctx.Query("issuerDID")
	if issuerDID == "" {
		HandleError(ctx, fmt.Errorf("%w: issuerDID is required", entity.ErrInputInvalid))
		return
	}

	var clearance *entity.ClassificationLevel
	if raw := ctx.Query("clearanceLevel"); raw != "" {
		level, err := entity.ParseClassificationLevel(raw)
		if err != nil {
			HandleError(ctx, err)
			return
		}
		clearance = &level
	}

	summaries, err := c.registry.Discover(ctx.Request.Context(), issuerDID, clearance)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	views := make([]dto.DocumentSummaryView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, dto.NewDocumentSummaryView(s))
	}
	ctx.JSON(http.StatusOK, dto.DiscoverDocumentsResponse{
		Documents:      views,
		ClearanceLevel: entity.EffectiveClearance(clearance).String(),
	})
}

func (c *DocumentController) register(ctx *gin.Context) {
	var req dto.RegisterDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
		return
	}
	level, err := entity.ParseClassificationLevel(req.ClassificationLevel)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	doc, err := c.registry.Register(ctx.Request.Context(), registry.RegisterParams{
		DocumentID:            req.DocumentDID,
		Title:                 req.Title,
		OverallClassification: level,
		ReleasableTo:          req.ReleasableTo,
		ContentEncryptionKey:  req.ContentEncryptionKey,
		Metadata:              entity.DocumentMetadata{Custom: req.Metadata},
	})
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.RegisterDocumentResponse{DocumentDID: doc.DocumentID})
}

func (c *DocumentController) upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
		return
	}
	if fileHeader.Size > maxUploadSize {
		HandleError(ctx, entity.ErrFileTooLarge)
		return
	}

	releasableTo := ctx.PostFormArray("releasableTo")
	if len(releasableTo) == 0 {
		HandleError(ctx, fmt.Errorf("%w: releasableTo is required", entity.ErrInputInvalid))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
		return
	}

	format := formatFromFilename(fileHeader.Filename)
	result, err := c.ingest.Upload(ctx.Request.Context(), ingest.UploadParams{
		Raw:              raw,
		Format:           format,
		ReleasableTo:     releasableTo,
		Department:       ctx.PostForm("department"),
		AuthorID:         ctx.PostForm("authorId"),
		OriginalFilename: fileHeader.Filename,
		RetainOriginal:   format == entity.SourceFormatDOCX,
	})
	if err != nil {
		HandleError(ctx, err)
		return
	}

	stats := make(map[string]int, len(result.PerLevelCounts))
	total := 0
	for level, count := range result.PerLevelCounts {
		stats[level.String()] = count
		total += count
	}
	ctx.JSON(http.StatusOK, dto.UploadDocumentResponse{
		DocumentDID:           result.Document.DocumentID,
		OverallClassification: result.Document.OverallClassification.String(),
		SectionCount:          total,
		ClearanceLevelStats:   stats,
	})
}

func formatFromFilename(name string) entity.SourceFormat {
	if strings.HasSuffix(strings.ToLower(name), ".docx") {
		return entity.SourceFormatDOCX
	}
	return entity.SourceFormatHTML
}

// downloadDirect is the legacy one-shot prepare+complete+pickup flow kept
// for clients that predate the split /documents/prepare-download and
// /documents/complete-download endpoints. All three C9 steps are folded into
// one request/response here; the request's ConnectionID, when present, is
// used as the recipient identifier, and the session's EmployeeDID otherwise.
func (c *DocumentController) downloadDirect(ctx *gin.Context) {
	session, ok := middleware.GetSession(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	var req dto.DownloadDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
		return
	}
	walletKey, err := base64.StdEncoding.DecodeString(req.RecipientPublicKey)
	if err != nil {
		HandleError(ctx, entity.ErrMalformedPublicKey)
		return
	}

	recipientDID := req.ConnectionID
	if recipientDID == "" {
		recipientDID = session.EmployeeDID
	}

	prepared, err := c.pipeline.PrepareDownload(ctx.Request.Context(), req.DocumentDID, session.IssuerDID, recipientDID, session.EffectiveClearance())
	if err != nil {
		HandleError(ctx, err)
		return
	}
	completed, err := c.pipeline.CompleteDownload(ctx.Request.Context(), prepared.StorageID, walletKey, req.ConnectionID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	pickup, err := c.pipeline.Pickup(ctx.Request.Context(), completed.PickupID)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.DownloadDocumentResponse{
		EphemeralDID:      prepared.EphemeralDID,
		EncryptedDocument: base64.StdEncoding.EncodeToString(pickup.EncryptedContent),
		EncryptionInfo: dto.EncryptionInfo{
			Nonce:           base64.StdEncoding.EncodeToString(pickup.Nonce),
			ServerPublicKey: base64.StdEncoding.EncodeToString(pickup.ServerPublicKey),
			ContentType:     pickup.ContentType,
		},
		SectionSummary: dto.SectionSummaryView{
			ClearanceLevelGranted: session.EffectiveClearance().String(),
		},
	})
}

func (c *DocumentController) prepareDownload(ctx *gin.Context) {
	session, ok := middleware.GetSession(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	documentDID := ctx.Param("documentDID")

	var req dto.PrepareDownloadRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
			return
		}
	}
	recipientDID := req.RecipientDID
	if recipientDID == "" {
		recipientDID = session.EmployeeDID
	}

	result, err := c.pipeline.PrepareDownload(ctx.Request.Context(), documentDID, session.IssuerDID, recipientDID, session.EffectiveClearance())
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.PrepareDownloadResponse{
		StorageID:          result.StorageID,
		EphemeralDID:       result.EphemeralDID,
		ServiceEndpointURL: result.ServiceEndpointURL,
		ExpiresAt:          result.ExpiresAt,
	})
}

func (c *DocumentController) completeDownload(ctx *gin.Context) {
	storageID := ctx.Param("storageId")
	var req dto.CompleteDownloadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
		return
	}
	walletKey, err := base64.StdEncoding.DecodeString(req.X25519PublicKey)
	if err != nil {
		HandleError(ctx, entity.ErrMalformedPublicKey)
		return
	}

	result, err := c.pipeline.CompleteDownload(ctx.Request.Context(), storageID, walletKey, req.ConnectionID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.CompleteDownloadResponse{
		Delivery: dto.DeliveryView{
			ServiceEndpointURL: result.ServiceEndpointURL,
			ContentHash:        result.ContentHash,
		},
		CredentialOfferIssued: result.CredentialOfferIssued,
	})
}

package controller

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techcorp/classified-doc-broker/internal/adapters/primary/http/dto"
	"github.com/techcorp/classified-doc-broker/internal/core/service/download"
)

// EphemeralController serves the wallet-facing pickup leg of C9, step 5
// (spec.md §4.9, §6 /ephemeral-documents/content/{pickupId}). Possession of
// the unguessable pickup ID is the only credential required here — the
// document itself was encrypted to the wallet's X25519 key during
// /documents/complete-download.
type EphemeralController struct {
	pipeline *download.Pipeline
}

// NewEphemeralController wires the download pipeline this controller reads
// pickups from.
func NewEphemeralController(pipeline *download.Pipeline) *EphemeralController {
	return &EphemeralController{pipeline: pipeline}
}

// RegisterRoutes mounts the controller's public pickup route.
func (c *EphemeralController) RegisterRoutes(public gin.IRouter) {
	public.GET("/ephemeral-documents/content/:pickupId", c.content)
}

func (c *EphemeralController) content(ctx *gin.Context) {
	pickupID := ctx.Param("pickupId")
	pickup, err := c.pipeline.Pickup(ctx.Request.Context(), pickupID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.EphemeralContentResponse{
		EncryptedContent: base64.StdEncoding.EncodeToString(pickup.EncryptedContent),
		Nonce:            base64.StdEncoding.EncodeToString(pickup.Nonce),
		ServerPublicKey:  base64.StdEncoding.EncodeToString(pickup.ServerPublicKey),
		ContentType:      pickup.ContentType,
		ExpiresAt:        pickup.ExpiresAt,
	})
}

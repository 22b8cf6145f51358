package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techcorp/classified-doc-broker/internal/adapters/primary/http/dto"
	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/service/resourceauth"
)

// ResourceAuthController exposes the C11 dual-VP resource authorization
// flow over HTTP (spec.md §6 /resource/authorize/*).
type ResourceAuthController struct {
	engine *resourceauth.Engine
}

// NewResourceAuthController wires the C11 engine this controller fronts.
func NewResourceAuthController(engine *resourceauth.Engine) *ResourceAuthController {
	return &ResourceAuthController{engine: engine}
}

// RegisterRoutes mounts the controller's session-gated routes; resource
// authorization always runs on behalf of an already-logged-in employee.
func (c *ResourceAuthController) RegisterRoutes(authenticated gin.IRouter) {
	authenticated.POST("/resource/authorize/initiate", c.initiate)
	authenticated.GET("/resource/authorize/status/:sessionId", c.status)
	authenticated.POST("/resource/authorize/request-clearance/:sessionId", c.requestClearance)
	authenticated.POST("/resource/authorize/verify/:sessionId", c.verify)
}

func (c *ResourceAuthController) initiate(ctx *gin.Context) {
	var req dto.InitiateResourceAuthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
		return
	}
	pending, err := c.engine.Initiate(ctx.Request.Context(), req.ResourceID, req.EmployeeID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.InitiateResourceAuthResponse{
		SessionID:                pending.SessionID,
		EnterprisePresentationID: pending.EnterprisePresentationID,
	})
}

func (c *ResourceAuthController) status(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")
	pending, err := c.engine.Status(ctx.Request.Context(), sessionID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ResourceAuthStatusResponse{
		Status:               string(pending.Status),
		EnterpriseVPVerified: pending.EnterpriseVPVerified,
		PersonalVPReceived:   pending.PersonalVPVerified,
	})
}

func (c *ResourceAuthController) requestClearance(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")
	var req dto.RequestClearanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
		return
	}
	pending, err := c.engine.RequestClearance(ctx.Request.Context(), sessionID, req.PersonalWalletConnectionID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.RequestClearanceResponse{PersonalPresentationID: pending.PersonalPresentationID})
}

func (c *ResourceAuthController) verify(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")
	result, err := c.engine.Verify(ctx.Request.Context(), sessionID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.VerifyResourceAuthResponse{
		Authorized: result.Authorized,
		Reason:     result.Reason,
		Result: dto.ResourceAuthResultView{
			EmployeeRole:   result.EmployeeRole,
			Department:     result.Department,
			ClearanceLevel: result.ClearanceLevel.String(),
		},
	})
}

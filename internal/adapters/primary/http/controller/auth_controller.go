package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techcorp/classified-doc-broker/internal/adapters/primary/http/dto"
	"github.com/techcorp/classified-doc-broker/internal/adapters/primary/http/middleware"
	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/service/auth"
)

// sessionDeleter is the subset of the session store the logout handler
// needs beyond what middleware.SessionAuth requires.
type sessionDeleter interface {
	Delete(ctx context.Context, token string) error
}

// AuthController exposes the C10 login state machine over HTTP (spec.md §6
// /auth/* and /profile).
type AuthController struct {
	machine  *auth.StateMachine
	sessions sessionDeleter
}

// NewAuthController wires a StateMachine, and a session store able to
// delete a token for /auth/logout.
func NewAuthController(machine *auth.StateMachine, sessions sessionDeleter) *AuthController {
	return &AuthController{machine: machine, sessions: sessions}
}

// RegisterRoutes mounts the controller's public and session-gated routes.
func (c *AuthController) RegisterRoutes(public gin.IRouter, authenticated gin.IRouter) {
	public.POST("/auth/initiate", c.initiate)
	public.GET("/auth/status/:presentationId", c.status)
	public.POST("/auth/verify", c.verify)

	authenticated.GET("/profile", c.profile)
	authenticated.POST("/auth/logout", c.logout)
}

func (c *AuthController) initiate(ctx *gin.Context) {
	var req dto.InitiateLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
		return
	}
	pending, err := c.machine.Initiate(ctx.Request.Context(), req.Identifier)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.InitiateLoginResponse{
		PresentationID: pending.PresentationID,
		Status:         string(pending.Status),
	})
}

func (c *AuthController) status(ctx *gin.Context) {
	presentationID := ctx.Param("presentationId")
	pending, err := c.machine.Poll(ctx.Request.Context(), presentationID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.LoginStatusResponse{Status: string(pending.Status)})
}

func (c *AuthController) verify(ctx *gin.Context) {
	var req dto.VerifyLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		HandleError(ctx, fmt.Errorf("%w: %s", entity.ErrInputInvalid, err))
		return
	}
	session, err := c.machine.Verify(ctx.Request.Context(), req.PresentationID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.VerifyLoginResponse{
		SessionToken: session.SessionToken,
		Employee:     dto.NewEmployeeView(session),
		Training:     dto.NewTrainingView(session),
	})
}

func (c *AuthController) profile(ctx *gin.Context) {
	session, ok := middleware.GetSession(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	ctx.JSON(http.StatusOK, dto.ProfileResponse{
		Employee:  dto.NewEmployeeView(session),
		Clearance: session.EffectiveClearance().String(),
		Training:  dto.NewTrainingView(session),
	})
}

func (c *AuthController) logout(ctx *gin.Context) {
	session, ok := middleware.GetSession(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	if err := c.sessions.Delete(ctx.Request.Context(), session.SessionToken); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

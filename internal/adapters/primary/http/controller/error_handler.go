package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techcorp/classified-doc-broker/internal/adapters/primary/http/dto"
	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// respondError sends an error response.
func respondError(ctx *gin.Context, statusCode int, err error) {
	ctx.JSON(statusCode, dto.NewErrorResponse(err))
}

// HandleError maps the sentinel error catalogue in entity/errors.go to HTTP
// status codes per spec.md §7's error-kind table.
func HandleError(ctx *gin.Context, err error) {
	var invalidState *entity.InvalidStateForOperation
	if errors.As(err, &invalidState) {
		respondError(ctx, http.StatusConflict, err)
		return
	}

	var cloudAgentErr *entity.CloudAgentError
	if errors.As(err, &cloudAgentErr) {
		respondError(ctx, http.StatusBadGateway, err)
		return
	}

	var statusCode int

	switch {
	// 400 Bad Request - malformed input or presentation binding mismatch.
	case errors.Is(err, entity.ErrInputInvalid),
		errors.Is(err, entity.ErrFileTooLarge),
		errors.Is(err, entity.ErrNoTaggedContent),
		errors.Is(err, entity.ErrUnknownClearanceLevel),
		errors.Is(err, entity.ErrMalformedPublicKey),
		errors.Is(err, entity.ErrChallengeMismatch),
		errors.Is(err, entity.ErrDomainMismatch),
		errors.Is(err, entity.ErrInvalidIssuer),
		errors.Is(err, entity.ErrMissingSessionToken):
		statusCode = http.StatusBadRequest

	// 401 Unauthorized - no or expired session.
	case errors.Is(err, entity.ErrUnauthorized),
		errors.Is(err, entity.ErrSessionExpired):
		statusCode = http.StatusUnauthorized

	// 403 Forbidden - authenticated, but not entitled to this resource.
	case errors.Is(err, entity.ErrForbidden),
		errors.Is(err, entity.ErrAccessDenied):
		statusCode = http.StatusForbidden

	// 404 Not Found - record never existed.
	case errors.Is(err, entity.ErrDocumentNotFound),
		errors.Is(err, entity.ErrSessionNotFound),
		errors.Is(err, entity.ErrPickupNotFound),
		errors.Is(err, entity.ErrPendingAuthNotFound),
		errors.Is(err, entity.ErrPendingResourceAuthNotFound),
		errors.Is(err, entity.ErrResourceNotFound),
		errors.Is(err, entity.ErrShortURLNotFound),
		errors.Is(err, entity.ErrEmployeeNotFound):
		statusCode = http.StatusNotFound

	// 409 Conflict - the resource exists but is in a conflicting state.
	case errors.Is(err, entity.ErrConflict):
		statusCode = http.StatusConflict

	// 410 Gone - record existed but has since expired or been withdrawn.
	case errors.Is(err, entity.ErrPickupExpired),
		errors.Is(err, entity.ErrShortURLExpired),
		errors.Is(err, entity.ErrDocumentGone):
		statusCode = http.StatusGone

	// 502 Bad Gateway - an upstream Cloud Agent or blob store call failed.
	case errors.Is(err, entity.ErrUpstream):
		statusCode = http.StatusBadGateway

	// 500 Internal Server Error - integrity or crypto invariants broken.
	case errors.Is(err, entity.ErrIntegrityViolation),
		errors.Is(err, entity.ErrSectionDecryptFailed),
		errors.Is(err, entity.ErrZipIntegrity),
		errors.Is(err, entity.ErrMalformedDocumentXML):
		statusCode = http.StatusInternalServerError
		slog.ErrorContext(ctx.Request.Context(), "integrity invariant violated", slog.Any("error", err))

	default:
		statusCode = http.StatusInternalServerError
		slog.ErrorContext(ctx.Request.Context(), "unhandled error", slog.Any("error", err))
	}

	respondError(ctx, statusCode, err)
}

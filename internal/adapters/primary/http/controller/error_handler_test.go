package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestHandleError_MapsSentinelsToStatusCodes covers spec.md §7's error-kind
// table: every sentinel must translate to its documented HTTP status.
func TestHandleError_MapsSentinelsToStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input invalid", entity.ErrInputInvalid, http.StatusBadRequest},
		{"file too large", entity.ErrFileTooLarge, http.StatusBadRequest},
		{"challenge mismatch", entity.ErrChallengeMismatch, http.StatusBadRequest},
		{"unauthorized", entity.ErrUnauthorized, http.StatusUnauthorized},
		{"session expired", entity.ErrSessionExpired, http.StatusUnauthorized},
		{"access denied", entity.ErrAccessDenied, http.StatusForbidden},
		{"document not found", entity.ErrDocumentNotFound, http.StatusNotFound},
		{"conflict", entity.ErrConflict, http.StatusConflict},
		{"pickup expired", entity.ErrPickupExpired, http.StatusGone},
		{"document gone", entity.ErrDocumentGone, http.StatusGone},
		{"upstream", entity.ErrUpstream, http.StatusBadGateway},
		{"integrity violation", entity.ErrIntegrityViolation, http.StatusInternalServerError},
		{"unmapped error", assertAnError{}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(ctx, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandleError_InvalidStateForOperationIsConflict(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(ctx, &entity.InvalidStateForOperation{ConnectionID: "conn-1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleError_CloudAgentErrorIsBadGateway(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(ctx, &entity.CloudAgentError{Op: "GetProofRequest", StatusCode: 503, Body: "unavailable"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

type assertAnError struct{}

func (assertAnError) Error() string { return "some unmapped error" }

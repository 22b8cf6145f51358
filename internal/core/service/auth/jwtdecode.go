package auth

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// claimsAdapter satisfies jwt.Claims for a plain payload struct that carries
// no registered claims (exp/iat/iss) worth validating — only the custom
// vp/vc payload itself, decoded via its json tags.
type claimsAdapter struct {
	payload any
}

func (c *claimsAdapter) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (c *claimsAdapter) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c *claimsAdapter) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c *claimsAdapter) GetIssuer() (string, error)                  { return "", nil }
func (c *claimsAdapter) GetSubject() (string, error)                 { return "", nil }
func (c *claimsAdapter) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// UnmarshalJSON delegates to the wrapped payload so
// jwt.ParseUnverified's internal json.Unmarshal fills it directly.
func (c *claimsAdapter) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, c.payload)
}

// decodeUnverified decodes a presentation or credential JWT's claims without
// checking its signature: signature verification already happened upstream
// at the Cloud Agent before C1 reported the presentation as verified, so
// ParseUnverified is the only path here — not a dev-mode fallback (spec.md
// §9). Grounded on jwt_auth.go's ParseUnverified branch, here made the sole
// code path rather than one of two.
func decodeUnverified(tokenString string, payload any) error {
	adapter := &claimsAdapter{payload: payload}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, adapter)
	if err != nil {
		return fmt.Errorf("auth: decode jwt: %w", err)
	}
	return nil
}

// DecodeVP decodes a presentation JWT's vp payload.
func DecodeVP(tokenString string) (*entity.VPPayload, error) {
	var payload entity.VPPayload
	if err := decodeUnverified(tokenString, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DecodeVC decodes a single verifiable credential JWT nested inside a
// presentation.
func DecodeVC(tokenString string) (*entity.VCClaims, error) {
	var claims entity.VCClaims
	if err := decodeUnverified(tokenString, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

package dto

import "time"

// EphemeralContentResponse is returned by GET
// /ephemeral-documents/content/{pickupId}.
type EphemeralContentResponse struct {
	EncryptedContent string    `json:"encryptedContent"` // base64
	Nonce            string    `json:"nonce"`            // base64
	ServerPublicKey  string    `json:"serverPublicKey"`  // base64
	ContentType      string    `json:"contentType"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

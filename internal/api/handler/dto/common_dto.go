package dto

import "encoding/json"

// Response is the uniform envelope every endpoint returns. Error responses
// carry a machine-readable kind prefix in message (e.g. "ITEM_UNAVAILABLE: ...")
// so clients never parse free-form text.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type TokenRequest struct {
	Email string `json:"email"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// internal/models/models.go
package models

import "github.com/google/uuid"

// User is the identity resolved from a bearer token by the external
// identity provider. The service never stores users itself.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
}

// Profile is a user's profile row as held by the data store.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  *string   `json:"username,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Credits   int       `json:"credits"`
}

// GameState is the public aggregate state of the game. It is transient;
// the authoritative copy lives in the data store's game_state row.
type GameState struct {
	PrizepoolAmount     float64 `json:"prizepool_amount"`
	IsPayoutPhaseActive bool    `json:"is_payout_phase_active"`
}

// ChatMessage is one prompt/response pair from a winning conversation.
type ChatMessage struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// HandleWinRequest carries the full winning chat transcript, in order.
type HandleWinRequest struct {
	ChatLog []ChatMessage `json:"chat_log" binding:"required"`
}

// CreditPack is a purchasable credit bundle, read-only to this service.
type CreditPack struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CreditsAmount int       `json:"credits_amount"`
	Price         float64   `json:"price"`
}

// PurchaseResult is what the atomic purchase_credits procedure returns.
type PurchaseResult struct {
	PurchaseID        uuid.UUID `json:"purchase_id"`
	NewCreditsBalance int       `json:"new_credits_balance"`
}

// LogAttemptResponse is returned by POST /log_attempt.
type LogAttemptResponse struct {
	IsPayoutPhaseActive bool `json:"is_payout_phase_active"`
}

// HandleWinResponse is returned by POST /handle_win.
type HandleWinResponse struct {
	Status string    `json:"status"`
	WinID  uuid.UUID `json:"win_id"`
}

// PurchaseResponse is returned by POST /credit_packs/{pack_id}/purchase.
type PurchaseResponse struct {
	Status            string    `json:"status"`
	PurchaseID        uuid.UUID `json:"purchase_id"`
	NewCreditsBalance int       `json:"new_credits_balance"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

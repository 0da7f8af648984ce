// internal/handlers/handlers.go

// Package handlers wires the HTTP surface: one gin handler per
// endpoint, each validating input, calling the data store or the payout
// cache, and mapping outcomes onto typed responses or {"detail": ...}
// error bodies.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/newambition/convince/internal/database"
	"github.com/newambition/convince/internal/models"
)

// Store is the data-store contract the handlers depend on. Satisfied by
// *database.Store.
type Store interface {
	GameState(ctx context.Context) (models.GameState, error)
	GlobalAttempts(ctx context.Context) (int64, error)
	Profile(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	LogAttempt(ctx context.Context, userID uuid.UUID) (bool, error)
	CreateWinningChatLog(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	InsertWinningChatMessages(ctx context.Context, logID uuid.UUID, messages []models.ChatMessage) error
	DeleteWinningChatLog(ctx context.Context, logID uuid.UUID) error
	InsertWin(ctx context.Context, userID uuid.UUID, globalAttempts int64, logID uuid.UUID) (uuid.UUID, error)
	ResetGame(ctx context.Context) error
	CreditPacks(ctx context.Context) ([]models.CreditPack, error)
	PurchaseCredits(ctx context.Context, userID, packID uuid.UUID) (models.PurchaseResult, error)
}

// PayoutCache is the slice of the payout cache the win flow needs.
type PayoutCache interface {
	Invalidate()
}

// Authenticator resolves bearer credentials to user identities.
type Authenticator interface {
	ResolveUser(ctx context.Context, token string) (models.User, error)
}

// Handler bundles the collaborators every endpoint orchestrates.
type Handler struct {
	store Store
	cache PayoutCache
	auth  Authenticator
}

// New creates a Handler.
func New(store Store, cache PayoutCache, auth Authenticator) *Handler {
	return &Handler{store: store, cache: cache, auth: auth}
}

// Register mounts all game endpoints under /api/v1. Public reads skip
// the auth middleware entirely.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")

	v1.GET("/game_state", h.GetGameState)
	v1.GET("/credit_packs", h.ListCreditPacks)

	authed := v1.Group("", h.RequireUser())
	authed.GET("/me/profile", h.GetMyProfile)
	authed.POST("/log_attempt", h.LogAttempt)
	authed.POST("/handle_win", h.HandleWin)
	authed.POST("/credit_packs/:pack_id/purchase", h.PurchaseCreditPack)
}

// GetGameState returns the current public state of the game.
func (h *Handler) GetGameState(c *gin.Context) {
	state, err := h.store.GameState(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Error fetching game state")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Failed to fetch game state."})
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetMyProfile returns the profile of the authenticated user.
func (h *Handler) GetMyProfile(c *gin.Context) {
	user := currentUser(c)
	profile, err := h.store.Profile(c.Request.Context(), user.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Error fetching profile")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Failed to fetch user profile."})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// LogAttempt records one attempt via the atomic log_attempt procedure
// and reports the payout-phase flag it returns.
func (h *Handler) LogAttempt(c *gin.Context) {
	user := currentUser(c)
	active, err := h.store.LogAttempt(c.Request.Context(), user.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Error in log_attempt")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "An internal error occurred while processing the attempt."})
		return
	}
	c.JSON(http.StatusOK, models.LogAttemptResponse{IsPayoutPhaseActive: active})
}

// HandleWin runs the five-step win sequence: chat log, transcript,
// attempt snapshot, win record, atomic game reset. Any failure after
// step 1 triggers best-effort compensation (the step-1 log row is
// deleted; message rows cascade on the backend) before the error is
// returned. A step-5 failure leaves the already-persisted win record in
// place; compensation never touches it.
func (h *Handler) HandleWin(c *gin.Context) {
	var req models.HandleWinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Invalid win request body."})
		return
	}

	user := currentUser(c)
	ctx := c.Request.Context()

	logID, err := h.store.CreateWinningChatLog(ctx, user.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Error in handle_win: create chat log")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "An error occurred during win processing."})
		return
	}

	fail := func(step string, err error) {
		log.WithError(err).WithFields(log.Fields{
			"user_id": user.ID,
			"log_id":  logID,
		}).Errorf("Error in handle_win: %s", step)
		h.compensateWin(ctx, logID)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "An error occurred during win processing."})
	}

	if err := h.store.InsertWinningChatMessages(ctx, logID, req.ChatLog); err != nil {
		fail("insert chat messages", err)
		return
	}

	attempts, err := h.store.GlobalAttempts(ctx)
	if err != nil {
		fail("read global attempts", err)
		return
	}

	winID, err := h.store.InsertWin(ctx, user.ID, attempts, logID)
	if err != nil {
		fail("insert win record", err)
		return
	}

	if err := h.store.ResetGame(ctx); err != nil {
		fail("reset game state", err)
		return
	}

	// The reset changed the payout phase; force the next read to refresh.
	h.cache.Invalidate()

	c.JSON(http.StatusOK, models.HandleWinResponse{Status: "success", WinID: winID})
}

// compensateWin deletes the step-1 chat log. Its own failure is logged
// and swallowed so the client always sees the original failure reason.
// Runs detached from request cancellation: a client gone mid-saga must
// not leave the orphaned log row behind.
func (h *Handler) compensateWin(ctx context.Context, logID uuid.UUID) {
	if err := h.store.DeleteWinningChatLog(context.WithoutCancel(ctx), logID); err != nil {
		log.WithError(err).WithField("log_id", logID).Error("handle_win compensation failed")
	}
}

// ListCreditPacks returns all purchasable packs, cheapest first.
func (h *Handler) ListCreditPacks(c *gin.Context) {
	packs, err := h.store.CreditPacks(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Error fetching credit packs")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Failed to fetch credit packs."})
		return
	}
	c.JSON(http.StatusOK, packs)
}

// PurchaseCreditPack invokes the atomic purchase_credits procedure for
// the authenticated user and the pack named in the path.
func (h *Handler) PurchaseCreditPack(c *gin.Context) {
	packID, err := uuid.Parse(c.Param("pack_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Detail: "Credit pack not found."})
		return
	}

	user := currentUser(c)
	result, err := h.store.PurchaseCredits(c.Request.Context(), user.ID, packID)
	if err != nil {
		if errors.Is(err, database.ErrPackNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Detail: "Credit pack not found."})
			return
		}
		log.WithError(err).WithFields(log.Fields{
			"user_id": user.ID,
			"pack_id": packID,
		}).Error("Error in purchase")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "An error occurred during the purchase process."})
		return
	}

	c.JSON(http.StatusOK, models.PurchaseResponse{
		Status:            "success",
		PurchaseID:        result.PurchaseID,
		NewCreditsBalance: result.NewCreditsBalance,
	})
}

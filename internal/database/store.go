// internal/database/store.go
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newambition/convince/internal/models"
)

// ErrPackNotFound marks the purchase_credits procedure's distinguishable
// "credit pack does not exist" failure mode.
var ErrPackNotFound = errors.New("credit pack not found")

// packNotFoundMessage is the text the purchase_credits procedure raises
// when given an unknown pack id. Matching on it is the minimum contract
// with the backend; the structured PgError check below is preferred
// when available.
const packNotFoundMessage = "Credit pack not found"

// raiseExceptionCode is the Postgres SQLSTATE for RAISE EXCEPTION.
const raiseExceptionCode = "P0001"

// Store is the data-store collaborator contract consumed by handlers
// and the payout cache.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store over the given pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// GameState reads the public aggregate state. Uncached; callers that
// need staleness bounds use the payout cache instead.
func (s *Store) GameState(ctx context.Context) (models.GameState, error) {
	var st models.GameState
	err := s.db.QueryRow(ctx,
		`SELECT prizepool_amount, is_payout_phase_active FROM game_state`,
	).Scan(&st.PrizepoolAmount, &st.IsPayoutPhaseActive)
	if err != nil {
		return models.GameState{}, fmt.Errorf("fetch game state: %w", err)
	}
	return st, nil
}

// PayoutPhase reads exactly the payout-phase flag.
func (s *Store) PayoutPhase(ctx context.Context) (bool, error) {
	var active bool
	err := s.db.QueryRow(ctx,
		`SELECT is_payout_phase_active FROM game_state`,
	).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("fetch payout phase: %w", err)
	}
	return active, nil
}

// GlobalAttempts reads the global attempt counter from game state.
func (s *Store) GlobalAttempts(ctx context.Context) (int64, error) {
	var attempts int64
	err := s.db.QueryRow(ctx,
		`SELECT global_attempts FROM game_state`,
	).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("fetch global attempts: %w", err)
	}
	return attempts, nil
}

// Profile fetches the profile row for the given user. The row is
// expected to exist for every authenticated user.
func (s *Store) Profile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(ctx,
		`SELECT id, username, avatar_url, credits FROM profiles WHERE id = $1`,
		userID,
	).Scan(&p.ID, &p.Username, &p.AvatarURL, &p.Credits)
	if err != nil {
		return models.Profile{}, fmt.Errorf("fetch profile %s: %w", userID, err)
	}
	return p, nil
}

// LogAttempt invokes the atomic log_attempt procedure and returns the
// payout-phase flag it reports.
func (s *Store) LogAttempt(ctx context.Context, userID uuid.UUID) (bool, error) {
	var active bool
	err := s.db.QueryRow(ctx, `SELECT log_attempt($1)`, userID).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("log_attempt for %s: %w", userID, err)
	}
	return active, nil
}

// CreateWinningChatLog creates the chat-log record a win hangs off and
// returns its id.
func (s *Store) CreateWinningChatLog(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx,
		`INSERT INTO winning_chat_logs (user_id) VALUES ($1) RETURNING id`,
		userID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create winning chat log: %w", err)
	}
	return id, nil
}

// InsertWinningChatMessages stores every message of the transcript
// tagged with the given log id, preserving input order.
func (s *Store) InsertWinningChatMessages(ctx context.Context, logID uuid.UUID, messages []models.ChatMessage) error {
	batch := &pgx.Batch{}
	for _, msg := range messages {
		batch.Queue(
			`INSERT INTO winning_chat_messages (log_id, prompt, response) VALUES ($1, $2, $3)`,
			logID, msg.Prompt, msg.Response,
		)
	}
	results := s.db.SendBatch(ctx, batch)
	for range messages {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert winning chat messages: %w", err)
		}
	}
	return results.Close()
}

// DeleteWinningChatLog removes a chat-log record. Message rows cascade
// on the backend.
func (s *Store) DeleteWinningChatLog(ctx context.Context, logID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM winning_chat_logs WHERE id = $1`, logID)
	if err != nil {
		return fmt.Errorf("delete winning chat log %s: %w", logID, err)
	}
	return nil
}

// InsertWin records a win referencing the user, the attempt counter
// snapshot and the chat log, and returns the win id.
func (s *Store) InsertWin(ctx context.Context, userID uuid.UUID, globalAttempts int64, logID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx,
		`INSERT INTO wins (user_id, global_attempt_at_win, winning_chat_log_id)
		 VALUES ($1, $2, $3) RETURNING id`,
		userID, globalAttempts, logID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert win: %w", err)
	}
	return id, nil
}

// ResetGame invokes the atomic handle_win procedure, which clears the
// attempt counters and advances the game epoch.
func (s *Store) ResetGame(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `SELECT handle_win()`); err != nil {
		return fmt.Errorf("reset game state: %w", err)
	}
	return nil
}

// CreditPacks lists every purchasable pack, cheapest first.
func (s *Store) CreditPacks(ctx context.Context) ([]models.CreditPack, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, credits_amount, price FROM credit_packs ORDER BY price ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch credit packs: %w", err)
	}
	defer rows.Close()

	packs := []models.CreditPack{}
	for rows.Next() {
		var p models.CreditPack
		if err := rows.Scan(&p.ID, &p.Name, &p.CreditsAmount, &p.Price); err != nil {
			return nil, fmt.Errorf("scan credit pack: %w", err)
		}
		packs = append(packs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit packs: %w", err)
	}
	return packs, nil
}

// PurchaseCredits invokes the atomic purchase_credits procedure.
// The procedure's "Credit pack not found" condition maps to
// ErrPackNotFound; every other failure is opaque.
func (s *Store) PurchaseCredits(ctx context.Context, userID, packID uuid.UUID) (models.PurchaseResult, error) {
	var res models.PurchaseResult
	err := s.db.QueryRow(ctx,
		`SELECT purchase_id, new_credits_balance FROM purchase_credits($1, $2)`,
		userID, packID,
	).Scan(&res.PurchaseID, &res.NewCreditsBalance)
	if err != nil {
		if isPackNotFound(err) {
			return models.PurchaseResult{}, ErrPackNotFound
		}
		return models.PurchaseResult{}, fmt.Errorf("purchase_credits for %s: %w", userID, err)
	}
	return res, nil
}

// isPackNotFound detects the purchase procedure's not-found condition.
// Prefers the structured PgError channel (RAISE EXCEPTION carries
// SQLSTATE P0001) and falls back to matching the known message text.
func isPackNotFound(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == raiseExceptionCode && strings.Contains(pgErr.Message, packNotFoundMessage)
	}
	return strings.Contains(err.Error(), packNotFoundMessage)
}

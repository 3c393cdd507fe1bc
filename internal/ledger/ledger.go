// Package ledger persists per-invocation usage records and answers
// aggregate usage questions. Logs are append-only; the companion write to
// the credential usage counter happens in the same transaction so the
// counter can never drift from the log.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vudara/aiconfig/internal/apperr"
	"github.com/vudara/aiconfig/internal/models"

	"gorm.io/gorm"
)

// Ledger records and aggregates usage over a GORM connection.
type Ledger struct {
	db *gorm.DB
}

// New constructs a Ledger backed by GORM.
func New(conn *gorm.DB) *Ledger { return &Ledger{db: conn} }

// Entry is one completed AI invocation to record. Failed invocations are
// recorded too, with Success false and an error message.
type Entry struct {
	UserID    string
	ProjectID string
	SessionID string

	ProviderID   uint64
	ModelID      uint64
	CredentialID uint64
	TemplateID   *uint64

	TokensUsed   int
	Cost         int
	ResponseTime int

	Success      bool
	ErrorMessage string
}

// Record appends the entry and bumps the credential's usage counter in a
// single transaction. The counter increment runs in SQL so concurrent
// recorders never lose updates.
func (l *Ledger) Record(ctx context.Context, entry Entry) (*models.UsageLog, error) {
	userID := strings.TrimSpace(entry.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", apperr.ErrValidation)
	}
	if entry.ProviderID == 0 || entry.ModelID == 0 || entry.CredentialID == 0 {
		return nil, fmt.Errorf("%w: provider, model, and credential ids are required", apperr.ErrValidation)
	}
	if entry.TokensUsed < 0 {
		return nil, fmt.Errorf("%w: tokens used cannot be negative", apperr.ErrValidation)
	}

	row := models.UsageLog{
		UserID:       userID,
		ProjectID:    strings.TrimSpace(entry.ProjectID),
		SessionID:    strings.TrimSpace(entry.SessionID),
		ProviderID:   entry.ProviderID,
		ModelID:      entry.ModelID,
		CredentialID: entry.CredentialID,
		TemplateID:   entry.TemplateID,
		TokensUsed:   entry.TokensUsed,
		Cost:         entry.Cost,
		ResponseTime: entry.ResponseTime,
		Success:      entry.Success,
		ErrorMessage: strings.TrimSpace(entry.ErrorMessage),
		CreatedAt:    time.Now().UTC(),
	}

	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&row).Error; errCreate != nil {
			return errCreate
		}
		res := tx.Model(&models.Credential{}).
			Where("id = ?", entry.CredentialID).
			Updates(map[string]any{
				"usage_count":  gorm.Expr("usage_count + ?", 1),
				"last_used_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: credential %d", apperr.ErrNotFound, entry.CredentialID)
		}
		return nil
	})
	if errTx != nil {
		return nil, fmt.Errorf("ledger: record usage: %w", errTx)
	}
	return &row, nil
}

// Summary aggregates a user's usage over an optional time window.
type Summary struct {
	TotalCalls         int64   `json:"total_calls"`
	TotalTokens        int64   `json:"total_tokens"`
	TotalCost          int64   `json:"total_cost"`
	AvgResponseTime    float64 `json:"avg_response_time"`
	SuccessRatePercent float64 `json:"success_rate_percent"`
}

// Aggregate summarizes the user's logs. Either bound may be nil to leave
// the window open on that side. A user with no logs in the window gets a
// zero summary.
func (l *Ledger) Aggregate(ctx context.Context, userID string, from, to *time.Time) (*Summary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", apperr.ErrValidation)
	}

	query := l.db.WithContext(ctx).
		Model(&models.UsageLog{}).
		Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("created_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("created_at <= ?", to.UTC())
	}

	var summary Summary
	// CASE keeps the success ratio portable across sqlite and postgres.
	errScan := query.Select(
		"COUNT(*) AS total_calls, " +
			"COALESCE(SUM(tokens_used), 0) AS total_tokens, " +
			"COALESCE(SUM(cost), 0) AS total_cost, " +
			"COALESCE(AVG(response_time), 0) AS avg_response_time, " +
			"COALESCE(AVG(CASE WHEN success THEN 100.0 ELSE 0.0 END), 0) AS success_rate_percent",
	).Scan(&summary).Error
	if errScan != nil {
		return nil, fmt.Errorf("ledger: aggregate usage: %w", errScan)
	}
	return &summary, nil
}

// ListRecent returns the user's newest log rows, capped at limit.
func (l *Ledger) ListRecent(ctx context.Context, userID string, limit int) ([]models.UsageLog, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", apperr.ErrValidation)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.UsageLog
	errFind := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if errFind != nil {
		return nil, fmt.Errorf("ledger: list usage: %w", errFind)
	}
	return rows, nil
}

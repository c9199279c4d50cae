// internal/store/cases.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"advocacy-workers/internal/common/database"
	"advocacy-workers/internal/pricing"

	"github.com/google/uuid"
)

const (
	updateCasePricingQuery = `
	UPDATE cases
	SET pricing_suggestion = $2,
	    pricing_tier = $3,
	    pricing_breakdown = $4,
	    updated_at = NOW()
	WHERE id = $1`

	insertAuditQuery = `
	INSERT INTO audit_log (id, entity_type, entity_id, action, actor, payload, created_at)
	VALUES ($1, 'case', $2, 'pricing_recorded', $3, $4, NOW())`
)

type Cases struct {
	db *sql.DB
}

func NewCases(db *sql.DB) *Cases {
	return &Cases{db: db}
}

// RecordPricing writes the quote onto the case and appends an audit row in
// the same transaction. It returns the audit event id.
func (c *Cases) RecordPricing(ctx context.Context, caseID, actor string, result pricing.Result) (string, error) {
	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return "", fmt.Errorf("encode breakdown: %w", err)
	}
	audit, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode audit payload: %w", err)
	}

	eventID := uuid.NewString()
	err = database.InTx(ctx, c.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, updateCasePricingQuery, caseID, result.FinalPrice, string(result.Tier), breakdown)
		if err != nil {
			return fmt.Errorf("update case %s: %w", caseID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: case %s", ErrNotFound, caseID)
		}

		if _, err := tx.ExecContext(ctx, insertAuditQuery, eventID, caseID, actor, audit); err != nil {
			return fmt.Errorf("insert audit_log: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return eventID, nil
}

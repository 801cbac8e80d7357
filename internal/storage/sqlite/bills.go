package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
)

// CreateBill persists the bill and all its shares in one transaction. A
// failure partway through rolls back to zero rows.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	params, err := encodeRuleParams(bill.RuleParams)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills (id, room_id, title, amount_cents, period, rule, rule_params, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		bill.ID, bill.RoomID, bill.Title, bill.AmountCents, bill.Period, string(bill.Rule), params, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range bill.Shares {
		share := &bill.Shares[i]
		if share.ID == "" {
			share.ID = uuid.New().String()
		}
		share.BillID = bill.ID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO shares (id, bill_id, member_id, amount_cents, paid) VALUES (?, ?, ?, ?, ?)",
			share.ID, share.BillID, share.MemberID, share.AmountCents, share.Paid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID with its shares attached.
func (s *SQLiteStore) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	bill, err := s.scanBill(s.db.QueryRowContext(ctx,
		"SELECT id, room_id, title, amount_cents, period, rule, rule_params, created_at FROM bills WHERE id = ?",
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if err := s.attachShares(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBills returns the room's bills newest-first with shares attached.
// period "" returns all periods.
func (s *SQLiteStore) ListBills(ctx context.Context, roomID, period string) ([]*models.Bill, error) {
	query := "SELECT id, room_id, title, amount_cents, period, rule, rule_params, created_at FROM bills WHERE room_id = ?"
	args := []any{roomID}
	if period != "" {
		query += " AND period = ?"
		args = append(args, period)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := s.scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	for _, bill := range bills {
		if err := s.attachShares(ctx, bill); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

// DeleteBill removes a bill; its shares cascade via the foreign key.
func (s *SQLiteStore) DeleteBill(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return requireRow(res, "bill", id)
}

// GetShare retrieves a share by ID.
func (s *SQLiteStore) GetShare(ctx context.Context, id string) (*models.Share, error) {
	share := &models.Share{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, bill_id, member_id, amount_cents, paid FROM shares WHERE id = ?",
		id,
	).Scan(&share.ID, &share.BillID, &share.MemberID, &share.AmountCents, &share.Paid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("share %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	return share, nil
}

// SetSharePaid sets the paid flag. Writing the same value twice is a plain
// single-row update both times, so the operation is idempotent.
func (s *SQLiteStore) SetSharePaid(ctx context.Context, id string, paid bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE shares SET paid = ? WHERE id = ?", paid, id)
	if err != nil {
		return fmt.Errorf("failed to update share: %w", err)
	}
	return requireRow(res, "share", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanBill(row rowScanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var rule string
	var params sql.NullString
	if err := row.Scan(&bill.ID, &bill.RoomID, &bill.Title, &bill.AmountCents, &bill.Period, &rule, &params, &bill.CreatedAt); err != nil {
		return nil, err
	}
	bill.Rule = models.SplitRule(rule)
	if params.Valid && params.String != "" {
		decoded, err := decodeRuleParams(params.String)
		if err != nil {
			return nil, err
		}
		bill.RuleParams = decoded
	}
	return bill, nil
}

// attachShares loads the bill's shares in ascending member-ID order, the
// allocator's stable order.
func (s *SQLiteStore) attachShares(ctx context.Context, bill *models.Bill) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, bill_id, member_id, amount_cents, paid FROM shares WHERE bill_id = ? ORDER BY member_id",
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	bill.Shares = nil
	for rows.Next() {
		var share models.Share
		if err := rows.Scan(&share.ID, &share.BillID, &share.MemberID, &share.AmountCents, &share.Paid); err != nil {
			return fmt.Errorf("failed to scan share: %w", err)
		}
		bill.Shares = append(bill.Shares, share)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate shares: %w", err)
	}
	return nil
}

func encodeRuleParams(params map[string]decimal.Decimal) (sql.NullString, error) {
	if len(params) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode rule params: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func decodeRuleParams(raw string) (map[string]decimal.Decimal, error) {
	params := make(map[string]decimal.Decimal)
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("failed to decode rule params: %w", err)
	}
	return params, nil
}

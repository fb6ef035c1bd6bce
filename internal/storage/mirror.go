package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mealbook/internal/core"

	_ "modernc.org/sqlite"
)

// MirrorRepository is the SQLite reporting mirror. The worker replays row
// store state into it after every mutation event, so monthly reporting reads
// come from SQLite instead of re-scanning the whole sheet.
type MirrorRepository struct {
	db *sql.DB
}

// UserMonthTotal is one user's mirrored total for a month.
type UserMonthTotal struct {
	UserName string
	Amount   int64
}

func NewMirrorRepository(dbPath string) (*MirrorRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateMirror(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate mirror: %w", err)
	}

	return &MirrorRepository{db: db}, nil
}

func (r *MirrorRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UpsertExpense replaces one expense's mirrored rows inside a transaction.
func (r *MirrorRepository) UpsertExpense(ctx context.Context, m core.ExpenseMaster, shares []core.ExpenseShare) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_details WHERE master_id = ?`, m.ID); err != nil {
		return fmt.Errorf("delete old details: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO expense_masters (id, date, registrant_name, registrant_email, total_amount, memo, is_card_usage, company_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			date = excluded.date,
			registrant_name = excluded.registrant_name,
			registrant_email = excluded.registrant_email,
			total_amount = excluded.total_amount,
			memo = excluded.memo,
			is_card_usage = excluded.is_card_usage,
			company_name = excluded.company_name,
			mirrored_at = datetime('now')`,
		m.ID, m.Date.String(), m.Registrant.Name, m.Registrant.Email,
		m.TotalAmount, m.Memo, boolToInt(m.IsCardUsage), m.CompanyName)
	if err != nil {
		return fmt.Errorf("upsert master: %w", err)
	}

	for _, s := range shares {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expense_details (master_id, user_name, amount, menu, company_name)
			VALUES (?, ?, ?, ?, ?)`,
			m.ID, s.UserName, s.Amount, s.Menu, s.CompanyName)
		if err != nil {
			return fmt.Errorf("insert detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Expense mirrored",
		"id", m.ID,
		"company", m.CompanyName,
		"shares", len(shares))
	return nil
}

// DeleteExpense removes one expense from the mirror.
func (r *MirrorRepository) DeleteExpense(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expense_details WHERE master_id = ?`, id); err != nil {
		return fmt.Errorf("delete details: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expense_masters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete master: %w", err)
	}
	return nil
}

// MonthTotal sums a company's mirrored expenses for one month.
func (r *MirrorRepository) MonthTotal(ctx context.Context, companyName string, year, month int) (int64, error) {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT SUM(total_amount) FROM expense_masters
		WHERE company_name = ? AND date LIKE ? || '%'`,
		companyName, prefix).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("month total: %w", err)
	}
	return total.Int64, nil
}

// MonthTotalsByUser sums a company's mirrored shares per user for one month.
func (r *MirrorRepository) MonthTotalsByUser(ctx context.Context, companyName string, year, month int) ([]UserMonthTotal, error) {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.user_name, SUM(d.amount)
		FROM expense_details d
		JOIN expense_masters m ON m.id = d.master_id
		WHERE d.company_name = ? AND m.date LIKE ? || '%'
		GROUP BY d.user_name
		ORDER BY d.user_name`,
		companyName, prefix)
	if err != nil {
		return nil, fmt.Errorf("month totals by user: %w", err)
	}
	defer rows.Close()

	var out []UserMonthTotal
	for rows.Next() {
		var t UserMonthTotal
		if err := rows.Scan(&t.UserName, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

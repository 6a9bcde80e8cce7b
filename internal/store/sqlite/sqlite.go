// Package sqlite implements the store.Repository ports on an embedded
// SQLite database (modernc.org/sqlite, pure Go driver).
//
// Each Save replaces the whole collection inside one transaction, matching
// the read-modify-write semantics the service layer relies on. Malformed
// rows are skipped with a log line; a missing table or empty result loads
// as an empty collection.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"financesense/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
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

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, category, type, display_date, timestamp
		FROM transactions ORDER BY position ASC`)
	if err != nil {
		slog.WarnContext(ctx, "Transaction query failed, treating as empty", "error", err)
		return nil, nil
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var typ, ts string
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount.Cents, &t.Category, &typ, &t.Date, &ts); err != nil {
			slog.WarnContext(ctx, "Skipping malformed transaction row", "error", err)
			continue
		}
		t.Type = core.TransactionType(typ)
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			slog.WarnContext(ctx, "Skipping transaction with malformed timestamp", "id", t.ID, "error", err)
			continue
		}
		t.Timestamp = parsed
		out = append(out, t)
	}
	return out, nil
}

func (r *Repository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	return r.replaceAll(ctx, "transactions", func(tx *sql.Tx) error {
		for i, t := range txs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO transactions (id, description, amount_cents, category, type, display_date, timestamp, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, t.Description, t.Amount.Cents, t.Category, string(t.Type),
				t.Date, t.Timestamp.Format(time.RFC3339), i)
			if err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, amount_cents, color FROM categories ORDER BY amount_cents DESC, name ASC`)
	if err != nil {
		slog.WarnContext(ctx, "Category query failed, treating as empty", "error", err)
		return nil, nil
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.Name, &c.Amount.Cents, &c.Color); err != nil {
			slog.WarnContext(ctx, "Skipping malformed category row", "error", err)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Repository) SaveCategories(ctx context.Context, cats []core.Category) error {
	return r.replaceAll(ctx, "categories", func(tx *sql.Tx) error {
		for _, c := range cats {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO categories (name, amount_cents, color) VALUES (?, ?, ?)`,
				c.Name, c.Amount.Cents, c.Color)
			if err != nil {
				return fmt.Errorf("insert category %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

func (r *Repository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, target_cents, current_cents, target_date, category, is_from_suggestion, monthly_savings_cents
		FROM goals ORDER BY position ASC`)
	if err != nil {
		slog.WarnContext(ctx, "Goal query failed, treating as empty", "error", err)
		return nil, nil
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var g core.Goal
		var fromSuggestion int
		if err := rows.Scan(&g.ID, &g.Title, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
			&g.TargetDate, &g.Category, &fromSuggestion, &g.MonthlySavings.Cents); err != nil {
			slog.WarnContext(ctx, "Skipping malformed goal row", "error", err)
			continue
		}
		g.IsFromSuggestion = fromSuggestion != 0
		out = append(out, g)
	}
	return out, nil
}

func (r *Repository) SaveGoals(ctx context.Context, goals []core.Goal) error {
	return r.replaceAll(ctx, "goals", func(tx *sql.Tx) error {
		for i, g := range goals {
			fromSuggestion := 0
			if g.IsFromSuggestion {
				fromSuggestion = 1
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO goals (id, title, target_cents, current_cents, target_date, category, is_from_suggestion, monthly_savings_cents, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				g.ID, g.Title, g.TargetAmount.Cents, g.CurrentAmount.Cents,
				g.TargetDate, g.Category, fromSuggestion, g.MonthlySavings.Cents, i)
			if err != nil {
				return fmt.Errorf("insert goal %s: %w", g.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) ListAppliedSuggestions(ctx context.Context) ([]core.AppliedSuggestion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, potential_savings_cents, applied_date FROM applied_suggestions ORDER BY id ASC`)
	if err != nil {
		slog.WarnContext(ctx, "Applied suggestion query failed, treating as empty", "error", err)
		return nil, nil
	}
	defer rows.Close()

	var out []core.AppliedSuggestion
	for rows.Next() {
		var a core.AppliedSuggestion
		if err := rows.Scan(&a.ID, &a.Title, &a.PotentialSavings.Cents, &a.AppliedDate); err != nil {
			slog.WarnContext(ctx, "Skipping malformed applied suggestion row", "error", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *Repository) SaveAppliedSuggestions(ctx context.Context, applied []core.AppliedSuggestion) error {
	return r.replaceAll(ctx, "applied_suggestions", func(tx *sql.Tx) error {
		for _, a := range applied {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO applied_suggestions (id, title, potential_savings_cents, applied_date)
				VALUES (?, ?, ?, ?)`,
				a.ID, a.Title, a.PotentialSavings.Cents, a.AppliedDate)
			if err != nil {
				return fmt.Errorf("insert applied suggestion %d: %w", a.ID, err)
			}
		}
		return nil
	})
}

// replaceAll swaps a whole collection atomically: delete everything, insert
// the new rows, commit.
func (r *Repository) replaceAll(ctx context.Context, table string, insert func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

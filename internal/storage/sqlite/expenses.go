package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

const expenseColumns = "id, description, amount, paid_by, group_id, split_type, date, created_at, updated_at"

// CreateExpense persists an expense and its full share set in one
// transaction; either everything commits or nothing does.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.Date == 0 {
		expense.Date = now
	}
	expense.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.Description, expense.Amount, expense.PaidBy,
		expense.GroupID, string(expense.SplitType), expense.Date,
		expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertShares(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertShares(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.Shares {
		share := &expense.Shares[i]
		if share.ID == "" {
			share.ID = uuid.New().String()
		}
		share.ExpenseID = expense.ID

		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (id, expense_id, user_id, amount, percentage) VALUES (?, ?, ?, ?, ?)",
			share.ID, share.ExpenseID, share.UserID, share.Amount, share.Percentage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense including its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id,
	).Scan(
		&expense.ID, &expense.Description, &expense.Amount, &expense.PaidBy,
		&expense.GroupID, &expense.SplitType, &expense.Date,
		&expense.CreatedAt, &expense.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	shares, err := s.sharesForExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.Shares = shares
	return expense, nil
}

func (s *SQLiteStore) sharesForExpense(ctx context.Context, expenseID string) ([]models.ExpenseShare, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, expense_id, user_id, amount, percentage FROM expense_shares WHERE expense_id = ? ORDER BY user_id",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	var shares []models.ExpenseShare
	for rows.Next() {
		var share models.ExpenseShare
		if err := rows.Scan(&share.ID, &share.ExpenseID, &share.UserID, &share.Amount, &share.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return shares, nil
}

// UpdateExpense rewrites the expense row and replaces the entire share set
// in one transaction. No incremental diffing.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, paid_by = ?,
		 split_type = ?, date = ?, updated_at = ? WHERE id = ?`,
		expense.Description, expense.Amount, expense.PaidBy,
		string(expense.SplitType), expense.Date, expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear expense shares: %w", err)
	}
	for i := range expense.Shares {
		expense.Shares[i].ID = ""
	}
	if err := insertShares(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense; its shares cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListExpensesByGroup returns the group's expenses, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		"SELECT id FROM expenses WHERE group_id = ? ORDER BY date DESC", groupID)
}

// ListExpensesByUser returns expenses the user holds a share in, newest first.
func (s *SQLiteStore) ListExpensesByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT e.id FROM expenses e
		 JOIN expense_shares es ON es.expense_id = e.id
		 WHERE es.user_id = ?
		 GROUP BY e.id
		 ORDER BY e.date DESC`, userID)
}

func (s *SQLiteStore) listExpenses(ctx context.Context, query string, arg any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expense id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	expenses := make([]*models.Expense, 0, len(ids))
	for _, id := range ids {
		expense, err := s.GetExpense(ctx, id)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

// SumShareAmountsByUser returns the total of all share amounts held by the
// user across all expenses.
func (s *SQLiteStore) SumShareAmountsByUser(ctx context.Context, userID string) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM expense_shares WHERE user_id = ?",
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum share amounts: %w", err)
	}
	return total, nil
}

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

const groupColumns = `id, name, description, created_by, default_currency, group_type,
	privacy_level, is_active, is_archived, simplify_debts, auto_settle,
	allow_member_add_expense, allow_member_edit_expense,
	require_approval_for_expense, notification_enabled, created_at, updated_at`

// CreateGroup persists a new group and its member set in one transaction.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if group.CreatedAt == 0 {
		group.CreatedAt = now
	}
	group.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (`+groupColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.Description, group.CreatedBy,
		group.DefaultCurrency, string(group.GroupType), string(group.PrivacyLevel),
		group.IsActive, group.IsArchived,
		group.Settings.SimplifyDebts, group.Settings.AutoSettle,
		group.Settings.AllowMemberAddExpense, group.Settings.AllowMemberEditExpense,
		group.Settings.RequireApprovalForExpense, group.Settings.NotificationEnabled,
		group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := insertMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, groupID string, members []string) error {
	for _, userID := range members {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
			groupID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}
	return nil
}

func scanGroup(row interface{ Scan(...any) error }) (*models.Group, error) {
	group := &models.Group{}
	err := row.Scan(
		&group.ID, &group.Name, &group.Description, &group.CreatedBy,
		&group.DefaultCurrency, &group.GroupType, &group.PrivacyLevel,
		&group.IsActive, &group.IsArchived,
		&group.Settings.SimplifyDebts, &group.Settings.AutoSettle,
		&group.Settings.AllowMemberAddExpense, &group.Settings.AllowMemberEditExpense,
		&group.Settings.RequireApprovalForExpense, &group.Settings.NotificationEnabled,
		&group.CreatedAt, &group.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}
	return group, nil
}

// GetGroup retrieves a group with its member set.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group, err := scanGroup(s.db.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE id = ?", id))
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		group.Members = append(group.Members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return group, nil
}

// UpdateGroup rewrites the group row and replaces its member set.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE groups SET name = ?, description = ?, default_currency = ?,
		 group_type = ?, privacy_level = ?, is_active = ?, is_archived = ?,
		 simplify_debts = ?, auto_settle = ?, allow_member_add_expense = ?,
		 allow_member_edit_expense = ?, require_approval_for_expense = ?,
		 notification_enabled = ?, updated_at = ?
		 WHERE id = ?`,
		group.Name, group.Description, group.DefaultCurrency,
		string(group.GroupType), string(group.PrivacyLevel),
		group.IsActive, group.IsArchived,
		group.Settings.SimplifyDebts, group.Settings.AutoSettle,
		group.Settings.AllowMemberAddExpense, group.Settings.AllowMemberEditExpense,
		group.Settings.RequireApprovalForExpense, group.Settings.NotificationEnabled,
		group.UpdatedAt, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ?", group.ID); err != nil {
		return fmt.Errorf("failed to clear group members: %w", err)
	}
	if err := insertMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteGroup removes a group; members and expenses cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GroupExistsByNameAndCreator reports whether the creator already has a
// group with this name.
func (s *SQLiteStore) GroupExistsByNameAndCreator(ctx context.Context, name, creatorID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM groups WHERE name = ? AND created_by = ?",
		name, creatorID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check group existence: %w", err)
	}
	return count > 0, nil
}

// ListGroupsByMember returns all groups the user belongs to.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/split"
	"github.com/divvyhq/divvy/internal/storage"
)

// CreateGroupParams carries the caller-supplied fields for a new group.
// Zero-valued type and privacy fall back to OTHER and PRIVATE.
type CreateGroupParams struct {
	Name         string
	Description  string
	GroupType    models.GroupType
	PrivacyLevel models.PrivacyLevel
	Currency     string
	MemberIDs    []string
}

// UpdateGroupParams carries the mutable group metadata. Nil fields are
// left unchanged.
type UpdateGroupParams struct {
	Name         *string
	Description  *string
	GroupType    *models.GroupType
	PrivacyLevel *models.PrivacyLevel
	Currency     *string
}

// GroupStats summarizes a group's activity.
type GroupStats struct {
	MemberCount  int     `json:"memberCount"`
	ExpenseCount int     `json:"expenseCount"`
	TotalSpent   float64 `json:"totalSpent"`
}

// GroupService owns group lifecycle, membership and the balance view.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

func (s *GroupService) requireUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user", userID)
	}
	if err != nil {
		return nil, apperr.Internal("user", err)
	}
	return user, nil
}

func (s *GroupService) requireGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("group", groupID)
	}
	if err != nil {
		return nil, apperr.Internal("group", err)
	}
	return group, nil
}

// Create creates a group. The creator is always enrolled as a member, and a
// creator cannot reuse a group name they already own.
func (s *GroupService) Create(ctx context.Context, creatorID string, params CreateGroupParams) (*models.Group, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, apperr.Validation("group", "group name is required")
	}
	if _, err := s.requireUser(ctx, creatorID); err != nil {
		return nil, err
	}

	exists, err := s.store.GroupExistsByNameAndCreator(ctx, params.Name, creatorID)
	if err != nil {
		return nil, apperr.Internal("group", err)
	}
	if exists {
		return nil, apperr.Conflict("group", "group %q already exists for this user", params.Name)
	}

	groupType := params.GroupType
	if groupType == "" {
		groupType = models.GroupTypeOther
	}
	if !groupType.Valid() {
		return nil, apperr.Validation("group", "unknown group type: %s", groupType)
	}
	privacy := params.PrivacyLevel
	if privacy == "" {
		privacy = models.PrivacyPrivate
	}
	if !privacy.Valid() {
		return nil, apperr.Validation("group", "unknown privacy level: %s", privacy)
	}
	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}

	group := &models.Group{
		Name:            params.Name,
		Description:     params.Description,
		CreatedBy:       creatorID,
		GroupType:       groupType,
		PrivacyLevel:    privacy,
		DefaultCurrency: currency,
		IsActive:        true,
		Settings:        models.DefaultGroupSettings(),
		Members:         []string{creatorID},
	}
	for _, memberID := range params.MemberIDs {
		if memberID == creatorID {
			continue
		}
		if _, err := s.requireUser(ctx, memberID); err != nil {
			return nil, err
		}
		group.AddMember(memberID)
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, apperr.Internal("group", err)
	}

	slog.Info("group created", "group_id", group.ID, "name", group.Name, "created_by", creatorID)
	return group, nil
}

// Get returns a group visible to the acting user. Non-members cannot read
// private groups.
func (s *GroupService) Get(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.PrivacyLevel == models.PrivacyPrivate && !group.IsMember(actorID) {
		return nil, apperr.Unauthorized("group", "user is not a member of this group")
	}
	return group, nil
}

// ListByUser returns the groups the user belongs to, newest first.
func (s *GroupService) ListByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("group", err)
	}
	return groups, nil
}

// Search filters the user's groups by a case-insensitive name or
// description match.
func (s *GroupService) Search(ctx context.Context, userID, term string) ([]*models.Group, error) {
	groups, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return groups, nil
	}
	matched := make([]*models.Group, 0, len(groups))
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g.Name), term) || strings.Contains(strings.ToLower(g.Description), term) {
			matched = append(matched, g)
		}
	}
	return matched, nil
}

// Update changes group metadata. Admin only.
func (s *GroupService) Update(ctx context.Context, actorID, groupID string, params UpdateGroupParams) (*models.Group, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(actorID) {
		return nil, apperr.Unauthorized("group", "only the group admin can update the group")
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, apperr.Validation("group", "group name is required")
		}
		if name != group.Name {
			exists, err := s.store.GroupExistsByNameAndCreator(ctx, name, group.CreatedBy)
			if err != nil {
				return nil, apperr.Internal("group", err)
			}
			if exists {
				return nil, apperr.Conflict("group", "group %q already exists for this user", name)
			}
		}
		group.Name = name
	}
	if params.Description != nil {
		group.Description = *params.Description
	}
	if params.GroupType != nil {
		if !params.GroupType.Valid() {
			return nil, apperr.Validation("group", "unknown group type: %s", *params.GroupType)
		}
		group.GroupType = *params.GroupType
	}
	if params.PrivacyLevel != nil {
		if !params.PrivacyLevel.Valid() {
			return nil, apperr.Validation("group", "unknown privacy level: %s", *params.PrivacyLevel)
		}
		group.PrivacyLevel = *params.PrivacyLevel
	}
	if params.Currency != nil {
		group.DefaultCurrency = *params.Currency
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, apperr.Internal("group", err)
	}
	return group, nil
}

// UpdateSettings replaces the group's settings block. Admin only.
func (s *GroupService) UpdateSettings(ctx context.Context, actorID, groupID string, settings models.GroupSettings) (*models.Group, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(actorID) {
		return nil, apperr.Unauthorized("group", "only the group admin can update settings")
	}

	group.Settings = settings
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, apperr.Internal("group", err)
	}
	return group, nil
}

// AddMember enrolls a user in the group. Idempotent for existing members.
// Any current member may add others.
func (s *GroupService) AddMember(ctx context.Context, actorID, groupID, userID string) (*models.Group, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, apperr.Unauthorized("group", "user is not a member of this group")
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	if group.IsMember(userID) {
		return group, nil
	}
	group.AddMember(userID)
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, apperr.Internal("group", err)
	}

	slog.Info("group member added", "group_id", groupID, "user_id", userID, "added_by", actorID)
	return group, nil
}

// RemoveMember drops a member from the group. The creator can never be
// removed, not even by themselves. Members may leave on their own; removing
// anyone else requires admin.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, userID string) (*models.Group, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if userID == group.CreatedBy {
		return nil, apperr.Validation("group", "the group creator cannot be removed")
	}
	if actorID != userID && !group.IsAdmin(actorID) {
		return nil, apperr.Unauthorized("group", "only the group admin can remove other members")
	}
	if !group.IsMember(userID) {
		return nil, apperr.NotFound("member", userID)
	}

	group.RemoveMember(userID)
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, apperr.Internal("group", err)
	}

	slog.Info("group member removed", "group_id", groupID, "user_id", userID, "removed_by", actorID)
	return group, nil
}

// Members resolves the group's member ids to users.
func (s *GroupService) Members(ctx context.Context, actorID, groupID string) ([]*models.User, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, apperr.Unauthorized("group", "user is not a member of this group")
	}

	members := make([]*models.User, 0, len(group.Members))
	for _, memberID := range group.Members {
		user, err := s.requireUser(ctx, memberID)
		if err != nil {
			return nil, err
		}
		members = append(members, user)
	}
	return members, nil
}

// Archive marks the group archived. Admin only.
func (s *GroupService) Archive(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	return s.setArchived(ctx, actorID, groupID, true)
}

// Unarchive restores an archived group. Admin only.
func (s *GroupService) Unarchive(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	return s.setArchived(ctx, actorID, groupID, false)
}

func (s *GroupService) setArchived(ctx context.Context, actorID, groupID string, archived bool) (*models.Group, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(actorID) {
		return nil, apperr.Unauthorized("group", "only the group admin can archive the group")
	}

	group.IsArchived = archived
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, apperr.Internal("group", err)
	}
	return group, nil
}

// Delete removes the group and, via the schema, its expenses. Admin only.
func (s *GroupService) Delete(ctx context.Context, actorID, groupID string) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsAdmin(actorID) {
		return apperr.Unauthorized("group", "only the group admin can delete the group")
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return apperr.Internal("group", err)
	}
	slog.Info("group deleted", "group_id", groupID, "deleted_by", actorID)
	return nil
}

// Stats returns member count, expense count and total spent.
func (s *GroupService) Stats(ctx context.Context, actorID, groupID string) (*GroupStats, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, apperr.Unauthorized("group", "user is not a member of this group")
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal("expense", err)
	}

	stats := &GroupStats{
		MemberCount:  len(group.Members),
		ExpenseCount: len(expenses),
	}
	for _, e := range expenses {
		stats.TotalSpent += e.Amount
	}
	stats.TotalSpent = split.Round2(stats.TotalSpent)
	return stats, nil
}

// GroupBalanceReport is the balance view of a group: per-member net
// positions plus the debt edges that settle them.
type GroupBalanceReport struct {
	Balances []split.MemberBalance `json:"balances"`
	Debts    []split.DebtEdge      `json:"debts"`
}

// Balances computes the group's balance report. Whether debts are
// netted down to a minimal edge set follows the group's simplifyDebts
// setting.
func (s *GroupService) Balances(ctx context.Context, actorID, groupID string) (*GroupBalanceReport, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, apperr.Unauthorized("group", "user is not a member of this group")
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal("expense", err)
	}

	forBalance := make([]split.ExpenseForBalance, 0, len(expenses))
	for _, e := range expenses {
		shares := make([]split.Share, 0, len(e.Shares))
		for _, sh := range e.Shares {
			shares = append(shares, split.Share{UserID: sh.UserID, Amount: sh.Amount, Percentage: sh.Percentage})
		}
		forBalance = append(forBalance, split.ExpenseForBalance{
			Total:   e.Amount,
			PayerID: e.PaidBy,
			Shares:  shares,
		})
	}

	balances, debts := split.GroupBalances(forBalance, group.Settings.SimplifyDebts)
	return &GroupBalanceReport{Balances: balances, Debts: debts}, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/split"
	"github.com/divvyhq/divvy/internal/storage"
)

// ShareInput is the caller-supplied allocation for one participant.
// Percentage is read under the percentage policy, Amount under custom;
// the equal policy ignores inputs entirely.
type ShareInput struct {
	UserID     string
	Amount     float64
	Percentage float64
}

// ExpenseParams carries the fields for creating or replacing an expense.
type ExpenseParams struct {
	GroupID     string
	Description string
	Amount      float64
	PaidBy      string
	SplitType   models.SplitType
	Date        int64
	Shares      []ShareInput
}

// ExpenseService owns expense lifecycle and split allocation. Shares are
// never edited in place: every create or update recomputes the full share
// set from the policy and replaces it wholesale.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates an ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

func (s *ExpenseService) requireGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("group", groupID)
	}
	if err != nil {
		return nil, apperr.Internal("group", err)
	}
	return group, nil
}

func (s *ExpenseService) requireExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("expense", expenseID)
	}
	if err != nil {
		return nil, apperr.Internal("expense", err)
	}
	return expense, nil
}

func (s *ExpenseService) requireUser(ctx context.Context, userID string) error {
	_, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("user", userID)
	}
	if err != nil {
		return apperr.Internal("user", err)
	}
	return nil
}

func validateExpenseParams(params ExpenseParams) error {
	if strings.TrimSpace(params.Description) == "" {
		return apperr.Validation("expense", "description is required")
	}
	if params.Amount <= 0 {
		return apperr.Validation("expense", "amount must be positive")
	}
	if !params.SplitType.Valid() {
		return apperr.Validation("expense", "unknown split type: %s", params.SplitType)
	}
	return nil
}

// computeShares resolves the split policy into concrete shares. Every
// referenced user is verified to exist before any share is produced, so a
// bad participant list fails the whole operation up front.
func (s *ExpenseService) computeShares(ctx context.Context, group *models.Group, params ExpenseParams) ([]models.ExpenseShare, error) {
	var (
		allocated []split.Share
		err       error
	)
	switch params.SplitType {
	case models.SplitEqual:
		allocated, err = split.Equal(params.Amount, group.Members)
	case models.SplitPercentage:
		entries := make([]split.PercentEntry, 0, len(params.Shares))
		for _, in := range params.Shares {
			if uerr := s.requireUser(ctx, in.UserID); uerr != nil {
				return nil, uerr
			}
			entries = append(entries, split.PercentEntry{UserID: in.UserID, Percentage: in.Percentage})
		}
		allocated, err = split.Percentage(params.Amount, entries)
	case models.SplitCustom:
		entries := make([]split.AmountEntry, 0, len(params.Shares))
		for _, in := range params.Shares {
			if uerr := s.requireUser(ctx, in.UserID); uerr != nil {
				return nil, uerr
			}
			entries = append(entries, split.AmountEntry{UserID: in.UserID, Amount: in.Amount})
		}
		allocated, err = split.Custom(entries)
	default:
		return nil, apperr.Validation("expense", "unknown split type: %s", params.SplitType)
	}
	if err != nil {
		return nil, err
	}

	shares := make([]models.ExpenseShare, len(allocated))
	for i, a := range allocated {
		shares[i] = models.ExpenseShare{
			UserID:     a.UserID,
			Amount:     a.Amount,
			Percentage: a.Percentage,
		}
	}
	return shares, nil
}

// Create records an expense in a group. The actor must be allowed to add
// expenses per the group settings; the payer defaults to the actor.
func (s *ExpenseService) Create(ctx context.Context, actorID string, params ExpenseParams) (*models.Expense, error) {
	if err := validateExpenseParams(params); err != nil {
		return nil, err
	}
	group, err := s.requireGroup(ctx, params.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.CanAddExpense(actorID) {
		return nil, apperr.Unauthorized("expense", "user cannot add expenses to this group")
	}

	payer := params.PaidBy
	if payer == "" {
		payer = actorID
	}
	if err := s.requireUser(ctx, payer); err != nil {
		return nil, err
	}

	shares, err := s.computeShares(ctx, group, params)
	if err != nil {
		return nil, err
	}

	date := params.Date
	if date == 0 {
		date = time.Now().Unix()
	}
	expense := &models.Expense{
		Description: params.Description,
		Amount:      params.Amount,
		PaidBy:      payer,
		GroupID:     group.ID,
		SplitType:   params.SplitType,
		Date:        date,
		Shares:      shares,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, apperr.Internal("expense", err)
	}

	slog.Info("expense created",
		"expense_id", expense.ID,
		"group_id", group.ID,
		"amount", expense.Amount,
		"split_type", expense.SplitType)
	return expense, nil
}

// Get returns an expense visible to the actor. Visibility follows group
// membership.
func (s *ExpenseService) Get(ctx context.Context, actorID, expenseID string) (*models.Expense, error) {
	expense, err := s.requireExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	group, err := s.requireGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, apperr.Unauthorized("expense", "user is not a member of this group")
	}
	return expense, nil
}

// Update replaces an expense's fields and recomputes its shares from
// scratch. The actor must be allowed to edit expenses per group settings.
func (s *ExpenseService) Update(ctx context.Context, actorID, expenseID string, params ExpenseParams) (*models.Expense, error) {
	if err := validateExpenseParams(params); err != nil {
		return nil, err
	}
	expense, err := s.requireExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	group, err := s.requireGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.CanEditExpense(actorID) {
		return nil, apperr.Unauthorized("expense", "user cannot edit expenses in this group")
	}

	payer := params.PaidBy
	if payer == "" {
		payer = expense.PaidBy
	}
	if err := s.requireUser(ctx, payer); err != nil {
		return nil, err
	}

	shares, err := s.computeShares(ctx, group, params)
	if err != nil {
		return nil, err
	}

	expense.Description = params.Description
	expense.Amount = params.Amount
	expense.PaidBy = payer
	expense.SplitType = params.SplitType
	if params.Date != 0 {
		expense.Date = params.Date
	}
	expense.Shares = shares

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, apperr.Internal("expense", err)
	}

	slog.Info("expense updated", "expense_id", expense.ID, "group_id", group.ID)
	return expense, nil
}

// Delete removes an expense and its shares. Same permission as editing.
func (s *ExpenseService) Delete(ctx context.Context, actorID, expenseID string) error {
	expense, err := s.requireExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	group, err := s.requireGroup(ctx, expense.GroupID)
	if err != nil {
		return err
	}
	if !group.CanEditExpense(actorID) {
		return apperr.Unauthorized("expense", "user cannot edit expenses in this group")
	}

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return apperr.Internal("expense", err)
	}
	slog.Info("expense deleted", "expense_id", expenseID, "deleted_by", actorID)
	return nil
}

// ListByGroup returns a group's expenses, newest first. Members only.
func (s *ExpenseService) ListByGroup(ctx context.Context, actorID, groupID string) ([]*models.Expense, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, apperr.Unauthorized("expense", "user is not a member of this group")
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal("expense", err)
	}
	return expenses, nil
}

// ListMine returns the expenses the user participates in, newest first.
func (s *ExpenseService) ListMine(ctx context.Context, userID string) ([]*models.Expense, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("expense", err)
	}
	return expenses, nil
}

// TotalOwed sums the user's share amounts across all expenses.
func (s *ExpenseService) TotalOwed(ctx context.Context, userID string) (float64, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return 0, err
	}
	total, err := s.store.SumShareAmountsByUser(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("expense", err)
	}
	return split.Round2(total), nil
}

package service

import (
	"context"
	"math"
	"testing"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func setupExpenseTest(t *testing.T) (*ExpenseService, *GroupService, *models.Group, *models.User, *models.User, *models.User) {
	t.Helper()

	store := newTestStore(t)
	groups := NewGroupService(store)
	expenses := NewExpenseService(store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")

	group, err := groups.Create(ctx, alice.ID, CreateGroupParams{
		Name:      "Trio",
		MemberIDs: []string{bob.ID, carol.ID},
	})
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}
	return expenses, groups, group, alice, bob, carol
}

func TestExpenseCreateEqualSplit(t *testing.T) {
	expenses, _, group, alice, _, _ := setupExpenseTest(t)
	ctx := context.Background()

	expense, err := expenses.Create(ctx, alice.ID, ExpenseParams{
		GroupID:     group.ID,
		Description: "dinner",
		Amount:      90,
		SplitType:   models.SplitEqual,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if expense.PaidBy != alice.ID {
		t.Errorf("payer = %s, want actor by default", expense.PaidBy)
	}
	if len(expense.Shares) != 3 {
		t.Fatalf("got %d shares, want one per member", len(expense.Shares))
	}
	for _, s := range expense.Shares {
		if !almostEqual(s.Amount, 30) {
			t.Errorf("share for %s = %v, want 30", s.UserID, s.Amount)
		}
	}
}

func TestExpenseCreatePercentageSplit(t *testing.T) {
	expenses, _, group, alice, bob, carol := setupExpenseTest(t)
	ctx := context.Background()

	expense, err := expenses.Create(ctx, alice.ID, ExpenseParams{
		GroupID:     group.ID,
		Description: "hotel",
		Amount:      200,
		SplitType:   models.SplitPercentage,
		Shares: []ShareInput{
			{UserID: alice.ID, Percentage: 50},
			{UserID: bob.ID, Percentage: 30},
			{UserID: carol.ID, Percentage: 20},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	want := map[string]float64{alice.ID: 100, bob.ID: 60, carol.ID: 40}
	for _, s := range expense.Shares {
		if !almostEqual(s.Amount, want[s.UserID]) {
			t.Errorf("share for %s = %v, want %v", s.UserID, s.Amount, want[s.UserID])
		}
	}
}

func TestExpenseCreateCustomSplit(t *testing.T) {
	expenses, _, group, alice, bob, _ := setupExpenseTest(t)
	ctx := context.Background()

	expense, err := expenses.Create(ctx, alice.ID, ExpenseParams{
		GroupID:     group.ID,
		Description: "taxi",
		Amount:      35,
		SplitType:   models.SplitCustom,
		Shares: []ShareInput{
			{UserID: alice.ID, Amount: 20},
			{UserID: bob.ID, Amount: 15},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(expense.Shares) != 2 {
		t.Fatalf("got %d shares, want 2", len(expense.Shares))
	}
}

func TestExpenseCreateValidation(t *testing.T) {
	expenses, _, group, alice, _, _ := setupExpenseTest(t)
	ctx := context.Background()

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := expenses.Create(ctx, alice.ID, ExpenseParams{
			GroupID:     group.ID,
			Description: "free lunch",
			Amount:      0,
			SplitType:   models.SplitEqual,
		})
		wantKind(t, err, apperr.KindValidation)
	})

	t.Run("unknown split type", func(t *testing.T) {
		_, err := expenses.Create(ctx, alice.ID, ExpenseParams{
			GroupID:     group.ID,
			Description: "dinner",
			Amount:      10,
			SplitType:   models.SplitType("RANDOM"),
		})
		wantKind(t, err, apperr.KindValidation)
	})

	t.Run("unknown share user fails before any write", func(t *testing.T) {
		_, err := expenses.Create(ctx, alice.ID, ExpenseParams{
			GroupID:     group.ID,
			Description: "ghost dinner",
			Amount:      10,
			SplitType:   models.SplitCustom,
			Shares:      []ShareInput{{UserID: "no-such-user", Amount: 10}},
		})
		wantKind(t, err, apperr.KindNotFound)

		listed, err := expenses.ListByGroup(ctx, alice.ID, group.ID)
		if err != nil {
			t.Fatalf("ListByGroup failed: %v", err)
		}
		if len(listed) != 0 {
			t.Errorf("failed create left %d expenses behind", len(listed))
		}
	})

	t.Run("empty shares for custom split", func(t *testing.T) {
		_, err := expenses.Create(ctx, alice.ID, ExpenseParams{
			GroupID:     group.ID,
			Description: "nothing",
			Amount:      10,
			SplitType:   models.SplitCustom,
		})
		wantKind(t, err, apperr.KindValidation)
	})

	t.Run("non-member cannot add", func(t *testing.T) {
		_, err := expenses.Create(ctx, "not-a-member", ExpenseParams{
			GroupID:     group.ID,
			Description: "gate crash",
			Amount:      10,
			SplitType:   models.SplitEqual,
		})
		wantKind(t, err, apperr.KindUnauthorized)
	})
}

func TestExpensePermissionGates(t *testing.T) {
	expenses, groups, group, alice, bob, _ := setupExpenseTest(t)
	ctx := context.Background()

	expense, err := expenses.Create(ctx, bob.ID, ExpenseParams{
		GroupID:     group.ID,
		Description: "lunch",
		Amount:      30,
		SplitType:   models.SplitEqual,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("member edit follows settings", func(t *testing.T) {
		// Defaults allow adding but not editing for plain members.
		_, err := expenses.Update(ctx, bob.ID, expense.ID, ExpenseParams{
			Description: "lunch v2",
			Amount:      40,
			SplitType:   models.SplitEqual,
		})
		wantKind(t, err, apperr.KindUnauthorized)

		// Admin can always edit.
		updated, err := expenses.Update(ctx, alice.ID, expense.ID, ExpenseParams{
			Description: "lunch v2",
			Amount:      60,
			SplitType:   models.SplitEqual,
		})
		if err != nil {
			t.Fatalf("admin update failed: %v", err)
		}
		if updated.Amount != 60 {
			t.Errorf("amount = %v, want 60", updated.Amount)
		}
		for _, s := range updated.Shares {
			if !almostEqual(s.Amount, 20) {
				t.Errorf("recomputed share = %v, want 20", s.Amount)
			}
		}
	})

	t.Run("enabling member edits opens the gate", func(t *testing.T) {
		settings := models.DefaultGroupSettings()
		settings.AllowMemberEditExpense = true
		if _, err := groups.UpdateSettings(ctx, alice.ID, group.ID, settings); err != nil {
			t.Fatalf("UpdateSettings failed: %v", err)
		}

		if _, err := expenses.Update(ctx, bob.ID, expense.ID, ExpenseParams{
			Description: "lunch v3",
			Amount:      90,
			SplitType:   models.SplitEqual,
		}); err != nil {
			t.Fatalf("member update after settings change failed: %v", err)
		}
	})

	t.Run("disabling member adds closes creation", func(t *testing.T) {
		settings := models.DefaultGroupSettings()
		settings.AllowMemberAddExpense = false
		if _, err := groups.UpdateSettings(ctx, alice.ID, group.ID, settings); err != nil {
			t.Fatalf("UpdateSettings failed: %v", err)
		}

		_, err := expenses.Create(ctx, bob.ID, ExpenseParams{
			GroupID:     group.ID,
			Description: "blocked",
			Amount:      10,
			SplitType:   models.SplitEqual,
		})
		wantKind(t, err, apperr.KindUnauthorized)

		// Admin is exempt from the member gate.
		if _, err := expenses.Create(ctx, alice.ID, ExpenseParams{
			GroupID:     group.ID,
			Description: "admin only",
			Amount:      10,
			SplitType:   models.SplitEqual,
		}); err != nil {
			t.Fatalf("admin create failed: %v", err)
		}
	})
}

func TestExpenseUpdateReplacesShares(t *testing.T) {
	expenses, _, group, alice, bob, carol := setupExpenseTest(t)
	ctx := context.Background()

	expense, err := expenses.Create(ctx, alice.ID, ExpenseParams{
		GroupID:     group.ID,
		Description: "groceries",
		Amount:      90,
		SplitType:   models.SplitEqual,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(expense.Shares) != 3 {
		t.Fatalf("got %d shares, want 3", len(expense.Shares))
	}

	updated, err := expenses.Update(ctx, alice.ID, expense.ID, ExpenseParams{
		Description: "groceries",
		Amount:      90,
		SplitType:   models.SplitCustom,
		Shares: []ShareInput{
			{UserID: bob.ID, Amount: 45},
			{UserID: carol.ID, Amount: 45},
		},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(updated.Shares) != 2 {
		t.Fatalf("shares not replaced wholesale: %d remain", len(updated.Shares))
	}
	for _, s := range updated.Shares {
		if s.UserID == alice.ID {
			t.Error("stale share for alice survived the update")
		}
	}

	// Persisted state matches.
	got, err := expenses.Get(ctx, alice.ID, expense.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Shares) != 2 {
		t.Errorf("persisted shares = %d, want 2", len(got.Shares))
	}
}

func TestExpenseDeleteAndTotals(t *testing.T) {
	expenses, _, group, alice, bob, _ := setupExpenseTest(t)
	ctx := context.Background()

	expense, err := expenses.Create(ctx, alice.ID, ExpenseParams{
		GroupID:     group.ID,
		Description: "cinema",
		Amount:      30,
		SplitType:   models.SplitEqual,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	total, err := expenses.TotalOwed(ctx, bob.ID)
	if err != nil {
		t.Fatalf("TotalOwed failed: %v", err)
	}
	if !almostEqual(total, 10) {
		t.Errorf("bob's total = %v, want 10", total)
	}

	mine, err := expenses.ListMine(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListMine failed: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("bob participates in %d expenses, want 1", len(mine))
	}

	if err := expenses.Delete(ctx, alice.ID, expense.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	total, err = expenses.TotalOwed(ctx, bob.ID)
	if err != nil {
		t.Fatalf("TotalOwed failed: %v", err)
	}
	if total != 0 {
		t.Errorf("bob's total after delete = %v, want 0", total)
	}
}

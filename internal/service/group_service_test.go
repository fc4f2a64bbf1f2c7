package service

import (
	"context"
	"testing"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/models"
)

func TestGroupCreate(t *testing.T) {
	store := newTestStore(t)
	svc := NewGroupService(store)
	ctx := context.Background()

	creator := createUser(t, store, "creator")
	member := createUser(t, store, "member")

	t.Run("creator is always enrolled", func(t *testing.T) {
		group, err := svc.Create(ctx, creator.ID, CreateGroupParams{
			Name:      "Ski Trip",
			MemberIDs: []string{member.ID},
			GroupType: models.GroupTypeTrip,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if !group.IsMember(creator.ID) {
			t.Error("creator not enrolled as member")
		}
		if !group.IsMember(member.ID) {
			t.Error("listed member not enrolled")
		}
		if !group.IsAdmin(creator.ID) {
			t.Error("creator is not admin")
		}
		if !group.Settings.SimplifyDebts {
			t.Error("default settings not applied")
		}
	})

	t.Run("duplicate name per creator is a conflict", func(t *testing.T) {
		_, err := svc.Create(ctx, creator.ID, CreateGroupParams{Name: "Ski Trip"})
		wantKind(t, err, apperr.KindConflict)
	})

	t.Run("same name under another creator is fine", func(t *testing.T) {
		if _, err := svc.Create(ctx, member.ID, CreateGroupParams{Name: "Ski Trip"}); err != nil {
			t.Fatalf("Create failed for second creator: %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, creator.ID, CreateGroupParams{Name: "   "})
		wantKind(t, err, apperr.KindValidation)
	})

	t.Run("unknown member rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, creator.ID, CreateGroupParams{
			Name:      "Ghost Group",
			MemberIDs: []string{"no-such-user"},
		})
		wantKind(t, err, apperr.KindNotFound)
	})
}

func TestGroupMembership(t *testing.T) {
	store := newTestStore(t)
	svc := NewGroupService(store)
	ctx := context.Background()

	creator := createUser(t, store, "creator")
	member := createUser(t, store, "member")
	joiner := createUser(t, store, "joiner")

	group, err := svc.Create(ctx, creator.ID, CreateGroupParams{
		Name:      "Flat",
		MemberIDs: []string{member.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("member can add others, idempotently", func(t *testing.T) {
		updated, err := svc.AddMember(ctx, member.ID, group.ID, joiner.ID)
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if !updated.IsMember(joiner.ID) {
			t.Error("joiner not enrolled")
		}

		again, err := svc.AddMember(ctx, member.ID, group.ID, joiner.ID)
		if err != nil {
			t.Fatalf("repeated AddMember failed: %v", err)
		}
		if len(again.Members) != len(updated.Members) {
			t.Errorf("repeated add changed member count: %d -> %d", len(updated.Members), len(again.Members))
		}
	})

	t.Run("non-member cannot add", func(t *testing.T) {
		outsider := createUser(t, store, "outsider")
		_, err := svc.AddMember(ctx, outsider.ID, group.ID, outsider.ID)
		wantKind(t, err, apperr.KindUnauthorized)
	})

	t.Run("creator can never be removed", func(t *testing.T) {
		_, err := svc.RemoveMember(ctx, creator.ID, group.ID, creator.ID)
		wantKind(t, err, apperr.KindValidation)

		_, err = svc.RemoveMember(ctx, member.ID, group.ID, creator.ID)
		wantKind(t, err, apperr.KindValidation)
	})

	t.Run("member may leave on their own", func(t *testing.T) {
		updated, err := svc.RemoveMember(ctx, joiner.ID, group.ID, joiner.ID)
		if err != nil {
			t.Fatalf("self removal failed: %v", err)
		}
		if updated.IsMember(joiner.ID) {
			t.Error("joiner still a member after leaving")
		}
	})

	t.Run("only admin removes others", func(t *testing.T) {
		_, err := svc.RemoveMember(ctx, member.ID, group.ID, creator.ID)
		wantKind(t, err, apperr.KindValidation) // creator shield fires first

		other := createUser(t, store, "other")
		if _, err := svc.AddMember(ctx, creator.ID, group.ID, other.ID); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		_, err = svc.RemoveMember(ctx, member.ID, group.ID, other.ID)
		wantKind(t, err, apperr.KindUnauthorized)

		if _, err := svc.RemoveMember(ctx, creator.ID, group.ID, other.ID); err != nil {
			t.Fatalf("admin removal failed: %v", err)
		}
	})
}

func TestGroupAdminGates(t *testing.T) {
	store := newTestStore(t)
	svc := NewGroupService(store)
	ctx := context.Background()

	creator := createUser(t, store, "creator")
	member := createUser(t, store, "member")

	group, err := svc.Create(ctx, creator.ID, CreateGroupParams{
		Name:      "Gated",
		MemberIDs: []string{member.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("settings update is admin only", func(t *testing.T) {
		settings := models.DefaultGroupSettings()
		settings.AllowMemberEditExpense = true

		_, err := svc.UpdateSettings(ctx, member.ID, group.ID, settings)
		wantKind(t, err, apperr.KindUnauthorized)

		updated, err := svc.UpdateSettings(ctx, creator.ID, group.ID, settings)
		if err != nil {
			t.Fatalf("UpdateSettings failed: %v", err)
		}
		if !updated.Settings.AllowMemberEditExpense {
			t.Error("settings not updated")
		}
	})

	t.Run("archive and unarchive are admin only", func(t *testing.T) {
		_, err := svc.Archive(ctx, member.ID, group.ID)
		wantKind(t, err, apperr.KindUnauthorized)

		archived, err := svc.Archive(ctx, creator.ID, group.ID)
		if err != nil {
			t.Fatalf("Archive failed: %v", err)
		}
		if !archived.IsArchived || archived.Active() {
			t.Error("group not archived")
		}

		restored, err := svc.Unarchive(ctx, creator.ID, group.ID)
		if err != nil {
			t.Fatalf("Unarchive failed: %v", err)
		}
		if restored.IsArchived {
			t.Error("group still archived")
		}
	})

	t.Run("delete is admin only", func(t *testing.T) {
		err := svc.Delete(ctx, member.ID, group.ID)
		wantKind(t, err, apperr.KindUnauthorized)

		if err := svc.Delete(ctx, creator.ID, group.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		_, err = svc.Get(ctx, creator.ID, group.ID)
		wantKind(t, err, apperr.KindNotFound)
	})
}

func TestGroupSearchAndStats(t *testing.T) {
	store := newTestStore(t)
	groups := NewGroupService(store)
	expenses := NewExpenseService(store)
	ctx := context.Background()

	creator := createUser(t, store, "creator")
	member := createUser(t, store, "member")

	trip, err := groups.Create(ctx, creator.ID, CreateGroupParams{
		Name:      "Lisbon Trip",
		MemberIDs: []string{member.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := groups.Create(ctx, creator.ID, CreateGroupParams{Name: "Household"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("search filters the member's groups", func(t *testing.T) {
		matched, err := groups.Search(ctx, creator.ID, "lisbon")
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(matched) != 1 || matched[0].ID != trip.ID {
			t.Errorf("search = %v, want only the trip", matched)
		}
	})

	t.Run("stats aggregate expenses", func(t *testing.T) {
		for _, amount := range []float64{60, 40} {
			_, err := expenses.Create(ctx, creator.ID, ExpenseParams{
				GroupID:     trip.ID,
				Description: "dinner",
				Amount:      amount,
				SplitType:   models.SplitEqual,
			})
			if err != nil {
				t.Fatalf("expense create failed: %v", err)
			}
		}

		stats, err := groups.Stats(ctx, member.ID, trip.ID)
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.MemberCount != 2 {
			t.Errorf("MemberCount = %d, want 2", stats.MemberCount)
		}
		if stats.ExpenseCount != 2 {
			t.Errorf("ExpenseCount = %d, want 2", stats.ExpenseCount)
		}
		if stats.TotalSpent != 100 {
			t.Errorf("TotalSpent = %v, want 100", stats.TotalSpent)
		}
	})

	t.Run("stats are member gated", func(t *testing.T) {
		outsider := createUser(t, store, "outsider")
		_, err := groups.Stats(ctx, outsider.ID, trip.ID)
		wantKind(t, err, apperr.KindUnauthorized)
	})
}

func TestGroupBalancesView(t *testing.T) {
	store := newTestStore(t)
	groups := NewGroupService(store)
	expenses := NewExpenseService(store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	group, err := groups.Create(ctx, alice.ID, CreateGroupParams{
		Name:      "Pair",
		MemberIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Alice pays 100, split equally: bob owes her 50.
	if _, err := expenses.Create(ctx, alice.ID, ExpenseParams{
		GroupID:     group.ID,
		Description: "groceries",
		Amount:      100,
		SplitType:   models.SplitEqual,
	}); err != nil {
		t.Fatalf("expense create failed: %v", err)
	}

	report, err := groups.Balances(ctx, bob.ID, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}

	byUser := map[string]float64{}
	for _, b := range report.Balances {
		byUser[b.UserID] = b.NetBalance
	}
	if byUser[alice.ID] != 50 {
		t.Errorf("alice net = %v, want +50", byUser[alice.ID])
	}
	if byUser[bob.ID] != -50 {
		t.Errorf("bob net = %v, want -50", byUser[bob.ID])
	}

	if len(report.Debts) != 1 {
		t.Fatalf("got %d debt edges, want 1", len(report.Debts))
	}
	debt := report.Debts[0]
	if debt.From != bob.ID || debt.To != alice.ID || debt.Amount != 50 {
		t.Errorf("debt = %+v, want bob owes alice 50", debt)
	}
}

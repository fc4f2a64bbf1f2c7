package split

import (
	"math"
	"testing"
)

func TestGroupBalances(t *testing.T) {
	// Alice pays 90 split three ways, Bob pays 30 split three ways.
	expenses := []ExpenseForBalance{
		{
			Total:   90.0,
			PayerID: "alice",
			Shares: []Share{
				{UserID: "alice", Amount: 30.0},
				{UserID: "bob", Amount: 30.0},
				{UserID: "carol", Amount: 30.0},
			},
		},
		{
			Total:   30.0,
			PayerID: "bob",
			Shares: []Share{
				{UserID: "alice", Amount: 10.0},
				{UserID: "bob", Amount: 10.0},
				{UserID: "carol", Amount: 10.0},
			},
		},
	}

	t.Run("net balances", func(t *testing.T) {
		members, _ := GroupBalances(expenses, true)
		want := map[string]float64{"alice": 50.0, "bob": -10.0, "carol": -40.0}
		if len(members) != 3 {
			t.Fatalf("member count = %d, want 3", len(members))
		}
		for _, m := range members {
			if math.Abs(m.NetBalance-want[m.UserID]) > 0.001 {
				t.Errorf("%s net = %v, want %v", m.UserID, m.NetBalance, want[m.UserID])
			}
		}
	})

	t.Run("simplified debts settle all balances", func(t *testing.T) {
		members, edges := GroupBalances(expenses, true)

		// Every debtor's payments must cover exactly their negative balance.
		paid := make(map[string]float64)
		received := make(map[string]float64)
		for _, e := range edges {
			paid[e.From] += e.Amount
			received[e.To] += e.Amount
		}
		for _, m := range members {
			net := received[m.UserID] - paid[m.UserID]
			if math.Abs(net-m.NetBalance) > 0.001 {
				t.Errorf("%s settles %v, want %v", m.UserID, net, m.NetBalance)
			}
		}
	})

	t.Run("raw debts keep per-payer matrix", func(t *testing.T) {
		_, edges := GroupBalances(expenses, false)
		// bob→alice 30, carol→alice 30, alice→bob 10, carol→bob 10.
		if len(edges) != 4 {
			t.Fatalf("edge count = %d, want 4: %+v", len(edges), edges)
		}
		want := map[[2]string]float64{
			{"alice", "bob"}:   10.0,
			{"bob", "alice"}:   30.0,
			{"carol", "alice"}: 30.0,
			{"carol", "bob"}:   10.0,
		}
		for _, e := range edges {
			if math.Abs(e.Amount-want[[2]string{e.From, e.To}]) > 0.001 {
				t.Errorf("edge %s→%s = %v, want %v", e.From, e.To, e.Amount, want[[2]string{e.From, e.To}])
			}
		}
	})

	t.Run("expenses without payer are skipped", func(t *testing.T) {
		members, edges := GroupBalances([]ExpenseForBalance{
			{Total: 50.0, Shares: []Share{{UserID: "x", Amount: 50.0}}},
		}, true)
		if len(members) != 0 || len(edges) != 0 {
			t.Errorf("members = %d, edges = %d, want 0 and 0", len(members), len(edges))
		}
	})

	t.Run("settled group has no debt edges", func(t *testing.T) {
		_, edges := GroupBalances([]ExpenseForBalance{
			{Total: 20.0, PayerID: "a", Shares: []Share{{UserID: "a", Amount: 10.0}, {UserID: "b", Amount: 10.0}}},
			{Total: 20.0, PayerID: "b", Shares: []Share{{UserID: "a", Amount: 10.0}, {UserID: "b", Amount: 10.0}}},
		}, true)
		if len(edges) != 0 {
			t.Errorf("edges = %+v, want none", edges)
		}
	})
}

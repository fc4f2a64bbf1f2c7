package split

import "sort"

// ExpenseForBalance carries the minimal expense data needed for balance
// aggregation.
type ExpenseForBalance struct {
	Total   float64
	PayerID string
	Shares  []Share
}

// MemberBalance is the aggregate position of one group member.
type MemberBalance struct {
	UserID     string
	NetBalance float64 // positive = owed money, negative = owes money
	TotalPaid  float64
	TotalOwed  float64
}

// DebtEdge is a debt from one member to another.
type DebtEdge struct {
	From   string
	To     string
	Amount float64
}

// GroupBalances aggregates who paid what and who owes what across a group's
// expenses. Each payer contributed the expense total; each share holder owes
// their share. When simplify is set the debt list is reduced with greedy
// creditor/debtor matching; otherwise it is the raw per-payer debt matrix.
// Results are ordered by user id so output is deterministic.
func GroupBalances(expenses []ExpenseForBalance, simplify bool) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(userID string) *MemberBalance {
		b, ok := balances[userID]
		if !ok {
			b = &MemberBalance{UserID: userID}
			balances[userID] = b
		}
		return b
	}

	// debts[debtor][creditor] = amount
	debts := make(map[string]map[string]float64)

	for _, e := range expenses {
		if e.PayerID == "" {
			continue
		}
		get(e.PayerID).TotalPaid += e.Total

		for _, s := range e.Shares {
			get(s.UserID).TotalOwed += s.Amount
			if s.UserID != e.PayerID {
				if debts[s.UserID] == nil {
					debts[s.UserID] = make(map[string]float64)
				}
				debts[s.UserID][e.PayerID] += s.Amount
			}
		}
	}

	members := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = Round2(b.TotalPaid - b.TotalOwed)
		b.TotalPaid = Round2(b.TotalPaid)
		b.TotalOwed = Round2(b.TotalOwed)
		members = append(members, *b)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })

	if simplify {
		return members, simplifyDebts(members)
	}
	return members, rawDebts(debts)
}

func rawDebts(debts map[string]map[string]float64) []DebtEdge {
	var edges []DebtEdge
	for from, row := range debts {
		for to, amount := range row {
			if amount > 0.01 {
				edges = append(edges, DebtEdge{From: from, To: to, Amount: Round2(amount)})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// simplifyDebts greedily matches debtors against creditors so each member
// appears in as few transfers as possible.
func simplifyDebts(members []MemberBalance) []DebtEdge {
	var debtors, creditors []MemberBalance
	for _, m := range members {
		switch {
		case m.NetBalance < -0.01:
			debtors = append(debtors, m)
		case m.NetBalance > 0.01:
			creditors = append(creditors, m)
		}
	}

	owed := make(map[string]float64, len(debtors))
	for _, d := range debtors {
		owed[d.UserID] = -d.NetBalance
	}
	due := make(map[string]float64, len(creditors))
	for _, c := range creditors {
		due[c.UserID] = c.NetBalance
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].UserID
		creditor := creditors[j].UserID

		amount := owed[debtor]
		if due[creditor] < amount {
			amount = due[creditor]
		}
		if amount > 0.01 {
			edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: Round2(amount)})
		}

		owed[debtor] -= amount
		due[creditor] -= amount
		if owed[debtor] < 0.01 {
			i++
		}
		if due[creditor] < 0.01 {
			j++
		}
	}
	return edges
}

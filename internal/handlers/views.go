package handlers

import (
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/service"
)

// Response views. Models carry no serialization concerns, so the boundary
// shapes its own JSON and keeps the password hash out of every response.

type userView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

func toUserViews(users []*models.User) []userView {
	views := make([]userView, len(users))
	for i, u := range users {
		views[i] = toUserView(u)
	}
	return views
}

type contactView struct {
	ID               string `json:"id"`
	OwnerID          string `json:"ownerId"`
	ContactUserID    string `json:"contactUserId,omitempty"`
	ContactName      string `json:"contactName"`
	ContactEmail     string `json:"contactEmail,omitempty"`
	ContactPhone     string `json:"contactPhone,omitempty"`
	Status           string `json:"status"`
	RelationshipType string `json:"relationshipType"`
	IsBlocked        bool   `json:"isBlocked"`
	AddedAt          int64  `json:"addedAt"`
	UpdatedAt        int64  `json:"updatedAt"`
}

func toContactView(c *models.Contact) contactView {
	return contactView{
		ID:               c.ID,
		OwnerID:          c.OwnerID,
		ContactUserID:    c.ContactUserID,
		ContactName:      c.ContactName,
		ContactEmail:     c.ContactEmail,
		ContactPhone:     c.ContactPhone,
		Status:           string(c.Status),
		RelationshipType: string(c.RelationshipType),
		IsBlocked:        c.IsBlocked,
		AddedAt:          c.AddedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func toContactViews(contacts []*models.Contact) []contactView {
	views := make([]contactView, len(contacts))
	for i, c := range contacts {
		views[i] = toContactView(c)
	}
	return views
}

type groupSettingsView struct {
	SimplifyDebts             bool `json:"simplifyDebts"`
	AutoSettle                bool `json:"autoSettle"`
	AllowMemberAddExpense     bool `json:"allowMemberAddExpense"`
	AllowMemberEditExpense    bool `json:"allowMemberEditExpense"`
	RequireApprovalForExpense bool `json:"requireApprovalForExpense"`
	NotificationEnabled       bool `json:"notificationEnabled"`
}

func toSettingsView(s models.GroupSettings) groupSettingsView {
	return groupSettingsView(s)
}

type groupView struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	CreatedBy       string            `json:"createdBy"`
	Members         []string          `json:"members"`
	DefaultCurrency string            `json:"defaultCurrency"`
	GroupType       string            `json:"groupType"`
	PrivacyLevel    string            `json:"privacyLevel"`
	IsActive        bool              `json:"isActive"`
	IsArchived      bool              `json:"isArchived"`
	Settings        groupSettingsView `json:"settings"`
	CreatedAt       int64             `json:"createdAt"`
	UpdatedAt       int64             `json:"updatedAt"`
}

func toGroupView(g *models.Group) groupView {
	return groupView{
		ID:              g.ID,
		Name:            g.Name,
		Description:     g.Description,
		CreatedBy:       g.CreatedBy,
		Members:         g.Members,
		DefaultCurrency: g.DefaultCurrency,
		GroupType:       string(g.GroupType),
		PrivacyLevel:    string(g.PrivacyLevel),
		IsActive:        g.IsActive,
		IsArchived:      g.IsArchived,
		Settings:        toSettingsView(g.Settings),
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

func toGroupViews(groups []*models.Group) []groupView {
	views := make([]groupView, len(groups))
	for i, g := range groups {
		views[i] = toGroupView(g)
	}
	return views
}

type shareView struct {
	UserID     string  `json:"userId"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage,omitempty"`
}

type expenseView struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	PaidBy      string      `json:"paidBy"`
	GroupID     string      `json:"groupId"`
	SplitType   string      `json:"splitType"`
	Shares      []shareView `json:"shares"`
	Date        int64       `json:"date"`
	CreatedAt   int64       `json:"createdAt"`
	UpdatedAt   int64       `json:"updatedAt"`
}

func toExpenseView(e *models.Expense) expenseView {
	shares := make([]shareView, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = shareView{UserID: s.UserID, Amount: s.Amount, Percentage: s.Percentage}
	}
	return expenseView{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		GroupID:     e.GroupID,
		SplitType:   string(e.SplitType),
		Shares:      shares,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExpenseViews(expenses []*models.Expense) []expenseView {
	views := make([]expenseView, len(expenses))
	for i, e := range expenses {
		views[i] = toExpenseView(e)
	}
	return views
}

type memberBalanceView struct {
	UserID     string  `json:"userId"`
	NetBalance float64 `json:"netBalance"`
	TotalPaid  float64 `json:"totalPaid"`
	TotalOwed  float64 `json:"totalOwed"`
}

type debtEdgeView struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type balanceReportView struct {
	Balances []memberBalanceView `json:"balances"`
	Debts    []debtEdgeView      `json:"debts"`
}

func toBalanceReportView(report *service.GroupBalanceReport) balanceReportView {
	view := balanceReportView{
		Balances: make([]memberBalanceView, len(report.Balances)),
		Debts:    make([]debtEdgeView, len(report.Debts)),
	}
	for i, b := range report.Balances {
		view.Balances[i] = memberBalanceView(b)
	}
	for i, d := range report.Debts {
		view.Debts[i] = debtEdgeView(d)
	}
	return view
}

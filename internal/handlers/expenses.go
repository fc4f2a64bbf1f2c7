package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divvyhq/divvy/internal/middleware"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/service"
)

// ExpenseHandler serves expense recording, listing and deletion.
type ExpenseHandler struct {
	expenses *service.ExpenseService
}

// NewExpenseHandler creates an ExpenseHandler.
func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

type shareInputRequest struct {
	UserID     string  `json:"userId" binding:"required"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type expenseRequest struct {
	GroupID     string              `json:"groupId"`
	Description string              `json:"description" binding:"required"`
	Amount      float64             `json:"amount" binding:"required,gt=0"`
	PaidBy      string              `json:"paidBy"`
	SplitType   string              `json:"splitType" binding:"required"`
	Date        int64               `json:"date"`
	Shares      []shareInputRequest `json:"shares"`
}

func (r expenseRequest) toParams(groupID string) service.ExpenseParams {
	shares := make([]service.ShareInput, len(r.Shares))
	for i, s := range r.Shares {
		shares[i] = service.ShareInput{UserID: s.UserID, Amount: s.Amount, Percentage: s.Percentage}
	}
	return service.ExpenseParams{
		GroupID:     groupID,
		Description: r.Description,
		Amount:      r.Amount,
		PaidBy:      r.PaidBy,
		SplitType:   models.SplitType(r.SplitType),
		Date:        r.Date,
		Shares:      shares,
	}
}

// Create records an expense in a group.
func (h *ExpenseHandler) Create(ctx *gin.Context) {
	var req expenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.GroupID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "groupId is required"})
		return
	}

	expense, err := h.expenses.Create(ctx.Request.Context(), middleware.UserID(ctx), req.toParams(req.GroupID))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, toExpenseView(expense))
}

// Get returns one expense with its shares.
func (h *ExpenseHandler) Get(ctx *gin.Context) {
	expense, err := h.expenses.Get(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("expense_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toExpenseView(expense))
}

// Update replaces an expense's fields and recomputes its shares.
func (h *ExpenseHandler) Update(ctx *gin.Context) {
	var req expenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	expense, err := h.expenses.Update(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("expense_id"), req.toParams(req.GroupID))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toExpenseView(expense))
}

// Delete removes an expense and its shares.
func (h *ExpenseHandler) Delete(ctx *gin.Context) {
	if err := h.expenses.Delete(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("expense_id")); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListByGroup returns a group's expenses, newest first.
func (h *ExpenseHandler) ListByGroup(ctx *gin.Context) {
	expenses, err := h.expenses.ListByGroup(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("group_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toExpenseViews(expenses))
}

// ListMine returns the expenses the caller participates in.
func (h *ExpenseHandler) ListMine(ctx *gin.Context) {
	expenses, err := h.expenses.ListMine(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toExpenseViews(expenses))
}

// TotalOwed returns the sum of the caller's shares across all expenses.
func (h *ExpenseHandler) TotalOwed(ctx *gin.Context) {
	total, err := h.expenses.TotalOwed(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"total": total})
}

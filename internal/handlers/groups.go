package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divvyhq/divvy/internal/middleware"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/service"
)

// GroupHandler serves the group lifecycle, membership and balance endpoints.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type createGroupRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	GroupType    string   `json:"groupType"`
	PrivacyLevel string   `json:"privacyLevel"`
	Currency     string   `json:"currency"`
	MemberIDs    []string `json:"memberIds"`
}

// Create creates a group with the caller as admin.
func (h *GroupHandler) Create(ctx *gin.Context) {
	var req createGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	group, err := h.groups.Create(ctx.Request.Context(), middleware.UserID(ctx), service.CreateGroupParams{
		Name:         req.Name,
		Description:  req.Description,
		GroupType:    models.GroupType(req.GroupType),
		PrivacyLevel: models.PrivacyLevel(req.PrivacyLevel),
		Currency:     req.Currency,
		MemberIDs:    req.MemberIDs,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, toGroupView(group))
}

// List returns the caller's groups, newest first.
func (h *GroupHandler) List(ctx *gin.Context) {
	groups, err := h.groups.ListByUser(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toGroupViews(groups))
}

// Search filters the caller's groups by name or description (?query=).
func (h *GroupHandler) Search(ctx *gin.Context) {
	groups, err := h.groups.Search(ctx.Request.Context(), middleware.UserID(ctx), ctx.Query("query"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toGroupViews(groups))
}

// Get returns one group.
func (h *GroupHandler) Get(ctx *gin.Context) {
	group, err := h.groups.Get(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("group_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toGroupView(group))
}

type updateGroupRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	GroupType    *string `json:"groupType"`
	PrivacyLevel *string `json:"privacyLevel"`
	Currency     *string `json:"currency"`
}

// Update changes group metadata. Admin only.
func (h *GroupHandler) Update(ctx *gin.Context) {
	var req updateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	params := service.UpdateGroupParams{
		Name:        req.Name,
		Description: req.Description,
		Currency:    req.Currency,
	}
	if req.GroupType != nil {
		gt := models.GroupType(*req.GroupType)
		params.GroupType = &gt
	}
	if req.PrivacyLevel != nil {
		pl := models.PrivacyLevel(*req.PrivacyLevel)
		params.PrivacyLevel = &pl
	}

	group, err := h.groups.Update(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("group_id"), params)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toGroupView(group))
}

type updateSettingsRequest struct {
	SimplifyDebts             bool `json:"simplifyDebts"`
	AutoSettle                bool `json:"autoSettle"`
	AllowMemberAddExpense     bool `json:"allowMemberAddExpense"`
	AllowMemberEditExpense    bool `json:"allowMemberEditExpense"`
	RequireApprovalForExpense bool `json:"requireApprovalForExpense"`
	NotificationEnabled       bool `json:"notificationEnabled"`
}

// UpdateSettings replaces the group's settings block. Admin only.
func (h *GroupHandler) UpdateSettings(ctx *gin.Context) {
	var req updateSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	group, err := h.groups.UpdateSettings(
		ctx.Request.Context(),
		middleware.UserID(ctx),
		ctx.Param("group_id"),
		models.GroupSettings(req),
	)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toGroupView(group))
}

type memberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// AddMember enrolls a user in the group.
func (h *GroupHandler) AddMember(ctx *gin.Context) {
	var req memberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	group, err := h.groups.AddMember(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("group_id"), req.UserID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toGroupView(group))
}

// RemoveMember drops a member from the group.
func (h *GroupHandler) RemoveMember(ctx *gin.Context) {
	group, err := h.groups.RemoveMember(
		ctx.Request.Context(),
		middleware.UserID(ctx),
		ctx.Param("group_id"),
		ctx.Param("user_id"),
	)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toGroupView(group))
}

// Members returns the group's members as users.
func (h *GroupHandler) Members(ctx *gin.Context) {
	members, err := h.groups.Members(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("group_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toUserViews(members))
}

// Archive marks the group archived. Admin only.
func (h *GroupHandler) Archive(ctx *gin.Context) {
	group, err := h.groups.Archive(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("group_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toGroupView(group))
}

// Unarchive restores an archived group. Admin only.
func (h *GroupHandler) Unarchive(ctx *gin.Context) {
	group, err := h.groups.Unarchive(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("group_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toGroupView(group))
}

// Delete removes the group. Admin only.
func (h *GroupHandler) Delete(ctx *gin.Context) {
	if err := h.groups.Delete(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("group_id")); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Stats returns member count, expense count and total spent.
func (h *GroupHandler) Stats(ctx *gin.Context) {
	stats, err := h.groups.Stats(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("group_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// Balances returns net member balances and the debt edges settling them.
func (h *GroupHandler) Balances(ctx *gin.Context) {
	report, err := h.groups.Balances(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("group_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toBalanceReportView(report))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divvyhq/divvy/internal/middleware"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/service"
)

// ContactHandler serves the contact graph endpoints.
type ContactHandler struct {
	contacts *service.ContactService
	users    *service.UserService
}

// NewContactHandler creates a ContactHandler.
func NewContactHandler(contacts *service.ContactService, users *service.UserService) *ContactHandler {
	return &ContactHandler{contacts: contacts, users: users}
}

type addByUserRequest struct {
	RelationshipType string `json:"relationshipType"`
}

type addByEmailRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Name             string `json:"name"`
	RelationshipType string `json:"relationshipType"`
}

func relationshipOrDefault(raw string) models.RelationshipType {
	if raw == "" {
		return models.RelationshipFriend
	}
	return models.RelationshipType(raw)
}

// AddByUser creates a pending contact edge toward a registered user. The
// body is optional and may carry a relationship type.
func (h *ContactHandler) AddByUser(ctx *gin.Context) {
	var req addByUserRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	contact, err := h.contacts.AddByUser(
		ctx.Request.Context(),
		middleware.UserID(ctx),
		ctx.Param("user_id"),
		relationshipOrDefault(req.RelationshipType),
	)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, toContactView(contact))
}

// AddByEmail creates a pending contact edge toward an email address that may
// or may not belong to a registered user.
func (h *ContactHandler) AddByEmail(ctx *gin.Context) {
	var req addByEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	contact, err := h.contacts.AddByEmail(
		ctx.Request.Context(),
		middleware.UserID(ctx),
		req.Email,
		req.Name,
		relationshipOrDefault(req.RelationshipType),
	)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, toContactView(contact))
}

// List returns all of the caller's contact edges.
func (h *ContactHandler) List(ctx *gin.Context) {
	contacts, err := h.contacts.List(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toContactViews(contacts))
}

// Search does a substring match over the caller's contacts (?query=).
func (h *ContactHandler) Search(ctx *gin.Context) {
	contacts, err := h.contacts.Search(ctx.Request.Context(), middleware.UserID(ctx), ctx.Query("query"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toContactViews(contacts))
}

// Friends returns accepted, unblocked contacts.
func (h *ContactHandler) Friends(ctx *gin.Context) {
	friends, err := h.contacts.ListFriends(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toContactViews(friends))
}

// FriendCount returns the number of accepted, unblocked contacts.
func (h *ContactHandler) FriendCount(ctx *gin.Context) {
	count, err := h.contacts.CountFriends(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"count": count})
}

// PendingSent returns invitations the caller sent that are still pending.
func (h *ContactHandler) PendingSent(ctx *gin.Context) {
	pending, err := h.contacts.ListPendingSent(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toContactViews(pending))
}

// PendingReceived returns invitations addressed to the caller awaiting an
// answer.
func (h *ContactHandler) PendingReceived(ctx *gin.Context) {
	received, err := h.contacts.ListPendingReceived(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toContactViews(received))
}

// Blocked returns the caller's blocked contacts.
func (h *ContactHandler) Blocked(ctx *gin.Context) {
	blocked, err := h.contacts.ListBlocked(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toContactViews(blocked))
}

// Accept accepts a pending invitation addressed to the caller.
func (h *ContactHandler) Accept(ctx *gin.Context) {
	contact, err := h.contacts.Accept(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("contact_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toContactView(contact))
}

// Decline declines a pending invitation addressed to the caller.
func (h *ContactHandler) Decline(ctx *gin.Context) {
	if err := h.contacts.Decline(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("contact_id")); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Block blocks an owned contact edge.
func (h *ContactHandler) Block(ctx *gin.Context) {
	contact, err := h.contacts.Block(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("contact_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toContactView(contact))
}

// Unblock unblocks an owned contact edge.
func (h *ContactHandler) Unblock(ctx *gin.Context) {
	contact, err := h.contacts.Unblock(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("contact_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toContactView(contact))
}

type updateRelationshipRequest struct {
	RelationshipType string `json:"relationshipType" binding:"required"`
}

// UpdateRelationship changes the relationship label on an owned edge.
func (h *ContactHandler) UpdateRelationship(ctx *gin.Context) {
	var req updateRelationshipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	contact, err := h.contacts.UpdateRelationship(
		ctx.Request.Context(),
		middleware.UserID(ctx),
		ctx.Param("contact_id"),
		models.RelationshipType(req.RelationshipType),
	)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toContactView(contact))
}

// Remove deletes an owned edge and its reciprocal, if any.
func (h *ContactHandler) Remove(ctx *gin.Context) {
	if err := h.contacts.Remove(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("contact_id")); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

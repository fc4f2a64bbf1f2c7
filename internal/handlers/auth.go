package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/divvyhq/divvy/internal/auth"
	"github.com/divvyhq/divvy/internal/middleware"
	"github.com/divvyhq/divvy/internal/service"
)

// AuthHandler serves registration, login and the current-user endpoint.
type AuthHandler struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         *service.UserService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users *service.UserService) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, jwtManager: jwtManager, users: users}
}

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	// Identifier is a username or an email address.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// Register creates an account and returns a token for it.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authenticator.Register(ctx.Request.Context(), auth.Registration{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, tokenResponse{Token: token, User: toUserView(user)})
}

// Login authenticates by username or email and returns a token.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authenticator.Authenticate(ctx.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(ctx, err)
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tokenResponse{Token: token, User: toUserView(user)})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(ctx *gin.Context) {
	user, err := h.users.Get(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toUserView(user))
}

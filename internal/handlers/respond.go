package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/auth"
)

// writeError maps a service error to an HTTP status and a {"error": msg}
// body. Unknown errors become an opaque 500 and are logged here, once, so
// handlers do not need their own logging for the failure path.
func writeError(ctx *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != "" {
		ctx.JSON(statusForKind(appErr.Kind), gin.H{"error": appErr.Msg})
		return
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
	case errors.Is(err, auth.ErrUsernameExists), errors.Is(err, auth.ErrEmailExists):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrWeakPassword):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed with internal error", "error", err, "path", ctx.FullPath())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

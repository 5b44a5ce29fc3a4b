package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/pkg/logger"
	"github.com/prohmpiriya/eventix/pkg/middleware"
	"github.com/prohmpiriya/eventix/pkg/response"
	"go.uber.org/zap"
)

// handleError converts domain errors to HTTP responses
func handleError(c *gin.Context, log *logger.Logger, err error) {
	var terr *domain.TransitionError

	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsValidationError(err):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), "")
	case domain.IsSeatConflictError(err):
		response.Error(c, http.StatusConflict, "SEAT_CONFLICT", err.Error(), "")
	case errors.As(err, &terr):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error(), string(terr.From))
	case domain.IsTransitionError(err):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error(), "")
	case domain.IsForbiddenError(err):
		response.Forbidden(c, err.Error())
	case domain.IsConflictError(err):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error(), "")
	default:
		log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// actorFrom reads the caller identity placed in the context by the auth middleware
func actorFrom(c *gin.Context) (domain.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domain.Actor{}, false
	}
	role, _ := middleware.GetRole(c)
	return domain.Actor{
		UserID: userID,
		Role:   role,
		Name:   middleware.GetUserName(c),
	}, true
}

// requireActor writes 401 and returns false when the request is anonymous
func requireActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
	}
	return actor, ok
}

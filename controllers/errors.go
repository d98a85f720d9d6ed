package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorhub/forum/services"
	"github.com/mentorhub/forum/utils"
)

// respondError maps a service failure onto the response envelope.
func respondError(ctx *gin.Context, err error) {
	e, ok := services.AsError(err)
	if !ok {
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
		return
	}
	status, code := statusFor(e)
	utils.Respond(ctx, status, code, e.Message, errorDetail(e))
}

func statusFor(e *services.Error) (int, int) {
	switch e.Kind {
	case services.KindNotFound:
		if e.Cause == services.CauseAlreadyDeleted {
			return http.StatusNotFound, 40402
		}
		return http.StatusNotFound, 40401
	case services.KindUnauthorized:
		switch e.Cause {
		case services.CauseOwnership:
			return http.StatusForbidden, 40301
		case services.CauseRouteOrigin:
			return http.StatusForbidden, 40302
		case services.CauseCategoryScope:
			return http.StatusForbidden, 40303
		default:
			if e.Message == services.ReasonLoginRequired {
				return http.StatusUnauthorized, 40106
			}
			return http.StatusForbidden, 40304
		}
	case services.KindValidation:
		return http.StatusBadRequest, 40020
	default:
		return http.StatusInternalServerError, 50020
	}
}

func errorDetail(e *services.Error) interface{} {
	if e.Cause == services.CauseNone {
		return nil
	}
	return gin.H{"cause": e.Cause}
}

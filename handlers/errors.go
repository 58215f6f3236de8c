package handlers

import (
	"net/http"

	"slotbook/services/booking"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusForKind maps booking error kinds onto HTTP status codes.
func statusForKind(kind booking.ErrorKind) int {
	switch kind {
	case booking.KindValidation:
		return http.StatusBadRequest
	case booking.KindNotFound:
		return http.StatusNotFound
	case booking.KindAuthorization:
		return http.StatusForbidden
	case booking.KindConflict:
		return http.StatusConflict
	case booking.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Unclassified errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	kind := booking.KindOf(err)
	status := statusForKind(kind)
	if kind == "" {
		utils.GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(status, utils.ErrorResponse{Message: "Internal Server Error"})
		return
	}
	utils.JSONError(c, status, booking.MessageOf(err), string(kind))
}

package v1

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/culturepass/booking-api/internal/api/middleware"
)

var errInvalidID = errors.New("invalid ID in path")

// currentUserID reads the authenticated user's ID set by the JWT middleware.
func currentUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	userID, ok := value.(uint)

	return userID, ok
}

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}

	return uint(id), nil
}

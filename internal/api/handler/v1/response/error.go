package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/culturepass/booking-api/internal/domain"
)

// Err is the error body of every non-2xx response.
type Err struct {
	StatusCode int    `json:"-"`
	Field      string `json:"field,omitempty"`
	Msg        string `json:"msg"`
}

func (e *Err) Error() string {
	return e.Msg
}

func NewErr(statusCode int, msg string) *Err {
	return &Err{
		StatusCode: statusCode,
		Msg:        msg,
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, err.Error())
}

func ErrWrongCredentials(err error) *Err {
	return NewErr(http.StatusUnauthorized, err.Error())
}

func ErrMissingAuthorization() *Err {
	return NewErr(http.StatusUnauthorized, "missing authorization header")
}

func ErrInvalidAuthorization() *Err {
	return NewErr(http.StatusUnauthorized, "invalid authorization token")
}

func ErrPermissionDenied() *Err {
	return NewErr(http.StatusForbidden, "permission denied")
}

func ErrNotFound(err error) *Err {
	return NewErr(http.StatusNotFound, err.Error())
}

func ErrInternalServerError(err error) *Err {
	// The internal message never leaks to the client.
	zap.L().Error("internal server error", zap.Error(err))

	return NewErr(http.StatusInternalServerError, "internal server error")
}

// ErrRejection maps a business rule rejection to a 4xx response carrying
// the rejected field and the stable reason code.
func ErrRejection(err error) *Err {
	statusCode := http.StatusBadRequest
	if errors.Is(err, domain.ErrForbidden) {
		statusCode = http.StatusForbidden
	}

	var rejection *domain.Rejection
	if errors.As(err, &rejection) {
		return &Err{
			StatusCode: statusCode,
			Field:      rejection.Field,
			Msg:        err.Error(),
		}
	}

	return NewErr(statusCode, err.Error())
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.JSON(err.StatusCode, err)
}

// AbortWithErr is RenderErr for middlewares, where the chain must stop.
func AbortWithErr(ctx *gin.Context, err *Err) {
	ctx.AbortWithStatusJSON(err.StatusCode, err)
}

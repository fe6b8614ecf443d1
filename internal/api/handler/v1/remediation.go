package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/culturepass/booking-api/internal/api/handler/v1/request"
	"github.com/culturepass/booking-api/internal/api/handler/v1/response"
	"github.com/culturepass/booking-api/internal/service"
)

type RemediationService interface {
	RevertQuarantineValidations(ctx context.Context, from, to time.Time) (service.RemediationReport, error)
	CancelBookingsOfSuspendedUser(ctx context.Context, userID uint) (service.RemediationReport, error)
}

type RemediationHandler struct {
	svc     RemediationService
	userSvc UserService
}

func NewRemediationHandler(svc RemediationService, userSvc UserService) *RemediationHandler {
	return &RemediationHandler{
		svc:     svc,
		userSvc: userSvc,
	}
}

func (h *RemediationHandler) requireAdmin(ctx *gin.Context) bool {
	actorID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return false
	}

	actor, err := h.userSvc.GetUser(ctx.Request.Context(), actorID)
	if err != nil {
		err = fmt.Errorf("v1.requireAdmin -> h.userSvc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return false
	}

	if !actor.IsAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied())

		return false
	}

	return true
}

// HandleRevertValidations godoc
// @Summary      Revert booking validations made in a time window (admin only)
// @Tags         remediation
// @Produce      json
// @Param        request  body       request.RevertValidationsRequest true "request body"
// @Success      200      {object}   service.RemediationReport
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /remediation/revert-validations [post]
func (h *RemediationHandler) HandleRevertValidations(ctx *gin.Context) {
	if !h.requireAdmin(ctx) {
		return
	}

	var req request.RevertValidationsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	report, err := h.svc.RevertQuarantineValidations(ctx.Request.Context(), req.From, req.To)
	if err != nil {
		err = fmt.Errorf("v1.HandleRevertValidations -> h.svc.RevertQuarantineValidations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, report)
}

// HandleCancelUserBookings godoc
// @Summary      Cancel all active bookings of a suspended user (admin only)
// @Tags         remediation
// @Produce      json
// @Param        userID   path       int  true "user ID"
// @Success      200      {object}   service.RemediationReport
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /remediation/users/{userID}/cancel-bookings [post]
func (h *RemediationHandler) HandleCancelUserBookings(ctx *gin.Context) {
	if !h.requireAdmin(ctx) {
		return
	}

	userID, err := parseIDParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	report, err := h.svc.CancelBookingsOfSuspendedUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleCancelUserBookings -> h.svc.CancelBookingsOfSuspendedUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, report)
}

package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/culturepass/booking-api/internal/api/handler/v1/request"
	"github.com/culturepass/booking-api/internal/api/handler/v1/response"
	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	Deactivate(ctx context.Context, id uint) (domain.User, error)
	RecordFraudCheck(ctx context.Context, check domain.FraudCheck) (domain.FraudCheck, error)
}

type EligibilityService interface {
	YoungStatus(ctx context.Context, userID uint) (domain.YoungStatus, error)
}

type WalletService interface {
	RemainingBalance(ctx context.Context, userID uint) (decimal.Decimal, error)
	DomainsCredit(ctx context.Context, userID uint) (domain.DomainsCredit, error)
}

type UserHandler struct {
	userSvc        UserService
	eligibilitySvc EligibilityService
	walletSvc      WalletService
}

func NewUserHandler(userSvc UserService, eligibilitySvc EligibilityService, walletSvc WalletService) *UserHandler {
	return &UserHandler{
		userSvc:        userSvc,
		eligibilitySvc: eligibilitySvc,
		walletSvc:      walletSvc,
	}
}

// actor loads the authenticated user making the request.
func (h *UserHandler) actor(ctx *gin.Context) (domain.User, bool) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return domain.User{}, false
	}

	actor, err := h.userSvc.GetUser(ctx.Request.Context(), actorID)
	if err != nil {
		err = fmt.Errorf("v1.actor -> h.userSvc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return domain.User{}, false
	}

	return actor, true
}

// HandleGetUser godoc
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        userID   path       int  true "user ID"
// @Success      200      {object}   domain.User
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID} [get]
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	userID, err := parseIDParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	if actor.ID != userID && !actor.IsAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied())

		return
	}

	user, err := h.userSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUserNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetUser -> h.userSvc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleGetYoungStatus godoc
// @Summary      Get the authenticated user's eligibility status
// @Tags         users
// @Produce      json
// @Success      200      {object}   response.YoungStatusResponse
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/me/status [get]
func (h *UserHandler) HandleGetYoungStatus(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	status, err := h.eligibilitySvc.YoungStatus(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetYoungStatus -> h.eligibilitySvc.YoungStatus -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.NewYoungStatusResponse(status))
}

// HandleGetWallet godoc
// @Summary      Get the authenticated user's wallet
// @Tags         users
// @Produce      json
// @Success      200      {object}   response.WalletResponse
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/me/wallet [get]
func (h *UserHandler) HandleGetWallet(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	balance, err := h.walletSvc.RemainingBalance(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetWallet -> h.walletSvc.RemainingBalance -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	credit, err := h.walletSvc.DomainsCredit(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetWallet -> h.walletSvc.DomainsCredit -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.WalletResponse{
		RemainingBalance: balance.String(),
		DomainsCredit:    credit,
	})
}

// HandleDeactivateUser godoc
// @Summary      Deactivate a user (admin only)
// @Tags         users
// @Produce      json
// @Param        userID   path       int  true "user ID"
// @Success      200      {object}   domain.User
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID}/deactivate [post]
func (h *UserHandler) HandleDeactivateUser(ctx *gin.Context) {
	userID, err := parseIDParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	if !actor.IsAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied())

		return
	}

	user, err := h.userSvc.Deactivate(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUserNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleDeactivateUser -> h.userSvc.Deactivate -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleRecordFraudCheck godoc
// @Summary      Record a fraud-check outcome for a user (admin only)
// @Tags         users
// @Produce      json
// @Param        userID   path       int  true "user ID"
// @Param        request  body       request.RecordFraudCheckRequest true "request body"
// @Success      201      {object}   domain.FraudCheck
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID}/fraud-checks [post]
func (h *UserHandler) HandleRecordFraudCheck(ctx *gin.Context) {
	userID, err := parseIDParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	if !actor.IsAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied())

		return
	}

	var req request.RecordFraudCheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	check, err := h.userSvc.RecordFraudCheck(ctx.Request.Context(), domain.FraudCheck{
		UserID:          userID,
		Type:            domain.FraudCheckType(req.Type),
		Status:          domain.FraudCheckStatus(req.Status),
		ReasonCodes:     req.ReasonCodes,
		EligibilityType: domain.EligibilityType(req.EligibilityType),
		DateCreated:     time.Now(),
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleRecordFraudCheck -> h.userSvc.RecordFraudCheck -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, check)
}

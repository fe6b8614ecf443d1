package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/culturepass/booking-api/internal/api/handler/v1/request"
	"github.com/culturepass/booking-api/internal/api/handler/v1/response"
	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/service"
)

type OffererService interface {
	CreateOfferer(ctx context.Context, offerer domain.Offerer, creatorID uint) (domain.Offerer, error)
	ValidateOfferer(ctx context.Context, offererID uint, token string) (domain.Offerer, error)
	GetOfferer(ctx context.Context, id uint) (domain.Offerer, error)
	CreateVenue(ctx context.Context, venue domain.Venue, actorID uint) (domain.Venue, error)
	GetVenue(ctx context.Context, id uint) (domain.Venue, error)
}

type OffererHandler struct {
	svc OffererService
}

func NewOffererHandler(svc OffererService) *OffererHandler {
	return &OffererHandler{
		svc: svc,
	}
}

// HandleCreateOfferer godoc
// @Summary      Register an offerer pending validation
// @Tags         offerers
// @Produce      json
// @Param        request   body      request.CreateOffererRequest true "request body"
// @Success      201      {object}   domain.Offerer
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /offerers [post]
func (h *OffererHandler) HandleCreateOfferer(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	var req request.CreateOffererRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	offerer, err := h.svc.CreateOfferer(ctx.Request.Context(), domain.Offerer{
		Name:  req.Name,
		Siren: req.Siren,
	}, actorID)
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateOfferer -> h.svc.CreateOfferer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, offerer)
}

// HandleValidateOfferer godoc
// @Summary      Validate an offerer with its validation token
// @Tags         offerers
// @Produce      json
// @Param        offererID path      int true "offerer ID"
// @Param        request   body      request.ValidateOffererRequest true "request body"
// @Success      200      {object}   domain.Offerer
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /offerers/{offererID}/validate [post]
func (h *OffererHandler) HandleValidateOfferer(ctx *gin.Context) {
	offererID, err := parseIDParam(ctx, "offererID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.ValidateOffererRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	offerer, err := h.svc.ValidateOfferer(ctx.Request.Context(), offererID, req.Token)
	if err != nil {
		if errors.Is(err, service.ErrOffererNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrOffererNotFound))

			return
		}
		if errors.Is(err, service.ErrOffererAlreadyValidated) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrOffererAlreadyValidated))

			return
		}

		err = fmt.Errorf("v1.HandleValidateOfferer -> h.svc.ValidateOfferer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, offerer)
}

// HandleGetOfferer godoc
// @Summary      Get an offerer by ID
// @Tags         offerers
// @Produce      json
// @Param        offererID path      int true "offerer ID"
// @Success      200      {object}   domain.Offerer
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /offerers/{offererID} [get]
func (h *OffererHandler) HandleGetOfferer(ctx *gin.Context) {
	offererID, err := parseIDParam(ctx, "offererID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	offerer, err := h.svc.GetOfferer(ctx.Request.Context(), offererID)
	if err != nil {
		if errors.Is(err, service.ErrOffererNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrOffererNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetOfferer -> h.svc.GetOfferer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, offerer)
}

// HandleCreateVenue godoc
// @Summary      Create a venue under an offerer
// @Tags         offerers
// @Produce      json
// @Param        request   body      request.CreateVenueRequest true "request body"
// @Success      201      {object}   domain.Venue
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /venues [post]
func (h *OffererHandler) HandleCreateVenue(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	var req request.CreateVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	venue, err := h.svc.CreateVenue(ctx.Request.Context(), domain.Venue{
		OffererID: req.OffererID,
		Name:      req.Name,
		Address:   req.Address,
		IsVirtual: req.IsVirtual,
	}, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			response.RenderErr(ctx, response.ErrPermissionDenied())

			return
		}
		if errors.Is(err, service.ErrOffererNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrOffererNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleCreateVenue -> h.svc.CreateVenue -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, venue)
}

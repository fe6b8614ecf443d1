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

type OfferService interface {
	CreateOffer(ctx context.Context, offer domain.Offer, actorID uint) (domain.Offer, error)
	GetOffer(ctx context.Context, id uint) (domain.Offer, error)
	UpdateOffer(ctx context.Context, offerID uint, name string, isActive bool, actorID uint) (domain.Offer, error)
	CreateStock(ctx context.Context, stock domain.Stock, actorID uint) (domain.Stock, error)
	UpdateStock(ctx context.Context, stock domain.Stock, actorID uint) (domain.Stock, error)
	SoftDeleteStock(ctx context.Context, stockID uint, actorID uint) (service.RemediationReport, error)
}

type OfferHandler struct {
	svc OfferService
}

func NewOfferHandler(svc OfferService) *OfferHandler {
	return &OfferHandler{
		svc: svc,
	}
}

func (h *OfferHandler) renderOfferErr(ctx *gin.Context, op string, err error) {
	var rejection *domain.Rejection
	switch {
	case errors.As(err, &rejection):
		response.RenderErr(ctx, response.ErrRejection(err))
	case errors.Is(err, service.ErrOfferNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrOfferNotFound))
	case errors.Is(err, service.ErrStockNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrStockNotFound))
	case errors.Is(err, service.ErrVenueNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrVenueNotFound))
	default:
		err = fmt.Errorf("v1.%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

// HandleCreateOffer godoc
// @Summary      Create an offer on a venue
// @Tags         offers
// @Produce      json
// @Param        request   body      request.CreateOfferRequest true "request body"
// @Success      201      {object}   domain.Offer
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /offers [post]
func (h *OfferHandler) HandleCreateOffer(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	var req request.CreateOfferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	offer, err := h.svc.CreateOffer(ctx.Request.Context(), domain.Offer{
		VenueID:  req.VenueID,
		Name:     req.Name,
		Category: domain.OfferCategory(req.Category),
		IsActive: true,
	}, actorID)
	if err != nil {
		h.renderOfferErr(ctx, "HandleCreateOffer", err)

		return
	}

	ctx.JSON(http.StatusCreated, offer)
}

// HandleGetOffer godoc
// @Summary      Get an offer by ID
// @Tags         offers
// @Produce      json
// @Param        offerID  path       int  true "offer ID"
// @Success      200      {object}   domain.Offer
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /offers/{offerID} [get]
func (h *OfferHandler) HandleGetOffer(ctx *gin.Context) {
	offerID, err := parseIDParam(ctx, "offerID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	offer, err := h.svc.GetOffer(ctx.Request.Context(), offerID)
	if err != nil {
		h.renderOfferErr(ctx, "HandleGetOffer", err)

		return
	}

	ctx.JSON(http.StatusOK, offer)
}

// HandleUpdateOffer godoc
// @Summary      Update an offer
// @Tags         offers
// @Produce      json
// @Param        offerID  path       int  true "offer ID"
// @Param        request  body       request.UpdateOfferRequest true "request body"
// @Success      200      {object}   domain.Offer
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /offers/{offerID} [put]
func (h *OfferHandler) HandleUpdateOffer(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	offerID, err := parseIDParam(ctx, "offerID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.UpdateOfferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	offer, err := h.svc.UpdateOffer(ctx.Request.Context(), offerID, req.Name, req.IsActive, actorID)
	if err != nil {
		h.renderOfferErr(ctx, "HandleUpdateOffer", err)

		return
	}

	ctx.JSON(http.StatusOK, offer)
}

// HandleCreateStock godoc
// @Summary      Create a stock under an offer
// @Tags         offers
// @Produce      json
// @Param        request  body       request.CreateStockRequest true "request body"
// @Success      201      {object}   domain.Stock
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /stocks [post]
func (h *OfferHandler) HandleCreateStock(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	var req request.CreateStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	stock, err := h.svc.CreateStock(ctx.Request.Context(), domain.Stock{
		OfferID:              req.OfferID,
		Price:                req.Price,
		Quantity:             req.Quantity,
		BookingLimitDatetime: req.BookingLimitDatetime,
		BeginningDatetime:    req.BeginningDatetime,
	}, actorID)
	if err != nil {
		h.renderOfferErr(ctx, "HandleCreateStock", err)

		return
	}

	ctx.JSON(http.StatusCreated, stock)
}

// HandleUpdateStock godoc
// @Summary      Update a stock
// @Tags         offers
// @Produce      json
// @Param        stockID  path       int  true "stock ID"
// @Param        request  body       request.UpdateStockRequest true "request body"
// @Success      200      {object}   domain.Stock
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /stocks/{stockID} [put]
func (h *OfferHandler) HandleUpdateStock(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	stockID, err := parseIDParam(ctx, "stockID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.UpdateStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	stock, err := h.svc.UpdateStock(ctx.Request.Context(), domain.Stock{
		ID:                   stockID,
		Price:                req.Price,
		Quantity:             req.Quantity,
		BookingLimitDatetime: req.BookingLimitDatetime,
		BeginningDatetime:    req.BeginningDatetime,
	}, actorID)
	if err != nil {
		h.renderOfferErr(ctx, "HandleUpdateStock", err)

		return
	}

	ctx.JSON(http.StatusOK, stock)
}

// HandleSoftDeleteStock godoc
// @Summary      Soft-delete a stock and cancel its active bookings
// @Tags         offers
// @Produce      json
// @Param        stockID  path       int  true "stock ID"
// @Success      200      {object}   service.RemediationReport
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /stocks/{stockID} [delete]
func (h *OfferHandler) HandleSoftDeleteStock(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	stockID, err := parseIDParam(ctx, "stockID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	report, err := h.svc.SoftDeleteStock(ctx.Request.Context(), stockID, actorID)
	if err != nil {
		h.renderOfferErr(ctx, "HandleSoftDeleteStock", err)

		return
	}

	ctx.JSON(http.StatusOK, report)
}

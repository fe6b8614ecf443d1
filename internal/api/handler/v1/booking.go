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

type BookingService interface {
	BookOffer(ctx context.Context, userID, stockID uint, quantity int) (domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID uint, actor *domain.User) (domain.Booking, error)
	MarkUsed(ctx context.Context, token string) (domain.Booking, error)
	GetBooking(ctx context.Context, id uint) (domain.Booking, error)
	GetBookingsOfUser(ctx context.Context, userID uint) ([]domain.BookedOffer, error)
}

type BookingHandler struct {
	svc     BookingService
	userSvc UserService
}

func NewBookingHandler(svc BookingService, userSvc UserService) *BookingHandler {
	return &BookingHandler{
		svc:     svc,
		userSvc: userSvc,
	}
}

func (h *BookingHandler) actor(ctx *gin.Context) (domain.User, bool) {
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

// HandleBookOffer godoc
// @Summary      Book a stock for the authenticated user
// @Tags         bookings
// @Produce      json
// @Param        request   body      request.BookOfferRequest true "request body"
// @Success      201      {object}   domain.Booking
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bookings [post]
func (h *BookingHandler) HandleBookOffer(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	var req request.BookOfferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	booking, err := h.svc.BookOffer(ctx.Request.Context(), userID, req.StockID, req.Quantity)
	if err != nil {
		var rejection *domain.Rejection
		if errors.As(err, &rejection) {
			response.RenderErr(ctx, response.ErrRejection(err))

			return
		}
		if errors.Is(err, service.ErrStockNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrStockNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleBookOffer -> h.svc.BookOffer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, booking)
}

// HandleGetBookings godoc
// @Summary      List the authenticated user's bookings
// @Tags         bookings
// @Produce      json
// @Success      200      {array}    response.BookedOfferResponse
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bookings [get]
func (h *BookingHandler) HandleGetBookings(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrInvalidAuthorization())

		return
	}

	bookings, err := h.svc.GetBookingsOfUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetBookings -> h.svc.GetBookingsOfUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.NewBookedOffersResponse(bookings))
}

// HandleCancelBooking godoc
// @Summary      Cancel a booking
// @Tags         bookings
// @Produce      json
// @Param        bookingID   path    int  true "booking ID"
// @Success      200      {object}   domain.Booking
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bookings/{bookingID}/cancel [post]
func (h *BookingHandler) HandleCancelBooking(ctx *gin.Context) {
	bookingID, err := parseIDParam(ctx, "bookingID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	booking, err := h.svc.CancelBooking(ctx.Request.Context(), bookingID, &actor)
	if err != nil {
		var rejection *domain.Rejection
		if errors.As(err, &rejection) {
			response.RenderErr(ctx, response.ErrRejection(err))

			return
		}
		if errors.Is(err, service.ErrBookingNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrBookingNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleCancelBooking -> h.svc.CancelBooking -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, booking)
}

// HandleMarkBookingUsed godoc
// @Summary      Redeem a booking by its token
// @Tags         bookings
// @Produce      json
// @Param        token   path       string  true "booking token"
// @Success      200      {object}   domain.Booking
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /bookings/token/{token}/use [post]
func (h *BookingHandler) HandleMarkBookingUsed(ctx *gin.Context) {
	token := ctx.Param("token")
	if token == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("missing booking token")))

		return
	}

	booking, err := h.svc.MarkUsed(ctx.Request.Context(), token)
	if err != nil {
		var rejection *domain.Rejection
		if errors.As(err, &rejection) {
			response.RenderErr(ctx, response.ErrRejection(err))

			return
		}
		if errors.Is(err, service.ErrBookingNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrBookingNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleMarkBookingUsed -> h.svc.MarkUsed -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, booking)
}

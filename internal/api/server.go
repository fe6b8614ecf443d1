package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/culturepass/booking-api/docs"
	v1 "github.com/culturepass/booking-api/internal/api/handler/v1"
	"github.com/culturepass/booking-api/internal/api/middleware"
	"github.com/culturepass/booking-api/internal/config"
	"github.com/culturepass/booking-api/internal/repository"
	"github.com/culturepass/booking-api/internal/repository/dao"
	"github.com/culturepass/booking-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	policy, err := service.NewBookingPolicy(conf.Booking)
	if err != nil {
		return nil, fmt.Errorf("service.NewBookingPolicy -> %w", err)
	}

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	offererRepo := repository.NewOffererRepository(dao.NewOffererDAO(db))
	offerRepo := repository.NewOfferRepository(dao.NewOfferDAO(db))
	bookingRepo := repository.NewBookingRepository(dao.NewBookingDAO(db))

	userSvc := service.NewUserService(userRepo)
	bookingSvc := service.NewBookingService(bookingRepo, userRepo, offerRepo, offererRepo, policy)

	authHandler := v1.NewAuthHandler(conf.API, service.NewAuthService(userRepo))
	userHandler := v1.NewUserHandler(
		userSvc,
		service.NewEligibilityService(userRepo, policy),
		service.NewWalletService(userRepo, bookingRepo, policy),
	)
	bookingHandler := v1.NewBookingHandler(bookingSvc, userSvc)
	offererHandler := v1.NewOffererHandler(service.NewOffererService(offererRepo))
	offerHandler := v1.NewOfferHandler(service.NewOfferService(offerRepo, offererRepo, bookingRepo))
	remediationHandler := v1.NewRemediationHandler(service.NewRemediationService(bookingRepo), userSvc)

	s.MountHandlers(authHandler, userHandler, bookingHandler, offererHandler, offerHandler, remediationHandler)

	return s, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	bookingHandler *v1.BookingHandler,
	offererHandler *v1.OffererHandler,
	offerHandler *v1.OfferHandler,
	remediationHandler *v1.RemediationHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.GET("/users/me/status", userHandler.HandleGetYoungStatus)
		authenticated.GET("/users/me/wallet", userHandler.HandleGetWallet)
		authenticated.GET("/users/:userID", userHandler.HandleGetUser)
		authenticated.POST("/users/:userID/deactivate", userHandler.HandleDeactivateUser)
		authenticated.POST("/users/:userID/fraud-checks", userHandler.HandleRecordFraudCheck)

		authenticated.POST("/bookings", bookingHandler.HandleBookOffer)
		authenticated.GET("/bookings", bookingHandler.HandleGetBookings)
		authenticated.POST("/bookings/:bookingID/cancel", bookingHandler.HandleCancelBooking)
		authenticated.POST("/bookings/token/:token/use", bookingHandler.HandleMarkBookingUsed)

		authenticated.POST("/offerers", offererHandler.HandleCreateOfferer)
		authenticated.GET("/offerers/:offererID", offererHandler.HandleGetOfferer)
		authenticated.POST("/offerers/:offererID/validate", offererHandler.HandleValidateOfferer)
		authenticated.POST("/venues", offererHandler.HandleCreateVenue)

		authenticated.POST("/offers", offerHandler.HandleCreateOffer)
		authenticated.GET("/offers/:offerID", offerHandler.HandleGetOffer)
		authenticated.PUT("/offers/:offerID", offerHandler.HandleUpdateOffer)
		authenticated.POST("/stocks", offerHandler.HandleCreateStock)
		authenticated.PUT("/stocks/:stockID", offerHandler.HandleUpdateStock)
		authenticated.DELETE("/stocks/:stockID", offerHandler.HandleSoftDeleteStock)

		authenticated.POST("/remediation/revert-validations", remediationHandler.HandleRevertValidations)
		authenticated.POST("/remediation/users/:userID/cancel-bookings", remediationHandler.HandleCancelUserBookings)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Culture Pass Booking API"
	docs.SwaggerInfo.Description = "Booking platform for cultural offers."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

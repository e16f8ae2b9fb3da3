package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/catireiro/backend/internal/config"
	"github.com/catireiro/backend/internal/handler"
	appmw "github.com/catireiro/backend/internal/middleware"
	"github.com/catireiro/backend/internal/notifier"
	"github.com/catireiro/backend/internal/repository"
	"github.com/catireiro/backend/internal/service"
)

type Server struct {
	e           *echo.Echo
	listingRepo repository.ListingRepository
	bidRepo     repository.BidRepository
	profileRepo repository.ProfileRepository
}

func New(db *gorm.DB, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	hub := notifier.NewHub()

	listingRepo := repository.NewListingRepository(db)
	bidRepo := repository.NewBidRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	listingSvc := service.NewListingService(listingRepo, logger)
	bidSvc := service.NewBidService(bidRepo, listingRepo, profileRepo, hub, logger, cfg.WhatsAppCountryCode)

	listingHandler := handler.NewListingHandler(listingSvc)
	bidHandler := handler.NewBidHandler(bidSvc, listingSvc)
	streamHandler := handler.NewStreamHandler(bidSvc, listingSvc, hub, logger)
	profileHandler := handler.NewProfileHandler(profileRepo)

	var authRequired []echo.MiddlewareFunc
	if cfg.FirebaseProjectID != "" {
		authMw, err := appmw.NewAuthMiddleware(context.Background(), cfg.FirebaseProjectID)
		if err != nil {
			return nil, err
		}
		authRequired = append(authRequired, authMw.RequireAuth)
	} else {
		logger.Warn("FIREBASE_PROJECT_ID not set; authenticated routes are open")
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")
	api.GET("/listings", listingHandler.List)
	api.GET("/listings/:id", listingHandler.Get)
	api.GET("/listings/:id/bids", bidHandler.ListByListing)
	api.GET("/listings/:id/stream", streamHandler.Stream)
	api.GET("/users/:uid/profile", profileHandler.GetPublic)

	api.POST("/listings", listingHandler.Create, authRequired...)
	api.PUT("/listings/:id", listingHandler.Update, authRequired...)
	api.POST("/listings/:id/bids", bidHandler.Place, authRequired...)
	api.POST("/listings/:id/accept", bidHandler.Accept, authRequired...)
	api.GET("/me/listings", listingHandler.ListMine, authRequired...)
	api.GET("/me/bids", bidHandler.ListMine, authRequired...)
	api.PUT("/me/profile", profileHandler.UpsertMine, authRequired...)

	return &Server{
		e:           e,
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		profileRepo: profileRepo,
	}, nil
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB late-binds the database once it is reachable, so the process can
// start serving /healthz before the connection is up.
func (s *Server) SetDB(db *gorm.DB) {
	s.listingRepo.SetDB(db)
	s.bidRepo.SetDB(db)
	s.profileRepo.SetDB(db)
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/clubhub/campusbooking/api"
	"github.com/clubhub/campusbooking/config"
	"github.com/clubhub/campusbooking/internal/service/analytics"
	"github.com/clubhub/campusbooking/internal/service/booking"
	"github.com/clubhub/campusbooking/internal/service/resources"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	resourceSvc resources.ResourceUseCase,
	bookingSvc booking.BookingUseCase,
	analyticsSvc analytics.AnalyticsUseCase,
) error {
	router := newRouter(resourceSvc, bookingSvc, analyticsSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(
	resourceSvc resources.ResourceUseCase,
	bookingSvc booking.BookingUseCase,
	analyticsSvc analytics.AnalyticsUseCase,
) *gin.Engine {
	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	resourceHandler := api.NewResourceHandler(resourceSvc)
	resourceHandler.Register(v1.Group("/resources"))
	resourceHandler.RegisterMaintenance(v1.Group("/maintenance"))
	api.NewBookingHandler(bookingSvc).Register(v1.Group("/bookings"))
	api.NewAnalyticsHandler(analyticsSvc).Register(v1.Group("/analytics"))

	return router
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/booking-microservice/event-manager/config"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/consumer"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/handler"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/middleware"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/repository"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/service"
	"github.com/Eursukkul/booking-microservice/event-manager/pkg/bookingrpc"
	"github.com/Eursukkul/booking-microservice/event-manager/pkg/database"
	"github.com/Eursukkul/booking-microservice/event-manager/pkg/rabbitmq"
	"github.com/Eursukkul/booking-microservice/event-manager/pkg/telemetry"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("event-manager: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	strategy, err := service.ParseCountStrategy(cfg.AttendeeCountStrategy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("[Telemetry] shutdown: %v", err)
		}
	}()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		return err
	}

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	defer publisher.Close()

	booking, err := bookingrpc.Dial(cfg.BookingAddr, cfg.BookingTimeout)
	if err != nil {
		return err
	}
	defer booking.Close()

	eventRepo := repository.NewEventRepository(db)
	guestRepo := repository.NewGuestRepository(db)
	reconciler := service.NewReconciler(eventRepo)
	eventSvc := service.NewEventService(eventRepo, booking, publisher, cfg.BookingCurrency)
	guestSvc := service.NewGuestService(guestRepo, eventRepo, reconciler, publisher, strategy)

	// Under the delta strategy the bus is the only writer of attendee counts;
	// under recompute the queue is not consumed at all.
	var msgs <-chan amqp.Delivery
	if strategy == service.StrategyDelta {
		rsvpQueue, err := rabbitmq.NewConsumer(cfg.RabbitURL, consumer.QueueName, consumer.RoutingKeys...)
		if err != nil {
			return fmt.Errorf("rsvp consumer: %w", err)
		}
		defer rsvpQueue.Close()

		if msgs, err = rsvpQueue.Consume(); err != nil {
			return err
		}
	}

	e := newServer(cfg, db, strategy, eventSvc, guestSvc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Event Manager starting on :%s (attendee counts: %s)", cfg.ServerPort, strategy)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if msgs != nil {
		rsvp := consumer.NewRsvpConsumer(reconciler)
		g.Go(func() error { return rsvp.Run(ctx, msgs) })
	}

	return g.Wait()
}

func newServer(cfg *config.Config, db *gorm.DB, strategy service.CountStrategy, eventSvc service.EventService, guestSvc service.GuestService) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "service": cfg.ServiceName})
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":                  "ok",
			"service":                 cfg.ServiceName,
			"attendee_count_strategy": string(strategy),
		})
	})

	handler.NewEventHandler(eventSvc).RegisterRoutes(e.Group("/api/v1/events"))
	guests := handler.NewGuestHandler(guestSvc)
	guests.RegisterRoutes(e.Group("/api/v1/events/:id/guests"))
	guests.RegisterUserRoutes(e.Group("/api/v1/users/:userId"))

	return e
}

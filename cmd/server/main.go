package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"meetsync/internal/app"
	"meetsync/internal/config"
	"meetsync/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create db pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	mailCh, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open rabbitmq channel", "error", err)
		os.Exit(1)
	}
	defer mailCh.Close()

	if _, err := mailCh.QueueDeclare(app.MailQueueName, true, false, false, false, nil); err != nil {
		logger.Error("failed to declare email queue", "error", err)
		os.Exit(1)
	}

	appInstance := &app.App{
		DB:     pool,
		Cfg:    cfg,
		RDB:    rdb,
		MailCh: mailCh,
	}
	if gcal := app.NewGoogleCalendar(cfg); gcal != nil {
		appInstance.Calendar = gcal
	} else {
		logger.Warn("Google Calendar credentials not configured; booking pages run without busy data")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.RegisterValidators()

	router := gin.Default()

	// OAuth2 callback (must be before auth middleware)
	router.GET("/oauth2callback", appInstance.GoogleOAuth2CallbackHandler)

	// public booking page routes
	booking := router.Group("/booking")
	{
		booking.GET("/:username/:event_url/slots", appInstance.BookingSlotsHandler)
		booking.POST("/:username/:event_url", appInstance.CreateBookingHandler)
	}

	api := router.Group("/api")
	api.Use(app.AuthMiddleware(cfg))
	{
		api.POST("/users", appInstance.CreateUserHandler)

		users := api.Group("/users")
		{
			users.PUT("/:id/settings", appInstance.UpdateSettingsHandler)
			users.GET("/:id/availability", appInstance.ListAvailabilityHandler)
			users.PUT("/:id/availability/:row_id", appInstance.UpdateAvailabilityHandler)
			users.POST("/:id/event-types", appInstance.CreateEventTypeHandler)
			users.GET("/:id/event-types", appInstance.ListEventTypesHandler)
			users.PUT("/:id/event-types/:event_type_id", appInstance.UpdateEventTypeHandler)
			users.DELETE("/:id/event-types/:event_type_id", appInstance.DeleteEventTypeHandler)
			users.GET("/:id/bookings", appInstance.ListBookingsHandler)
		}
		api.DELETE("/bookings/:id", appInstance.CancelBookingHandler)

		api.GET("/calendar/auth", appInstance.GoogleAuthHandler)
	}

	server.Run(router, cfg)
}

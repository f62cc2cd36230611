package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"meetsync/internal/config"
)

// App carries the service's shared dependencies; gin handlers hang off it.
type App struct {
	DB       *pgxpool.Pool
	Cfg      *config.Config
	RDB      *redis.Client
	MailCh   *amqp.Channel
	Calendar CalendarProvider
}

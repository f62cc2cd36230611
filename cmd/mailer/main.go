package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"meetsync/internal/app"
	"meetsync/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("failed to create mail client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	dialCtx, cancelDial := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancelDial()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("failed to connect to smtp server", "error", err)
		os.Exit(1)
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(app.MailQueueName, true, false, false, false, nil)
	if err != nil {
		logger.Error("failed to declare queue", "error", err)
		os.Exit(1)
	}

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("failed to start consuming", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				handleMessage(logger, client, cfg, msg)
			}
		}
	}()

	logger.Info("mailer waiting for messages")
	<-sigChan

	logger.Info("shutting down mailer")
	cancel()
	wg.Wait()
}

func handleMessage(logger *slog.Logger, client *mail.Client, cfg *config.Config, msg amqp.Delivery) {
	mailMessage := app.MailMessage{}
	if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
		logger.Error("failed to decode mail message", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	m := mail.NewMsg()
	if err := m.From(cfg.Email.From); err != nil {
		logger.Error("failed to set mail sender", "error", err)
		_ = msg.Nack(false, false)
		return
	}
	if err := m.To(mailMessage.To); err != nil {
		logger.Error("failed to set mail recipient", "to", mailMessage.To, "error", err)
		_ = msg.Nack(false, false)
		return
	}

	var templateFile, subject string
	switch mailMessage.Type {
	case "booking_created":
		templateFile = "./templates/booking_created_email.html"
		subject = "Your meeting is booked"
	case "booking_cancelled":
		templateFile = "./templates/booking_cancelled_email.html"
		subject = "Your meeting was cancelled"
	default:
		logger.Error("unsupported mail type", "type", mailMessage.Type)
		_ = msg.Nack(false, false)
		return
	}

	tmpl, err := template.ParseFiles(templateFile)
	if err != nil {
		logger.Error("failed to parse mail template", "template", templateFile, "error", err)
		_ = msg.Nack(false, false)
		return
	}
	if err := m.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
		logger.Error("failed to render mail body", "error", err)
		_ = msg.Nack(false, false)
		return
	}
	m.Subject(subject)

	if err := client.DialAndSend(m); err != nil {
		logger.Error("failed to send mail", "to", mailMessage.To, "error", err)
		// requeue so a transient smtp failure retries
		_ = msg.Nack(false, true)
		return
	}

	_ = msg.Ack(false)
}

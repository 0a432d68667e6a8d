package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"cfp/internal/mailer"
	"cfp/internal/middleware"
	"cfp/internal/models"
	"cfp/internal/notifications"
)

// dispatcher carries the best-effort side channels shared by the
// workflow services: the admin pub/sub feed and transactional email.
// Both run after the database commit and never fail the request.
type dispatcher struct {
	mailer   mailer.Mailer
	notifier *notifications.Notifier
}

// publishAdmin fans a feed entry out to connected admins.
func (d dispatcher) publishAdmin(n *models.Notification) {
	if d.notifier == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		middleware.Logger.Error("Failed to marshal notification payload", slog.String("error", err.Error()))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.notifier.PublishAdmin(ctx, string(payload)); err != nil {
		middleware.Logger.Error("Failed to publish admin notification", slog.String("error", err.Error()))
	}
}

// sendEmailAsync dispatches an email without blocking the request. A
// failed send is logged and counted, never surfaced to the caller.
func (d dispatcher) sendEmailAsync(msg mailer.Message) {
	if d.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := d.mailer.Send(ctx, msg); err != nil {
			middleware.EmailsAttempted.WithLabelValues(string(msg.Template), "failure").Inc()
			middleware.Logger.Error("Email dispatch failed",
				slog.String("template", string(msg.Template)),
				slog.String("to", msg.To),
				slog.String("error", err.Error()),
			)
			return
		}
		middleware.EmailsAttempted.WithLabelValues(string(msg.Template), "success").Inc()
	}()
}

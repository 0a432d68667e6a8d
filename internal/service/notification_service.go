package service

import (
	"context"
	"log/slog"
	"time"

	"cfp/internal/middleware"
	"cfp/internal/models"
	"cfp/internal/repository"
)

// NotificationService exposes the admin feed.
type NotificationService struct {
	notifRepo     repository.NotificationRepository
	retentionDays int
}

// NewNotificationService creates the feed service. retentionDays of 0
// disables purging.
func NewNotificationService(notifRepo repository.NotificationRepository, retentionDays int) *NotificationService {
	return &NotificationService{notifRepo: notifRepo, retentionDays: retentionDays}
}

// List returns feed entries, unread first then newest first.
func (s *NotificationService) List(ctx context.Context, limit, offset int) ([]models.Notification, error) {
	return s.notifRepo.List(ctx, limit, offset)
}

// MarkRead flips one entry to read. Idempotent.
func (s *NotificationService) MarkRead(ctx context.Context, id uint) error {
	return s.notifRepo.MarkRead(ctx, id)
}

// MarkAllRead flips every unread entry.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return s.notifRepo.MarkAllRead(ctx)
}

// UnreadCount returns the number of unread feed entries.
func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	return s.notifRepo.UnreadCount(ctx)
}

// PurgeOnce removes read entries older than the retention window.
func (s *NotificationService) PurgeOnce(ctx context.Context) (int64, error) {
	if s.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	return s.notifRepo.PurgeRead(ctx, cutoff)
}

// StartRetentionLoop purges expired read entries once at startup and
// then daily, until ctx is cancelled. Unread entries are never purged.
func (s *NotificationService) StartRetentionLoop(ctx context.Context) {
	if s.retentionDays <= 0 {
		middleware.Logger.Info("Notification retention disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			removed, err := s.PurgeOnce(ctx)
			if err != nil {
				middleware.Logger.Error("Notification purge failed", slog.String("error", err.Error()))
			} else if removed > 0 {
				middleware.Logger.Info("Purged read notifications",
					slog.Int64("removed", removed),
					slog.Int("retention_days", s.retentionDays),
				)
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationServicePurgeOnce(t *testing.T) {
	t.Parallel()

	t.Run("Purges Read Entries Past Retention", func(t *testing.T) {
		t.Parallel()

		notifs := noopNotificationRepo()
		var cutoff time.Time
		notifs.purgeReadFn = func(_ context.Context, olderThan time.Time) (int64, error) {
			cutoff = olderThan
			return 12, nil
		}

		svc := NewNotificationService(notifs, 30)
		removed, err := svc.PurgeOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(12), removed)

		expected := time.Now().AddDate(0, 0, -30)
		assert.WithinDuration(t, expected, cutoff, time.Minute)
	})

	t.Run("Zero Retention Disables Purge", func(t *testing.T) {
		t.Parallel()

		notifs := noopNotificationRepo()
		var purged bool
		notifs.purgeReadFn = func(_ context.Context, _ time.Time) (int64, error) {
			purged = true
			return 0, nil
		}

		svc := NewNotificationService(notifs, 0)
		removed, err := svc.PurgeOnce(context.Background())
		require.NoError(t, err)
		assert.Zero(t, removed)
		assert.False(t, purged)
	})
}

func TestNotificationServiceRetentionLoop(t *testing.T) {
	t.Parallel()

	notifs := noopNotificationRepo()
	purged := make(chan struct{}, 1)
	notifs.purgeReadFn = func(_ context.Context, _ time.Time) (int64, error) {
		select {
		case purged <- struct{}{}:
		default:
		}
		return 0, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := NewNotificationService(notifs, 30)
	go svc.StartRetentionLoop(ctx)

	select {
	case <-purged:
	case <-time.After(time.Second):
		t.Fatal("expected an immediate purge pass on startup")
	}
}

func TestNotificationServiceFeed(t *testing.T) {
	t.Parallel()

	notifs := noopNotificationRepo()
	var markedID uint
	notifs.markReadFn = func(_ context.Context, id uint) error {
		markedID = id
		return nil
	}
	var markedAll bool
	notifs.markAllReadFn = func(_ context.Context) error {
		markedAll = true
		return nil
	}
	notifs.unreadCountFn = func(_ context.Context) (int64, error) { return 5, nil }

	svc := NewNotificationService(notifs, 30)

	require.NoError(t, svc.MarkRead(context.Background(), 17))
	assert.Equal(t, uint(17), markedID)

	require.NoError(t, svc.MarkAllRead(context.Background()))
	assert.True(t, markedAll)

	count, err := svc.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

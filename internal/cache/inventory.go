package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	PendingUsersKey       = "users:pending"
	AdminStatsKey         = "stats:admin"
	UnreadCountKey        = "notifications:unread"
	ConversationKeyPrefix = "messages:conv:%d:%d"
	FormationKeyPrefix    = "formation:%d"
)

const (
	UserTTL         = 5 * time.Minute
	PendingUsersTTL = 1 * time.Minute
	AdminStatsTTL   = 1 * time.Minute
	UnreadCountTTL  = 30 * time.Second
	FormationTTL    = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ConversationKey(a, b uint) string {
	// Normalize so both directions map to one key
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf(ConversationKeyPrefix, a, b)
}

func FormationKey(formationID uint) string {
	return fmt.Sprintf(FormationKeyPrefix, formationID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, PendingUsersKey)
	Invalidate(ctx, AdminStatsKey)
}

func InvalidateConversation(ctx context.Context, a, b uint) {
	Invalidate(ctx, ConversationKey(a, b))
}

func InvalidateFormation(ctx context.Context, formationID uint) {
	Invalidate(ctx, FormationKey(formationID))
}

func InvalidateStats(ctx context.Context) {
	Invalidate(ctx, AdminStatsKey)
}

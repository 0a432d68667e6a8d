package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"cfp/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestNotificationRepository_List_UnreadFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "type", "is_read"}).
		AddRow(7, "conge_demande", false).
		AddRow(2, "new_apprenant", true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "notifications" ORDER BY is_read ASC, date_creation DESC LIMIT $1`)).
		WillReturnRows(rows)

	notifications, err := repo.List(ctx, 20, 0)
	assert.NoError(t, err)
	assert.Len(t, notifications, 2)
	assert.False(t, notifications[0].IsRead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_UnreadCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "notifications" WHERE is_read = $1`)).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.UnreadCount(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead_UnknownID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications" SET "is_read"=$1 WHERE id = $2`)).
		WithArgs(true, 999).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "notifications" WHERE id = $1`)).
		WithArgs(999).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.MarkRead(ctx, 999)
	var appErr *models.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_PurgeRead(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	cutoff := time.Now().AddDate(0, 0, -30)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "notifications" WHERE is_read = $1 AND date_creation < $2`)).
		WithArgs(true, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectCommit()

	removed, err := repo.PurgeRead(ctx, cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

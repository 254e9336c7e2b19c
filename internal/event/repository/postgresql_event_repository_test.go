package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/identity/internal/document"
	eventDomain "github.com/allisson/identity/internal/event/domain"
)

func TestPostgreSQLEventRepository_Insert(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLEventRepository(db)
		now := time.Now().UTC()

		payload := document.New()
		payload.Set("token", "raw-token")

		event := &eventDomain.Event{
			ID:           "event-1",
			Type:         eventDomain.EventTokenRevoked,
			UserID:       "user-1",
			MembershipID: "membership-1",
			Payload:      payload,
			EventTime:    now,
		}

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO events`)).
			WithArgs(
				event.ID, "TokenRevoked", event.UserID, event.MembershipID,
				[]byte(`{"token":"raw-token"}`), now,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Insert(context.Background(), event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_NilPayload", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLEventRepository(db)
		now := time.Now().UTC()

		event := &eventDomain.Event{
			ID:           "event-1",
			Type:         eventDomain.EventTokenVerified,
			UserID:       "user-1",
			MembershipID: "membership-1",
			EventTime:    now,
		}

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO events`)).
			WithArgs(event.ID, "TokenVerified", event.UserID, event.MembershipID, nil, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Insert(context.Background(), event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLEventRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLEventRepository(db)
		now := time.Now().UTC()

		rows := sqlmock.NewRows([]string{
			"id", "event_type", "user_id", "membership_id", "payload", "event_time",
		}).AddRow(
			"event-2", "TokenRefreshed", "user-1", "membership-1",
			[]byte(`{"refresh_token":"old-token"}`), now,
		).AddRow(
			"event-1", "TokenGenerated", "user-1", "membership-1", nil, now.Add(-time.Minute),
		)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, event_type`)).
			WithArgs("membership-1", 10, 0).
			WillReturnRows(rows)

		events, err := repo.List(ctx, "membership-1", 0, 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, eventDomain.EventTokenRefreshed, events[0].Type)
		assert.Nil(t, events[1].Payload)

		oldToken, err := events[0].Payload.String("refresh_token")
		require.NoError(t, err)
		assert.Equal(t, "old-token", oldToken)
	})

	t.Run("Success_Empty", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLEventRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, event_type`)).
			WithArgs("membership-1", 10, 0).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "event_type", "user_id", "membership_id", "payload", "event_time",
			}))

		events, err := repo.List(ctx, "membership-1", 0, 10)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/allisson/identity/internal/database"
	"github.com/allisson/identity/internal/document"
	apperrors "github.com/allisson/identity/internal/errors"
	eventDomain "github.com/allisson/identity/internal/event/domain"
)

// MySQLEventRepository implements Event persistence for MySQL.
// Payloads are stored as JSON; NULL payloads are allowed.
type MySQLEventRepository struct {
	db *sql.DB
}

// Insert appends an event record.
func (m *MySQLEventRepository) Insert(ctx context.Context, event *eventDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	var payloadJSON []byte
	var err error
	if event.Payload != nil {
		payloadJSON, err = json.Marshal(event.Payload)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal event payload")
		}
	}

	query := `INSERT INTO events (id, event_type, user_id, membership_id, payload, event_time)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		string(event.Type),
		event.UserID,
		event.MembershipID,
		payloadJSON,
		event.EventTime,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert event")
	}
	return nil
}

// List retrieves events for a membership ordered by event time descending
// with pagination.
func (m *MySQLEventRepository) List(
	ctx context.Context,
	membershipID string,
	offset, limit int,
) ([]*eventDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, event_type, user_id, membership_id, payload, event_time
			  FROM events
			  WHERE membership_id = ?
			  ORDER BY event_time DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, membershipID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*eventDomain.Event, 0)
	for rows.Next() {
		var event eventDomain.Event
		var eventType string
		var payloadJSON []byte

		err := rows.Scan(
			&event.ID,
			&eventType,
			&event.UserID,
			&event.MembershipID,
			&payloadJSON,
			&event.EventTime,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan event")
		}

		event.Type = eventDomain.EventType(eventType)

		if payloadJSON != nil {
			payload := document.New()
			if err := json.Unmarshal(payloadJSON, payload); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal event payload")
			}
			event.Payload = payload
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate events")
	}

	return events, nil
}

// CountByMembership returns the number of events recorded for a membership.
func (m *MySQLEventRepository) CountByMembership(
	ctx context.Context,
	membershipID string,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM events WHERE membership_id = ?`,
		membershipID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count events")
	}
	return count, nil
}

// NewMySQLEventRepository creates a new MySQL Event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

// EventRepository provides data access for events.
type EventRepository struct {
	BaseRepository
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts e under a freshly generated id and returns the stored event.
func (r *EventRepository) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = models.EventID(GenerateID())
	now := r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO events (id, name, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Name, e.Start, e.End, now, now)
	if err != nil {
		return models.Event{}, fmt.Errorf("inserting event: %w", err)
	}

	return e, nil
}

// GetByID retrieves an event by its id.
func (r *EventRepository) GetByID(ctx context.Context, id models.EventID) (models.Event, error) {
	var e models.Event
	err := r.DB().QueryRowContext(ctx, `
		SELECT id, name, start_date, end_date FROM events WHERE id = ?
	`, id).Scan(&e.ID, &e.Name, &e.Start, &e.End)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("querying event: %w", err)
	}

	return e, nil
}

// List retrieves all events in creation order.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, name, start_date, end_date
		FROM events
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Start, &e.End); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Update replaces the fields of the event with e.ID.
func (r *EventRepository) Update(ctx context.Context, e models.Event) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE events SET name = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?
	`, e.Name, e.Start, e.End, r.Now(), e.ID)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}

	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return fmt.Errorf("event %s: %w", e.ID, ErrNotFound)
	}

	return nil
}

// Delete removes an event by id.
func (r *EventRepository) Delete(ctx context.Context, id models.EventID) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}

	return nil
}

// Import inserts events that already carry ids, replacing any existing rows
// with the same id. Events without an id get a generated one. It runs in a
// single transaction.
func (r *EventRepository) Import(ctx context.Context, events []models.Event) (int, error) {
	err := r.DB().Transaction(ctx, func(tx *sql.Tx) error {
		now := r.Now()
		for _, e := range events {
			if e.ID == "" {
				e.ID = models.EventID(GenerateID())
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO events (id, name, start_date, end_date, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, e.ID, e.Name, e.Start, e.End, now, now); err != nil {
				return fmt.Errorf("importing event %s: %w", e.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

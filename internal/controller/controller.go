// Package controller wires table clicks to the events API, the store and the view.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/eventlist-manager/backend/internal/eventstore"
	"github.com/eventlist-manager/backend/internal/storage/models"
	"github.com/eventlist-manager/backend/internal/view"
)

// RequiredFieldsWarning is shown when a row is saved with an empty field.
const RequiredFieldsWarning = "All fields are required."

var (
	// ErrFieldsRequired is returned when a save is rejected by validation.
	// No network call was made and no row changed state.
	ErrFieldsRequired = errors.New("all fields are required")

	// ErrStaleRow is returned for a click on a row that does not exist or
	// whose state does not accept the clicked control.
	ErrStaleRow = errors.New("click does not apply to any row")

	// ErrUnknownControl is returned for a control class the table never renders.
	ErrUnknownControl = errors.New("unknown control")
)

// EventAPI is the backend the controller persists through.
type EventAPI interface {
	GetAll(ctx context.Context) ([]models.Event, error)
	Add(ctx context.Context, newEvent models.Event) (models.Event, error)
	Edit(ctx context.Context, id models.EventID, updatedEvent models.Event) error
	DeleteByID(ctx context.Context, id models.EventID) error
}

// Click is one delegated click on the table or the add button.
type Click struct {
	// RowID is the element id of the clicked row; empty for the add button.
	RowID string
	// Control is the class of the clicked control.
	Control string
	// Inputs holds the row's name, start and end inputs, in that order.
	Inputs [3]string
}

// Controller orchestrates API, store and view for one session.
// It holds no lock across network calls, so clicks may interleave with an
// in-flight request.
type Controller struct {
	store *eventstore.Store
	view  *view.Table
	api   EventAPI
}

// New creates a controller over the given store, view and API.
func New(store *eventstore.Store, table *view.Table, api EventAPI) *Controller {
	return &Controller{store: store, view: table, api: api}
}

// Init loads every event into the store and renders them.
func (c *Controller) Init(ctx context.Context) error {
	events, err := c.api.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	c.store.SetEvents(events)
	c.view.RenderEvents(events)
	return nil
}

// HandleClick routes a click by its control class.
func (c *Controller) HandleClick(ctx context.Context, click Click) error {
	c.view.ClearWarning()

	if click.Control == view.ControlAdd {
		c.view.AddEvent(models.Event{}, true)
		return nil
	}

	state, ok := c.view.RowState(click.RowID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrStaleRow, click.RowID)
	}

	switch click.Control {
	case view.ControlSave:
		switch state {
		case view.StateNewDraft:
			return c.saveNewEvent(ctx, click)
		case view.StateEditing:
			return c.updateEvent(ctx, click)
		}
	case view.ControlDiscard:
		switch state {
		case view.StateNewDraft:
			c.view.RemoveEvent(view.DraftID)
			return nil
		case view.StateEditing:
			return c.discardEdit(click.RowID)
		}
	case view.ControlEdit:
		if state == view.StateDisplay {
			return c.view.EditRow(click.RowID)
		}
	case view.ControlDelete:
		if state == view.StateDisplay {
			return c.deleteEvent(ctx, click.RowID)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownControl, click.Control)
	}

	return fmt.Errorf("%w: %s on %s row %s", ErrStaleRow, click.Control, state, click.RowID)
}

// eventFromInputs reads a row's inputs; only the name is trimmed.
func eventFromInputs(inputs [3]string) models.Event {
	return models.Event{
		Name:  strings.TrimSpace(inputs[0]),
		Start: inputs[1],
		End:   inputs[2],
	}
}

func (c *Controller) rejectInvalid(e models.Event) error {
	if e.HasRequiredFields() {
		return nil
	}
	c.view.Warn(RequiredFieldsWarning)
	return ErrFieldsRequired
}

func (c *Controller) saveNewEvent(ctx context.Context, click Click) error {
	newEvent := eventFromInputs(click.Inputs)
	if err := c.rejectInvalid(newEvent); err != nil {
		return err
	}

	saved, err := c.api.Add(ctx, newEvent)
	if err != nil {
		return fmt.Errorf("creating event: %w", err)
	}

	c.store.AddEvent(saved)
	if err := c.view.DisplayRow(click.RowID, saved); err != nil {
		// The draft was discarded while the request was in flight.
		log.Printf("Saved event %s but its draft row is gone: %v", saved.ID, err)
	}
	return nil
}

func (c *Controller) updateEvent(ctx context.Context, click Click) error {
	id, ok := view.ParseRowDOMID(click.RowID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrStaleRow, click.RowID)
	}

	updated := eventFromInputs(click.Inputs)
	updated.ID = id
	if err := c.rejectInvalid(updated); err != nil {
		return err
	}

	if err := c.api.Edit(ctx, id, updated); err != nil {
		return fmt.Errorf("updating event %s: %w", id, err)
	}

	c.store.ReplaceEvent(id, updated)

	if err := c.view.DisplayRow(click.RowID, updated); err != nil {
		log.Printf("Updated event %s but its row is gone: %v", id, err)
	}
	return nil
}

func (c *Controller) discardEdit(rowID string) error {
	original, ok := c.view.Stashed(rowID)
	if !ok {
		return fmt.Errorf("%w: %s has no stashed values", ErrStaleRow, rowID)
	}
	return c.view.DisplayRow(rowID, original)
}

func (c *Controller) deleteEvent(ctx context.Context, rowID string) error {
	id, ok := view.ParseRowDOMID(rowID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrStaleRow, rowID)
	}

	if err := c.api.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}

	c.store.RemoveEvent(id)
	c.view.RemoveEvent(id)
	return nil
}

package view

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

func newTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewDefaultTable()
	require.NoError(t, err)
	return table
}

func TestNewTableRequiresHostNodes(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"missing list", `<html><body><button id="add-event-btn">Add</button></body></html>`},
		{"missing add button", `<html><body><table><tbody id="event-list"></tbody></table></body></html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(strings.NewReader(tt.page))
			require.ErrorIs(t, err, ErrMissingNode)
		})
	}
}

func TestRenderEventsOneRowPerEventInOrder(t *testing.T) {
	table := newTable(t)
	table.AddEvent(models.Event{}, true)

	events := []models.Event{
		{ID: "3", Name: "C", Start: "2024-01-03", End: "2024-01-03"},
		{ID: "1", Name: "A", Start: "2024-01-01", End: "2024-01-01"},
		{ID: "2", Name: "B", Start: "2024-01-02", End: "2024-01-02"},
	}
	table.RenderEvents(events)

	assert.Equal(t, []string{"event-3", "event-1", "event-2"}, table.RowIDs())
	for _, e := range events {
		state, ok := table.RowState(RowDOMID(e.ID))
		require.True(t, ok)
		assert.Equal(t, StateDisplay, state)
	}
}

func TestDisplayRowShowsFieldsAndControls(t *testing.T) {
	table := newTable(t)
	table.RenderEvents([]models.Event{{ID: "1", Name: "Sync", Start: "2024-01-01", End: "2024-01-02"}})

	cells, ok := table.Cells("event-1")
	require.True(t, ok)
	assert.Equal(t, []string{"Sync", "2024-01-01", "2024-01-02"}, cells)
	assert.Equal(t, []string{ControlEdit, ControlDelete}, table.Controls("event-1"))
}

func TestAddDraftRow(t *testing.T) {
	table := newTable(t)
	table.AddEvent(models.Event{}, true)

	state, ok := table.RowState("event-new")
	require.True(t, ok)
	assert.Equal(t, StateNewDraft, state)

	cells, _ := table.Cells("event-new")
	assert.Equal(t, []string{"", "", ""}, cells)
	assert.Equal(t, []string{ControlSave, ControlDiscard}, table.Controls("event-new"))

	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf, ""))
	page := buf.String()
	assert.Contains(t, page, `name="event-new.name"`)
	assert.Contains(t, page, `placeholder="Event Name"`)
	assert.Contains(t, page, `type="date"`)
}

func TestRemoveEvent(t *testing.T) {
	table := newTable(t)
	table.RenderEvents([]models.Event{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}})

	table.RemoveEvent("1")
	assert.Equal(t, []string{"event-2"}, table.RowIDs())

	table.RemoveEvent("404")
	assert.Equal(t, []string{"event-2"}, table.RowIDs())

	table.AddEvent(models.Event{}, true)
	table.RemoveEvent(DraftID)
	assert.Equal(t, []string{"event-2"}, table.RowIDs())
}

func TestEditThenDisplayRestoresStash(t *testing.T) {
	table := newTable(t)
	table.RenderEvents([]models.Event{{ID: "1", Name: "  Sync <b>  ", Start: "2024-01-01", End: "2024-01-02"}})

	require.NoError(t, table.EditRow("event-1"))
	state, _ := table.RowState("event-1")
	assert.Equal(t, StateEditing, state)
	assert.Equal(t, []string{ControlSave, ControlDiscard}, table.Controls("event-1"))

	original, ok := table.Stashed("event-1")
	require.True(t, ok)
	assert.Equal(t, models.Event{ID: "1", Name: "  Sync <b>  ", Start: "2024-01-01", End: "2024-01-02"}, original)

	require.NoError(t, table.DisplayRow("event-1", original))
	cells, _ := table.Cells("event-1")
	assert.Equal(t, []string{"  Sync <b>  ", "2024-01-01", "2024-01-02"}, cells)

	_, ok = table.Stashed("event-1")
	assert.False(t, ok)
}

func TestEditRowRejectsNonDisplayRows(t *testing.T) {
	table := newTable(t)
	table.AddEvent(models.Event{}, true)

	require.ErrorIs(t, table.EditRow("event-new"), ErrRowState)
	require.ErrorIs(t, table.EditRow("event-9"), ErrNoRow)
}

func TestDisplayRowRetagsDraft(t *testing.T) {
	table := newTable(t)
	table.AddEvent(models.Event{}, true)

	require.NoError(t, table.DisplayRow("event-new", models.Event{ID: "2", Name: "Standup", Start: "2024-02-01", End: "2024-02-01"}))
	assert.Equal(t, []string{"event-2"}, table.RowIDs())

	state, _ := table.RowState("event-2")
	assert.Equal(t, StateDisplay, state)
	assert.Equal(t, []string{ControlEdit, ControlDelete}, table.Controls("event-2"))
}

func TestParseRowDOMIDKeepsDashes(t *testing.T) {
	id, ok := ParseRowDOMID("event-6f1c-42")
	require.True(t, ok)
	assert.Equal(t, models.EventID("6f1c-42"), id)

	_, ok = ParseRowDOMID("row-1")
	assert.False(t, ok)
	_, ok = ParseRowDOMID("event-")
	assert.False(t, ok)
}

func TestWarningAndRender(t *testing.T) {
	table := newTable(t)
	table.RenderEvents([]models.Event{{ID: "1", Name: "<script>", Start: "2024-01-01", End: "2024-01-01"}})
	table.Warn("All fields are required.")
	assert.Equal(t, "All fields are required.", table.Warning())

	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf, "tok123"))
	page := buf.String()
	assert.Contains(t, page, "All fields are required.")
	assert.Contains(t, page, `value="tok123"`)
	assert.Contains(t, page, "&lt;script&gt;")

	table.ClearWarning()
	assert.Empty(t, table.Warning())
}

func TestSyncInputsKeepsTypedValues(t *testing.T) {
	table := newTable(t)
	table.RenderEvents([]models.Event{
		{ID: "1", Name: "Sync", Start: "2024-01-01", End: "2024-01-02"},
		{ID: "5", Name: "Retro", Start: "2024-01-05", End: "2024-01-05"},
	})
	require.NoError(t, table.EditRow("event-1"))
	table.AddEvent(models.Event{}, true)
	table.AddEvent(models.Event{}, true)

	table.SyncInputs(url.Values{
		"event-1.name":    {"Sync v2"},
		"event-5.name":    {"ignored"},
		"event-new.name":  {"Standup", "Demo"},
		"event-new.start": {"2024-02-01"},
	})

	cells, _ := table.Cells("event-1")
	assert.Equal(t, []string{"Sync v2", "2024-01-01", "2024-01-02"}, cells)
	cells, _ = table.Cells("event-5")
	assert.Equal(t, []string{"Retro", "2024-01-05", "2024-01-05"}, cells)
	cells, _ = table.Cells("event-new")
	assert.Equal(t, []string{"Standup", "2024-02-01", ""}, cells)

	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf, ""))
	assert.Contains(t, buf.String(), `value="Demo"`)

	original, ok := table.Stashed("event-1")
	require.True(t, ok)
	assert.Equal(t, "Sync", original.Name)
}

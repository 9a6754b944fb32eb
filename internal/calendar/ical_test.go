package calendar

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

func TestEncodeAllDayEvents(t *testing.T) {
	events := []models.Event{
		{ID: "1", Name: "Sync", Start: "2024-01-01", End: "2024-01-02"},
		{ID: "2", Name: "Broken", Start: "soon", End: "later"},
	}

	var buf bytes.Buffer
	n, err := Encode(&buf, events, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:"+ProductID)
	assert.Contains(t, out, "SUMMARY:Sync")
	assert.Contains(t, out, "UID:1@eventlist-manager")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240101")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240103")
	assert.NotContains(t, out, "Broken")
}

package eventstore

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

func TestStoreMutations(t *testing.T) {
	s := New()
	assert.Empty(t, s.Events())

	s.SetEvents([]models.Event{
		{ID: "1", Name: "Sync", Start: "2024-01-01", End: "2024-01-02"},
		{ID: "2", Name: "Retro", Start: "2024-01-03", End: "2024-01-03"},
	})
	s.AddEvent(models.Event{ID: "3", Name: "Demo", Start: "2024-01-04", End: "2024-01-04"})
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, models.EventID("3"), s.Events()[2].ID)

	s.RemoveEvent("2")
	ids := []models.EventID{}
	for _, e := range s.Events() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []models.EventID{"1", "3"}, ids)

	s.RemoveEvent("missing")
	assert.Equal(t, 2, s.Len())
}

func TestRemoveEventDropsAllDuplicates(t *testing.T) {
	s := New()
	s.SetEvents([]models.Event{{ID: "1"}, {ID: "2"}, {ID: "1"}})
	s.RemoveEvent("1")
	assert.Equal(t, []models.Event{{ID: "2"}}, s.Events())
}

func TestEventsReturnsCopy(t *testing.T) {
	s := New()
	s.AddEvent(models.Event{ID: "1", Name: "Sync"})

	got := s.Events()
	got[0].Name = "changed"
	assert.Equal(t, "Sync", s.Events()[0].Name)
}

func TestReplaceEventKeepsPosition(t *testing.T) {
	s := New()
	s.SetEvents([]models.Event{{ID: "1", Name: "Sync"}, {ID: "2", Name: "Retro"}})

	assert.True(t, s.ReplaceEvent("1", models.Event{ID: "1", Name: "Sync v2"}))
	assert.False(t, s.ReplaceEvent("missing", models.Event{ID: "missing"}))
	assert.Equal(t, []models.Event{{ID: "1", Name: "Sync v2"}, {ID: "2", Name: "Retro"}}, s.Events())
}

func TestReplaceEventDoesNotLoseConcurrentAdds(t *testing.T) {
	s := New()
	s.SetEvents([]models.Event{{ID: "0"}})

	const n = 1000
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.ReplaceEvent("0", models.Event{ID: "0", Name: strconv.Itoa(i)})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i++ {
			s.AddEvent(models.Event{ID: models.EventID(strconv.Itoa(i))})
		}
	}()
	wg.Wait()

	assert.Equal(t, n+1, s.Len())
}

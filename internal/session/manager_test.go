package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

type staticAPI struct {
	events []models.Event
	err    error
}

func (a staticAPI) GetAll(ctx context.Context) ([]models.Event, error) { return a.events, a.err }
func (a staticAPI) Add(ctx context.Context, e models.Event) (models.Event, error) {
	return e, a.err
}
func (a staticAPI) Edit(ctx context.Context, id models.EventID, e models.Event) error { return a.err }
func (a staticAPI) DeleteByID(ctx context.Context, id models.EventID) error        { return a.err }

func TestCreateLoadsEventsAndRegisters(t *testing.T) {
	api := staticAPI{events: []models.Event{{ID: "1", Name: "Sync", Start: "2024-01-01", End: "2024-01-02"}}}
	m := NewManager(api, time.Minute)

	s, err := m.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, s.Store.Len())
	assert.Equal(t, []string{"event-1"}, s.Table.RowIDs())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Count())
}

func TestCreateFailsWhenInitialLoadFails(t *testing.T) {
	m := NewManager(staticAPI{err: errors.New("backend down")}, time.Minute)

	_, err := m.Create(context.Background())
	require.Error(t, err)
	assert.Zero(t, m.Count())
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager(staticAPI{}, time.Minute)
	a, err := m.Create(context.Background())
	require.NoError(t, err)
	b, err := m.Create(context.Background())
	require.NoError(t, err)

	a.Store.AddEvent(models.Event{ID: "x"})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Zero(t, b.Store.Len())
}

func TestSweepDropsIdleSessions(t *testing.T) {
	m := NewManager(staticAPI{}, time.Minute)
	s, err := m.Create(context.Background())
	require.NoError(t, err)

	assert.Zero(t, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Sweep(s.LastSeen().Add(2*time.Minute)))

	_, ok := m.Get(s.ID)
	assert.False(t, ok)
}

func TestStartStop(t *testing.T) {
	m := NewManager(staticAPI{}, 0)
	require.NoError(t, m.Start())
	m.Stop()
}

func TestWireDoesNotLoad(t *testing.T) {
	api := staticAPI{events: []models.Event{{ID: "1", Name: "Sync", Start: "2024-01-01", End: "2024-01-02"}}}

	s, err := Wire("abc", api)
	require.NoError(t, err)
	assert.Equal(t, "abc", s.ID)
	assert.Zero(t, s.Store.Len())
	assert.Empty(t, s.Table.RowIDs())

	require.NoError(t, s.Controller.Init(context.Background()))
	assert.Equal(t, []string{"event-1"}, s.Table.RowIDs())
}

package editor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/domain/models"
)

func TestSessionManager_Lifecycle(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything).Return(models.Snapshot(numbered(3)), nil)

	sm := NewSessionManager(repo, 10, 0, zap.NewNop())

	id, vm, err := sm.Open(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, vm.Items(), 3)
	assert.Equal(t, 10, vm.State().PageSize)

	got, ok := sm.Get(id)
	require.True(t, ok)
	assert.Same(t, vm, got)

	assert.True(t, sm.Close(id))
	assert.True(t, vm.Disposed())
	assert.False(t, sm.Close(id))

	_, ok = sm.Get(id)
	assert.False(t, ok)
}

func TestSessionManager_OpenKeepsSessionWhenFetchFails(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything).Return(nil, errTransport)

	sm := NewSessionManager(repo, 5, 0, nil)

	id, vm, err := sm.Open(context.Background())
	require.Error(t, err)
	assert.Empty(t, vm.Items())

	_, ok := sm.Get(id)
	assert.True(t, ok)

	sm.CloseAll()
	assert.Equal(t, 0, sm.Len())
	assert.True(t, vm.Disposed())
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func idleManager(t *testing.T, idle time.Duration) (*SessionManager, *fakeClock) {
	t.Helper()
	repo := new(MockRepository)
	repo.On("List", mock.Anything).Return(models.Snapshot(numbered(3)), nil)

	clock := &fakeClock{t: time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)}
	sm := NewSessionManager(repo, 5, idle, zap.NewNop())
	sm.now = clock.Now
	return sm, clock
}

func TestSessionManager_SweepIdleEvictsAbandonedSessions(t *testing.T) {
	sm, clock := idleManager(t, 10*time.Minute)

	idleID, idleVM, err := sm.Open(context.Background())
	require.NoError(t, err)
	activeID, activeVM, err := sm.Open(context.Background())
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	_, ok := sm.Get(activeID)
	require.True(t, ok)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, sm.SweepIdle())

	_, ok = sm.Get(idleID)
	assert.False(t, ok)
	assert.True(t, idleVM.Disposed())
	assert.Empty(t, idleVM.Items())

	_, ok = sm.Get(activeID)
	assert.True(t, ok)
	assert.False(t, activeVM.Disposed())
	assert.Equal(t, 1, sm.Len())
}

func TestSessionManager_SweepIdleKeepsSubscribedSessions(t *testing.T) {
	sm, clock := idleManager(t, time.Minute)

	id, vm, err := sm.Open(context.Background())
	require.NoError(t, err)
	_, unsubscribe := vm.Subscribe()

	clock.Advance(time.Hour)
	assert.Equal(t, 0, sm.SweepIdle())

	unsubscribe()
	assert.Equal(t, 1, sm.SweepIdle())

	_, ok := sm.Get(id)
	assert.False(t, ok)
}

func TestSessionManager_SweepIdleDisabled(t *testing.T) {
	sm, clock := idleManager(t, 0)

	_, _, err := sm.Open(context.Background())
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	assert.Equal(t, 0, sm.SweepIdle())
	assert.Equal(t, 1, sm.Len())
}

func TestSessionManager_RunSweeperStopsWithContext(t *testing.T) {
	sm, _ := idleManager(t, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sm.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

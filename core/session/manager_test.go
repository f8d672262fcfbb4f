package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serene-minds/dashboard/core/user"
	"github.com/serene-minds/dashboard/tests"
)

func TestManager_Holder(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	usr := testutil.NewUser(t, "Neema", user.RoleStudent)
	require.NoError(t, storage.Save(ctx, "sid-1", Record{User: usr, Token: "tok"}))

	m := NewManager(storage, testutil.NewLogger(), time.Second)
	h := m.Holder("sid-1")
	assert.Same(t, h, m.Holder("sid-1"))
	assert.NotSame(t, h, m.Holder("sid-2"))
	assert.Equal(t, 2, m.Len())

	require.True(t, m.Wait(ctx, h, time.Second))
	sess := h.Session()
	assert.False(t, sess.Loading)
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, usr, *sess.User)

	m.Forget("sid-1")
	assert.Equal(t, 1, m.Len())
	assert.NotSame(t, h, m.Holder("sid-1"))
}

func TestManager_WaitTimesOutWhileLoading(t *testing.T) {
	ctx := context.Background()
	h := NewHolder(NewMemoryStorage(), "k", testutil.NewLogger())
	m := NewManager(NewMemoryStorage(), testutil.NewLogger(), 0)

	assert.False(t, m.Wait(ctx, h, 0))
	assert.False(t, m.Wait(ctx, h, 10*time.Millisecond))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, m.Wait(cctx, h, time.Minute))

	h.Initialize(ctx)
	assert.True(t, m.Wait(ctx, h, 0))
}

func TestManager_Sweep(t *testing.T) {
	now := time.Now()
	m := NewManager(NewMemoryStorage(), testutil.NewLogger(), time.Second)
	m.nowFunc = func() time.Time { return now }

	old := m.Holder("old")
	<-old.Ready()
	now = now.Add(time.Hour)
	fresh := m.Holder("fresh")
	<-fresh.Ready()

	assert.Equal(t, 1, m.Sweep(30*time.Minute))
	assert.Equal(t, 1, m.Len())
	assert.Same(t, fresh, m.Holder("fresh"))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestManager_Run(t *testing.T) {
	start := time.Now()
	logger := testutil.NewLogger()
	m := NewManager(NewMemoryStorage(), logger, time.Second)
	m.nowFunc = func() time.Time { return start }

	idle := m.Holder("idle")
	<-idle.Ready()
	m.nowFunc = func() time.Time { return start.Add(time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, 5*time.Millisecond, 30*time.Minute)
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after its context was cancelled")
	}
	assert.GreaterOrEqual(t, logger.Count("debug"), 1)
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/serene-minds/dashboard/core"
)

type managedHolder struct {
	holder   *Holder
	lastSeen time.Time
}

// Manager owns the holders of all browser sessions, keyed by session id.
type Manager struct {
	storage     Storage
	logger      core.Logger
	initTimeout time.Duration

	mutex   sync.Mutex
	holders map[string]*managedHolder

	nowFunc func() time.Time
}

func NewManager(storage Storage, logger core.Logger, initTimeout time.Duration) *Manager {
	return &Manager{
		storage:     storage,
		logger:      logger,
		initTimeout: initTimeout,
		holders:     make(map[string]*managedHolder),
		nowFunc:     time.Now,
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Holder returns the holder of sid, creating it and starting its initialization on first use.
func (m *Manager) Holder(sid string) *Holder {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.nowFunc()
	if mh, ok := m.holders[sid]; ok {
		mh.lastSeen = now
		return mh.holder
	}

	h := NewHolder(m.storage, sid, m.logger)
	m.holders[sid] = &managedHolder{holder: h, lastSeen: now}
	go m.initialize(h)
	return h
}

func (m *Manager) initialize(h *Holder) {
	ctx := context.Background()
	if m.initTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.initTimeout)
		defer cancel()
	}
	h.Initialize(ctx)
}

// Wait blocks until h is initialized, d elapses or ctx is done. It reports whether h is ready.
func (m *Manager) Wait(ctx context.Context, h *Holder, d time.Duration) bool {
	select {
	case <-h.Ready():
		return true
	default:
	}
	if d <= 0 {
		return false
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-h.Ready():
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Forget drops the in-memory holder of sid; its persisted record is kept.
func (m *Manager) Forget(sid string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.holders, sid)
}

// Len returns the number of live holders.
func (m *Manager) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.holders)
}

// Sweep forgets holders idle for longer than maxIdle and returns how many were dropped.
// Holders still initializing are kept.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var n int
	cutoff := m.nowFunc().Add(-maxIdle)
	for sid, mh := range m.holders {
		if mh.lastSeen.Before(cutoff) && !mh.holder.Session().Loading {
			delete(m.holders, sid)
			n++
		}
	}
	return n
}

// Run sweeps idle holders every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, every, maxIdle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(maxIdle); n > 0 {
				m.logger.Debug("session: swept idle holders", map[string]interface{}{"count": n})
			}
		}
	}
}

package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/user"
)

// ErrInvalidLogin is returned by Login when the pair is not a usable session.
var ErrInvalidLogin = errors.New("login requires a named user with a valid role and a token")

// Holder is the single source of truth for one session.
// Initialize, Login and Logout are its only mutators.
type Holder struct {
	storage Storage
	key     string
	logger  core.Logger

	initOnce sync.Once
	ready    chan struct{}

	// writeMutex serializes Login and Logout with their storage I/O,
	// so the persisted record always matches the last mutation.
	writeMutex sync.Mutex

	mutex   sync.RWMutex
	user    *user.User
	token   string
	loading bool
	gen     uint64 // bumped by every Login/Logout
}

func NewHolder(storage Storage, key string, logger core.Logger) *Holder {
	return &Holder{
		storage: storage,
		key:     key,
		logger:  logger,
		ready:   make(chan struct{}),
		loading: true,
	}
}

// Key is the storage key of the holder.
func (h *Holder) Key() string { return h.key }

// Ready is closed once initialization has completed.
func (h *Holder) Ready() <-chan struct{} { return h.ready }

// Session returns a snapshot of the current state.
func (h *Holder) Session() Session {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sess := Session{Token: h.token, Loading: h.loading}
	if h.user != nil {
		usr := *h.user
		sess.User = &usr
	}
	return sess
}

// Initialize reads the persisted pair. It runs once; later calls return immediately.
// A missing, unreadable or corrupt record leaves the session unauthenticated.
func (h *Holder) Initialize(ctx context.Context) {
	h.initOnce.Do(func() {
		h.mutex.RLock()
		gen := h.gen
		h.mutex.RUnlock()

		rec, err := h.storage.Load(ctx, h.key)
		switch {
		case err == nil && !rec.valid():
			h.logger.Warn("session: discarding invalid persisted record", map[string]interface{}{"key": h.key})
			err = ErrCorrupt
		case err != nil && !errors.Is(err, ErrNoRecord):
			h.logger.Warn("session: reading persisted record failed", err)
		}

		h.mutex.Lock()
		// a Login/Logout that happened during the read wins
		if gen == h.gen && err == nil {
			usr := rec.User
			h.user = &usr
			h.token = rec.Token
		}
		h.loading = false
		h.mutex.Unlock()
		close(h.ready)
	})
}

// Login stores the pair in memory and in persisted storage.
// Storage failures are logged; the in-memory session stays authenticated.
func (h *Holder) Login(ctx context.Context, usr user.User, token string) error {
	rec := Record{User: usr, Token: token}
	if !rec.valid() {
		return ErrInvalidLogin
	}

	h.writeMutex.Lock()
	defer h.writeMutex.Unlock()

	h.mutex.Lock()
	h.user = &usr
	h.token = token
	h.gen++
	h.mutex.Unlock()

	if err := h.storage.Save(ctx, h.key, rec); err != nil {
		h.logger.Error("session: persisting login failed", err, usr)
	}
	return nil
}

// Logout clears memory and persisted storage. Calling it on an unauthenticated session is a no-op.
func (h *Holder) Logout(ctx context.Context) {
	h.writeMutex.Lock()
	defer h.writeMutex.Unlock()

	h.mutex.Lock()
	wasAuthed := h.user != nil || h.token != ""
	h.user = nil
	h.token = ""
	h.gen++
	h.mutex.Unlock()

	if err := h.storage.Delete(ctx, h.key); err != nil && wasAuthed {
		h.logger.Error("session: clearing persisted record failed", err)
	}
}

package api

import (
	"fmt"
	"sync"

	"github.com/gamepilot/gamepilot/internal/app/analytics"
	"github.com/gamepilot/gamepilot/internal/infra/metrics"
	"github.com/gamepilot/gamepilot/internal/infra/sqlite"
)

// userRegistry owns one analytics engine per user. Engines are restored from
// the database on first use and access to each is serialized by its own lock.
type userRegistry struct {
	mu    sync.Mutex
	users map[string]*userState
	db    *sqlite.DB
	cfg   analytics.Config
}

type userState struct {
	mu  sync.Mutex
	eng *analytics.Engine

	// stale is set under mu once eng no longer matches the database.
	stale bool
}

func newUserRegistry(db *sqlite.DB, cfg analytics.Config) *userRegistry {
	return &userRegistry{users: make(map[string]*userState), db: db, cfg: cfg}
}

// with runs fn while holding userID's engine lock.
func (r *userRegistry) with(userID string, fn func(*analytics.Engine) error) error {
	st, err := r.lock(userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()
	return fn(st.eng)
}

// update runs mutate and then persist under userID's engine lock. Errors
// from mutate leave the engine as it was. An error from persist means the
// engine ran ahead of the database, so it is discarded before the lock is
// released and the next access reloads it.
func (r *userRegistry) update(userID string, mutate, persist func(*analytics.Engine) error) error {
	st, err := r.lock(userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	if err := mutate(st.eng); err != nil {
		return err
	}
	if err := persist(st.eng); err != nil {
		r.discard(userID, st)
		return err
	}
	return nil
}

// lock returns userID's live state with its lock held. States discarded
// while the caller waited are skipped.
func (r *userRegistry) lock(userID string) (*userState, error) {
	for {
		st, err := r.state(userID)
		if err != nil {
			return nil, err
		}
		st.mu.Lock()
		if !st.stale {
			return st, nil
		}
		st.mu.Unlock()
	}
}

func (r *userRegistry) state(userID string) (*userState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.users[userID]; ok {
		return st, nil
	}
	eng, err := r.restore(userID)
	if err != nil {
		return nil, err
	}
	st := &userState{eng: eng}
	r.users[userID] = st
	metrics.ActiveUsers.Set(float64(len(r.users)))
	return st, nil
}

// restore builds an engine from the newest persisted history. Unknown users
// start empty.
func (r *userRegistry) restore(userID string) (*analytics.Engine, error) {
	eng := analytics.NewEngine(r.cfg)
	ok, err := r.db.UserExists(userID)
	if err != nil || !ok {
		return eng, err
	}

	limit := eng.Config().MaxHistorySize
	moods, err := r.db.RecentMoodEvents(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("restore moods: %w", err)
	}
	sessions, err := r.db.RecentSessions(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("restore sessions: %w", err)
	}
	feedback, err := r.db.RecentFeedback(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("restore feedback: %w", err)
	}
	eng.Restore(moods, sessions, feedback)
	return eng, nil
}

// discard marks st stale and unregisters it. The caller holds st.mu.
func (r *userRegistry) discard(userID string, st *userState) {
	st.stale = true

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.users[userID] == st {
		delete(r.users, userID)
	}
	metrics.ActiveUsers.Set(float64(len(r.users)))
}

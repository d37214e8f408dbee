package services

import (
	"context"
	"ferreteria_server/structs"
	"fmt"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// SessionService keeps the live clerk sessions and reaps idle ones
type SessionService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	deps   sessionDeps

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	cron *cron.Cron
}

func NewSessionService(logger *gecho.Logger, cfg *structs.Config, gateway ProductGateway, suppliers SupplierSource, store PhotoStore) *SessionService {
	return &SessionService{
		logger: logger,
		cfg:    cfg,
		deps: sessionDeps{
			logger:    logger,
			cfg:       cfg,
			gateway:   gateway,
			suppliers: suppliers,
			store:     store,
			now:       time.Now,
		},
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Start creates a session for the user and begins loading its catalog
func (ss *SessionService) Start(user SessionUser) *Session {
	return ss.start(uuid.New(), user)
}

func (ss *SessionService) start(id uuid.UUID, user SessionUser) *Session {
	s := newSession(id, user, ss.deps)

	ss.mu.Lock()
	if old, ok := ss.sessions[id]; ok {
		old.close()
	} else {
		ActiveSessions.Inc()
	}
	ss.sessions[id] = s
	ss.mu.Unlock()

	s.start()
	ss.logger.Info("Session started", gecho.Field("session_id", id), gecho.Field("user_id", user.ID))
	return s
}

// Resume returns the session named by the token, recreating it when it is
// gone but the token is still valid.
func (ss *SessionService) Resume(claims *structs.AuthClaims) (*Session, error) {
	if claims == nil || claims.Sid == uuid.Nil {
		return nil, ErrSessionNotFound
	}

	// Lookup and insert share the lock so concurrent requests for a lost
	// session all receive the same recreated one.
	ss.mu.Lock()
	s, ok := ss.sessions[claims.Sid]
	if !ok {
		s = newSession(claims.Sid, SessionUser{ID: claims.Sub, Email: claims.Email, Role: claims.Role}, ss.deps)
		ss.sessions[claims.Sid] = s
		ActiveSessions.Inc()
	}
	ss.mu.Unlock()

	if ok {
		if s.User.ID != claims.Sub {
			return nil, fmt.Errorf("%w: owner mismatch", ErrSessionNotFound)
		}
		s.Touch()
		return s, nil
	}

	s.start()
	ss.logger.Info("Session recreated for valid token", gecho.Field("session_id", claims.Sid), gecho.Field("user_id", claims.Sub))
	return s, nil
}

func (ss *SessionService) Get(id uuid.UUID) (*Session, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	s, ok := ss.sessions[id]
	return s, ok
}

// End discards the session and aborts its background work
func (ss *SessionService) End(id uuid.UUID) bool {
	ss.mu.Lock()
	s, ok := ss.sessions[id]
	if ok {
		delete(ss.sessions, id)
		ActiveSessions.Dec()
	}
	ss.mu.Unlock()

	if !ok {
		return false
	}
	s.close()
	ss.logger.Info("Session ended", gecho.Field("session_id", id))
	return true
}

func (ss *SessionService) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Sweep ends sessions idle for longer than the configured timeout
func (ss *SessionService) Sweep() int {
	cutoff := ss.deps.now().Add(-ss.cfg.Session.IdleTimeout)

	ss.mu.RLock()
	var idle []uuid.UUID
	for id, s := range ss.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	ss.mu.RUnlock()

	ended := 0
	for _, id := range idle {
		if ss.End(id) {
			ended++
		}
	}
	if ended > 0 {
		ss.logger.Info("Idle sessions reaped", gecho.Field("count", ended))
	}
	return ended
}

// StartSweeper schedules Sweep on the configured cron spec
func (ss *SessionService) StartSweeper() error {
	c := cron.New()
	if _, err := c.AddFunc(ss.cfg.Session.SweepSchedule, func() { ss.Sweep() }); err != nil {
		return fmt.Errorf("failed to schedule session sweeper: %w", err)
	}
	c.Start()
	ss.cron = c
	ss.logger.Debug("Session sweeper scheduled", gecho.Field("schedule", ss.cfg.Session.SweepSchedule))
	return nil
}

// Shutdown stops the sweeper and ends every session
func (ss *SessionService) Shutdown(ctx context.Context) {
	if ss.cron != nil {
		select {
		case <-ss.cron.Stop().Done():
		case <-ctx.Done():
		}
	}

	ss.mu.RLock()
	ids := make([]uuid.UUID, 0, len(ss.sessions))
	for id := range ss.sessions {
		ids = append(ids, id)
	}
	ss.mu.RUnlock()

	for _, id := range ids {
		ss.End(id)
	}
}

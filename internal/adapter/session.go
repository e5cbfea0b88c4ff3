package adapter

import "sync"

type SessionKind string

const (
	SessionLocation   SessionKind = "location"
	SessionNavigation SessionKind = "navigation"
	SessionRealTime   SessionKind = "realtime"
)

// Session is one generation of a streaming operation. Epoch is unique per
// registry, so a Session value stays distinguishable from every later
// session of the same kind even if the correlation id is reused.
type Session struct {
	Kind          SessionKind
	CorrelationID string
	Epoch         uint64
}

// Registry tracks at most one active session per kind. The epoch counter
// advances on every start and stop.
type Registry struct {
	mu     sync.Mutex
	epoch  uint64
	active map[SessionKind]Session
}

func NewRegistry() *Registry {
	return &Registry{active: make(map[SessionKind]Session)}
}

// Begin makes a new session of kind current, superseding any active one.
func (r *Registry) Begin(kind SessionKind, correlationID string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	s := Session{Kind: kind, CorrelationID: correlationID, Epoch: r.epoch}
	r.active[kind] = s
	return s
}

// End returns the session of kind to Idle and reports the session that was
// active, if any.
func (r *Registry) End(kind SessionKind) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	s, ok := r.active[kind]
	delete(r.active, kind)
	return s, ok
}

// EndIf ends s only if it is still the current session of its kind.
func (r *Registry) EndIf(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.active[s.Kind]; !ok || cur.Epoch != s.Epoch {
		return false
	}
	r.epoch++
	delete(r.active, s.Kind)
	return true
}

func (r *Registry) Current(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.active[s.Kind]
	return ok && cur.Epoch == s.Epoch
}

func (r *Registry) Active(kind SessionKind) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.active[kind]
	return s, ok
}

// EndAll forces every session to Idle and returns the ones that were active.
func (r *Registry) EndAll() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	ended := make([]Session, 0, len(r.active))
	for _, kind := range []SessionKind{SessionLocation, SessionNavigation, SessionRealTime} {
		if s, ok := r.active[kind]; ok {
			ended = append(ended, s)
		}
	}
	clear(r.active)
	return ended
}

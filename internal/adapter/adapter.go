// Package adapter turns SDK callbacks into events. One Adapter serves every
// callback capability; each handler it hands out is bound to the session it
// was created for and drops pushes once that session is no longer current.
package adapter

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/cache"
	"positioning-bridge/internal/codec"
	"positioning-bridge/internal/events"
	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk"
)

type Adapter struct {
	logger   *slog.Logger
	emitter  *events.Emitter
	cache    *cache.EntityCache
	sessions *Registry

	geofenceEnter atomic.Bool
	geofenceExit  atomic.Bool

	ended func(Session)
}

func New(emitter *events.Emitter, c *cache.EntityCache, logger *slog.Logger) *Adapter {
	return &Adapter{
		logger:   logger,
		emitter:  emitter,
		cache:    c,
		sessions: NewRegistry(),
	}
}

func (a *Adapter) Sessions() *Registry {
	return a.sessions
}

// OnSessionEnded sets fn to be called after a terminal push has ended a
// session. It must be set before any session begins.
func (a *Adapter) OnSessionEnded(fn func(Session)) { a.ended = fn }

// EnableGeofenceEnter toggles emission of geofence-enter events.
func (a *Adapter) EnableGeofenceEnter(on bool) { a.geofenceEnter.Store(on) }

// EnableGeofenceExit toggles emission of geofence-exit events.
func (a *Adapter) EnableGeofenceExit(on bool) { a.geofenceExit.Store(on) }

// emit sends data tagged with s, unless s has been superseded or stopped.
func (a *Adapter) emit(s Session, kind events.Kind, data any) bool {
	ok, err := a.emitter.EmitIf(events.Event{
		Kind:          kind,
		CorrelationID: s.CorrelationID,
		Data:          data,
	}, func() bool { return a.sessions.Current(s) })
	if err != nil {
		a.logger.Debug("event not emitted", "kind", kind, "correlationId", s.CorrelationID, "error", err)
		return false
	}
	return ok
}

// finish emits a terminal push and returns the session to Idle. The session
// ends under the emitter lock, so no later push of s can follow the terminal
// event.
func (a *Adapter) finish(s Session, kind events.Kind, data any) {
	ended := false
	_, err := a.emitter.EmitIf(events.Event{
		Kind:          kind,
		CorrelationID: s.CorrelationID,
		Data:          data,
	}, func() bool {
		ended = a.sessions.EndIf(s)
		return ended
	})
	if err != nil {
		a.logger.Debug("event not emitted", "kind", kind, "correlationId", s.CorrelationID, "error", err)
	}
	if !ended {
		return
	}
	a.logger.Info("session ended by sdk", "sessionKind", s.Kind, "correlationId", s.CorrelationID, "event", kind)
	if a.ended != nil {
		a.ended(s)
	}
}

func sdkError(op string, err error) codec.Object {
	return codec.EncodeError(bridgeerr.SDK(op, err))
}

func (a *Adapter) Location(s Session) sdk.LocationCallback {
	return &locationHandler{a: a, s: s}
}

type locationHandler struct {
	a *Adapter
	s Session
}

func (h *locationHandler) OnLocationChanged(l model.Location) {
	h.a.emit(h.s, events.KindLocation, codec.EncodeLocation(l))
}

func (h *locationHandler) OnStatusChanged(state model.LocationState) {
	status := codec.EncodeLocationStatus(state)
	if state == model.StateStopped {
		h.a.finish(h.s, events.KindLocationStatus, status)
		return
	}
	h.a.emit(h.s, events.KindLocationStatus, status)
}

func (h *locationHandler) OnError(err error) {
	h.a.finish(h.s, events.KindError, sdkError("startPositioning", err))
}

func (a *Adapter) Navigation(s Session) sdk.NavigationCallback {
	return &navigationHandler{a: a, s: s}
}

type navigationHandler struct {
	a *Adapter
	s Session
}

func (h *navigationHandler) OnProgress(p model.NavigationProgress) {
	h.a.emit(h.s, events.KindNavigationProgress, codec.EncodeNavigationProgress(p))
}

func (h *navigationHandler) OnDestinationReached() {
	h.a.finish(h.s, events.KindNavigationProgress, codec.EncodeDestinationReached())
}

func (h *navigationHandler) OnUserOutsideRoute() {
	h.a.emit(h.s, events.KindNavigationProgress, codec.EncodeUserOutsideRoute())
}

func (h *navigationHandler) OnError(err error) {
	h.a.finish(h.s, events.KindNavigationError, sdkError("requestNavigationUpdates", err))
}

func (a *Adapter) RealTime(s Session) sdk.RealTimeCallback {
	return &realTimeHandler{a: a, s: s}
}

type realTimeHandler struct {
	a *Adapter
	s Session
}

func (h *realTimeHandler) OnUserLocations(data []model.RealTimeData) {
	h.a.emit(h.s, events.KindRealtime, codec.EncodeRealTimeUpdate(data))
}

func (h *realTimeHandler) OnError(err error) {
	h.a.finish(h.s, events.KindError, sdkError("requestRealTimeUpdates", err))
}

// Directions returns a one-shot handler for a single directions request.
// The first push wins: a computed route is cached under a fresh identifier
// and emitted as a route event, a failure as a route-error event. done is
// then called exactly once with the outcome.
func (a *Adapter) Directions(correlationID string, done func(model.Route, error)) sdk.DirectionsCallback {
	return &directionsHandler{a: a, correlationID: correlationID, done: done}
}

type directionsHandler struct {
	a             *Adapter
	correlationID string
	once          sync.Once
	done          func(model.Route, error)
}

func (h *directionsHandler) OnRoute(r model.Route) {
	h.once.Do(func() {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		h.a.cache.Routes.Put(r.ID, r)
		h.a.emitOneShot(h.correlationID, events.KindRoute, codec.EncodeRoute(r))
		h.done(r, nil)
	})
}

func (h *directionsHandler) OnError(err error) {
	h.once.Do(func() {
		e := bridgeerr.SDK("requestDirections", err)
		h.a.emitOneShot(h.correlationID, events.KindRouteError, codec.EncodeError(e))
		h.done(model.Route{}, e)
	})
}

func (a *Adapter) emitOneShot(correlationID string, kind events.Kind, data any) {
	err := a.emitter.Emit(events.Event{Kind: kind, CorrelationID: correlationID, Data: data})
	if err != nil && !errors.Is(err, events.ErrClosed) {
		a.logger.Error("failed to emit event", "kind", kind, "correlationId", correlationID, "error", err)
	}
}

// Geofences returns the handler for geofence crossings. Crossings are
// reported under the active location session and dropped when positioning
// is Idle or the matching toggle is off.
func (a *Adapter) Geofences() sdk.GeofenceCallback {
	return geofenceHandler{a: a}
}

type geofenceHandler struct {
	a *Adapter
}

func (h geofenceHandler) OnEnteredGeofences(gs []model.Geofence) {
	h.push(&h.a.geofenceEnter, events.KindGeofenceEnter, gs)
}

func (h geofenceHandler) OnExitedGeofences(gs []model.Geofence) {
	h.push(&h.a.geofenceExit, events.KindGeofenceExit, gs)
}

func (h geofenceHandler) push(enabled *atomic.Bool, kind events.Kind, gs []model.Geofence) {
	if !enabled.Load() {
		return
	}
	s, ok := h.a.sessions.Active(SessionLocation)
	if !ok {
		h.a.logger.Debug("dropping geofence crossing without positioning", "kind", kind)
		return
	}
	h.a.emit(s, kind, codec.Object{"geofences": codec.EncodeGeofences(gs)})
}

package dispatcher

import (
	"context"

	"positioning-bridge/internal/adapter"
	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/codec"
	"positioning-bridge/internal/model"
)

// startSession makes a new session of kind current and registers it with
// the SDK through register. An active session of the same kind is stopped
// first, under the same lock, so the old and the new session are never
// current together.
func (d *Dispatcher) startSession(cmd Command, kind adapter.SessionKind, unregister func() error, register func(adapter.Session) error) (any, error) {
	mu := d.startMu[kind]
	mu.Lock()
	defer mu.Unlock()

	sessions := d.adapter.Sessions()
	if old, ok := sessions.Active(kind); ok {
		if cmd.Replace != nil && !*cmd.Replace {
			return nil, bridgeerr.Validation(cmd.Name, "%s session %s is already active", kind, old.CorrelationID)
		}
		if _, err := d.endSession(kind, unregister); err != nil {
			d.logger.Warn("failed to stop replaced session", "sessionKind", kind, "correlationId", old.CorrelationID, "error", err)
		}
	}

	s := sessions.Begin(kind, d.correlationID(cmd))
	if err := register(s); err != nil {
		sessions.EndIf(s)
		return nil, bridgeerr.SDK(cmd.Name, err)
	}
	d.logger.Info("session started", "sessionKind", kind, "correlationId", s.CorrelationID)
	return codec.EncodeSessionStarted(string(kind), s.CorrelationID), nil
}

// endSession returns kind to Idle. Once it returns, no event of the ended
// session can be emitted anymore. It reports whether a session was active.
func (d *Dispatcher) endSession(kind adapter.SessionKind, unregister func() error) (bool, error) {
	s, ok := d.adapter.Sessions().End(kind)
	d.emitter.Sync()
	if !ok {
		return false, nil
	}
	d.logger.Info("session stopped", "sessionKind", kind, "correlationId", s.CorrelationID)
	return true, unregister()
}

func (d *Dispatcher) stopSession(cmd Command, kind adapter.SessionKind, unregister func() error) operation {
	return func(context.Context) (any, error) {
		mu := d.startMu[kind]
		mu.Lock()
		defer mu.Unlock()
		stopped, err := d.endSession(kind, unregister)
		if err != nil {
			return nil, bridgeerr.SDK(cmd.Name, err)
		}
		return codec.EncodeStopResult(stopped), nil
	}
}

func (d *Dispatcher) startPositioning(cmd Command) (operation, error) {
	req, err := codec.DecodeLocationRequest(cmd.Args)
	if err != nil {
		return nil, bridgeerr.Invalid(cmd.Name, err)
	}
	return func(context.Context) (any, error) {
		return d.startSession(cmd, adapter.SessionLocation, d.sdk.RemoveLocationUpdates, func(s adapter.Session) error {
			d.sdk.SetGeofenceCallback(d.adapter.Geofences())
			return d.sdk.RequestLocationUpdates(req, d.adapter.Location(s))
		})
	}, nil
}

func (d *Dispatcher) stopPositioning(cmd Command) (operation, error) {
	return d.stopSession(cmd, adapter.SessionLocation, d.sdk.RemoveLocationUpdates), nil
}

func (d *Dispatcher) requestNavigationUpdates(cmd Command) (operation, error) {
	routeID, opts, err := codec.DecodeNavigationArgs(cmd.Args)
	if err != nil {
		return nil, bridgeerr.Invalid(cmd.Name, err)
	}
	route, err := d.cache.Routes.Get(routeID)
	if err != nil {
		return nil, err
	}
	return func(context.Context) (any, error) {
		return d.startSession(cmd, adapter.SessionNavigation, d.sdk.RemoveNavigationUpdates, func(s adapter.Session) error {
			return d.sdk.RequestNavigationUpdates(model.NavigationRequest{Route: route, Options: opts}, d.adapter.Navigation(s))
		})
	}, nil
}

func (d *Dispatcher) updateNavigationWithLocation(cmd Command) (operation, error) {
	loc, err := codec.DecodeLocation(cmd.Args)
	if err != nil {
		return nil, bridgeerr.Invalid(cmd.Name, err)
	}
	return func(context.Context) (any, error) {
		// Checked when the command runs, after any navigation request
		// dispatched before it.
		if _, ok := d.adapter.Sessions().Active(adapter.SessionNavigation); !ok {
			return nil, bridgeerr.Validation(cmd.Name, "navigation is not active")
		}
		if err := d.sdk.UpdateNavigationWithLocation(loc); err != nil {
			return nil, bridgeerr.SDK(cmd.Name, err)
		}
		return codec.EncodeSuccess(), nil
	}, nil
}

func (d *Dispatcher) removeNavigationUpdates(cmd Command) (operation, error) {
	return d.stopSession(cmd, adapter.SessionNavigation, d.sdk.RemoveNavigationUpdates), nil
}

func (d *Dispatcher) requestRealTimeUpdates(cmd Command) (operation, error) {
	req, err := codec.DecodeRealTimeRequest(cmd.Args)
	if err != nil {
		return nil, bridgeerr.Invalid(cmd.Name, err)
	}
	if _, err := d.cache.Buildings.Get(req.BuildingID); err != nil {
		return nil, err
	}
	return func(context.Context) (any, error) {
		return d.startSession(cmd, adapter.SessionRealTime, d.sdk.RemoveRealTimeUpdates, func(s adapter.Session) error {
			return d.sdk.RequestRealTimeUpdates(req, d.adapter.RealTime(s))
		})
	}, nil
}

func (d *Dispatcher) removeRealTimeUpdates(cmd Command) (operation, error) {
	return d.stopSession(cmd, adapter.SessionRealTime, d.sdk.RemoveRealTimeUpdates), nil
}

// release unregisters a session the SDK ended through a terminal push. It
// runs on the queue of the session kind, so it cannot undo a start
// dispatched after the push.
func (d *Dispatcher) release(s adapter.Session) {
	d.queueMu.Lock()
	if d.closed {
		d.queueMu.Unlock()
		return
	}
	prev := d.tails[s.Kind]
	next := make(chan struct{})
	d.tails[s.Kind] = next
	d.wg.Add(1)
	d.queueMu.Unlock()

	go func() {
		defer d.wg.Done()
		defer close(next)
		_, err := d.run(prev, func(context.Context) (any, error) {
			mu := d.startMu[s.Kind]
			mu.Lock()
			defer mu.Unlock()
			if _, ok := d.adapter.Sessions().Active(s.Kind); ok {
				return nil, nil
			}
			return nil, d.unregister(s.Kind)()
		})
		if err != nil {
			d.logger.Warn("failed to release ended session", "sessionKind", s.Kind, "correlationId", s.CorrelationID, "error", err)
		}
	}()
}

// unregister returns the SDK call that removes the listener of kind.
func (d *Dispatcher) unregister(kind adapter.SessionKind) func() error {
	switch kind {
	case adapter.SessionNavigation:
		return d.sdk.RemoveNavigationUpdates
	case adapter.SessionRealTime:
		return d.sdk.RemoveRealTimeUpdates
	default:
		return d.sdk.RemoveLocationUpdates
	}
}

// StopAll forces every session to Idle in one step and unregisters the ended
// sessions from the SDK.
func (d *Dispatcher) StopAll() {
	kinds := []adapter.SessionKind{adapter.SessionLocation, adapter.SessionNavigation, adapter.SessionRealTime}
	for _, kind := range kinds {
		d.startMu[kind].Lock()
	}
	defer func() {
		for _, kind := range kinds {
			d.startMu[kind].Unlock()
		}
	}()

	ended := d.adapter.Sessions().EndAll()
	d.emitter.Sync()
	for _, s := range ended {
		d.logger.Info("session stopped", "sessionKind", s.Kind, "correlationId", s.CorrelationID)
		if err := d.unregister(s.Kind)(); err != nil {
			d.logger.Warn("failed to stop session", "sessionKind", s.Kind, "error", err)
		}
	}
	d.sdk.SetGeofenceCallback(nil)
}

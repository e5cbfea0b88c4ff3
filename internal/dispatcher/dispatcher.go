// Package dispatcher executes host commands against the SDK. Argument
// decoding and cache lookups happen synchronously in Dispatch, so invalid
// commands are rejected before the SDK is touched; the SDK call itself runs
// on its own goroutine and completes the command's Future. Session commands
// of one kind run one at a time, in the order they were dispatched.
package dispatcher

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"positioning-bridge/internal/adapter"
	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/cache"
	"positioning-bridge/internal/codec"
	"positioning-bridge/internal/events"
	"positioning-bridge/internal/sdk"
)

// Command is one host request.
type Command struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Args          any    `json:"args,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
	// Replace governs starting a session while one of the same kind is
	// active. Unset means replace.
	Replace *bool `json:"replace,omitempty"`
}

// Result is the outcome of one command: Data on success, Error otherwise.
type Result struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Data  any          `json:"data,omitempty"`
	Error codec.Object `json:"error,omitempty"`

	err error
}

// Err returns the command failure, if any.
func (r Result) Err() error {
	return r.err
}

// Future completes once with the Result of a command.
type Future struct {
	done   chan struct{}
	result Result
}

func newFuture(cmd Command) *Future {
	return &Future{
		done:   make(chan struct{}),
		result: Result{ID: cmd.ID, Name: cmd.Name},
	}
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the command completes or ctx is done.
func (f *Future) Wait(ctx context.Context) (Result, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (f *Future) resolve(data any, err error) {
	if err != nil {
		f.result.err = err
		f.result.Error = codec.EncodeError(err)
	} else {
		f.result.Data = data
	}
	close(f.done)
}

// operation is the asynchronous part of a command.
type operation func(ctx context.Context) (any, error)

// handler validates a command and returns the operation that completes it.
type handler func(cmd Command) (operation, error)

type Dispatcher struct {
	logger   *slog.Logger
	sdk      sdk.SDK
	cache    *cache.EntityCache
	adapter  *adapter.Adapter
	emitter  *events.Emitter
	handlers map[string]handler

	// startMu makes start and stop exclusive with StopAll per session kind.
	startMu map[adapter.SessionKind]*sync.Mutex

	queueMu sync.Mutex
	// tails holds, per session kind, the channel closed once the last
	// dispatched command of that kind has completed.
	tails  map[adapter.SessionKind]chan struct{}
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(s sdk.SDK, c *cache.EntityCache, a *adapter.Adapter, e *events.Emitter, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		logger:  logger,
		sdk:     s,
		cache:   c,
		adapter: a,
		emitter: e,
		startMu: map[adapter.SessionKind]*sync.Mutex{
			adapter.SessionLocation:   {},
			adapter.SessionNavigation: {},
			adapter.SessionRealTime:   {},
		},
		tails:  make(map[adapter.SessionKind]chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	a.OnSessionEnded(d.release)
	d.handlers = map[string]handler{
		"fetchBuildings":               d.fetchBuildings,
		"fetchBuildingInfo":            d.fetchBuildingInfo,
		"fetchFloorsFromBuilding":      d.fetchFloorsFromBuilding,
		"fetchIndoorPOIsFromBuilding":  d.fetchIndoorPOIsFromBuilding,
		"fetchOutdoorPOIsFromBuilding": d.fetchOutdoorPOIsFromBuilding,
		"fetchEventsFromBuilding":      d.fetchEventsFromBuilding,
		"fetchGeofencesFromBuilding":   d.fetchGeofencesFromBuilding,
		"fetchPoiCategories":           d.fetchPoiCategories,
		"fetchPoiCategoryIcon":         d.fetchPoiCategoryIcon,
		"fetchMapFromFloor":            d.fetchMapFromFloor,
		"invalidateCache":              d.invalidateCache,
		"startPositioning":             d.startPositioning,
		"stopPositioning":              d.stopPositioning,
		"requestDirections":            d.requestDirections,
		"requestNavigationUpdates":     d.requestNavigationUpdates,
		"updateNavigationWithLocation": d.updateNavigationWithLocation,
		"removeNavigationUpdates":      d.removeNavigationUpdates,
		"requestRealTimeUpdates":       d.requestRealTimeUpdates,
		"removeRealTimeUpdates":        d.removeRealTimeUpdates,
		"checkIfPointIsInsideGeofence": d.checkIfPointIsInsideGeofence,
		"onEnterGeofences":             d.onEnterGeofences,
		"onExitGeofences":              d.onExitGeofences,
	}
	return d
}

// Commands lists the supported command names.
func (d *Dispatcher) Commands() []string {
	return slices.Sorted(maps.Keys(d.handlers))
}

// Dispatch starts cmd and returns its Future. Validation failures resolve
// the Future before Dispatch returns.
func (d *Dispatcher) Dispatch(cmd Command) *Future {
	f := newFuture(cmd)
	h, ok := d.handlers[cmd.Name]
	if !ok {
		f.resolve(nil, bridgeerr.Validation("dispatch", "unknown command %q", cmd.Name))
		return f
	}
	op, err := h(cmd)
	if err != nil {
		d.logger.Debug("command rejected", "command", cmd.Name, "id", cmd.ID, "error", err)
		f.resolve(nil, err)
		return f
	}
	var prev <-chan struct{}
	var next chan struct{}
	if kind, ok := sessionCommands[cmd.Name]; ok {
		prev, next = d.enqueue(kind)
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if next != nil {
			defer close(next)
		}
		data, err := d.run(prev, op)
		if err != nil {
			d.logger.Warn("command failed", "command", cmd.Name, "id", cmd.ID, "error", err)
		}
		f.resolve(data, err)
	}()
	return f
}

// sessionCommands maps the commands that change or feed a session to the
// kind whose queue they run on.
var sessionCommands = map[string]adapter.SessionKind{
	"startPositioning":             adapter.SessionLocation,
	"stopPositioning":              adapter.SessionLocation,
	"requestNavigationUpdates":     adapter.SessionNavigation,
	"updateNavigationWithLocation": adapter.SessionNavigation,
	"removeNavigationUpdates":      adapter.SessionNavigation,
	"requestRealTimeUpdates":       adapter.SessionRealTime,
	"removeRealTimeUpdates":        adapter.SessionRealTime,
}

// enqueue appends a command to the queue of kind. It returns the channel to
// wait on before running and the channel to close once done.
func (d *Dispatcher) enqueue(kind adapter.SessionKind) (<-chan struct{}, chan struct{}) {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	prev := d.tails[kind]
	next := make(chan struct{})
	d.tails[kind] = next
	return prev, next
}

func (d *Dispatcher) run(prev <-chan struct{}, op operation) (any, error) {
	if prev != nil {
		select {
		case <-prev:
		case <-d.ctx.Done():
			return nil, d.ctx.Err()
		}
	}
	return op(d.ctx)
}

// Close cancels pending operations and waits for them to complete.
func (d *Dispatcher) Close() {
	d.queueMu.Lock()
	d.closed = true
	d.queueMu.Unlock()
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) correlationID(cmd Command) string {
	if cmd.CorrelationID != "" {
		return cmd.CorrelationID
	}
	return uuid.NewString()
}

// done wraps a result computed during validation.
func done(data any) operation {
	return func(context.Context) (any, error) { return data, nil }
}

// Rejected returns a Future already completed with err.
func Rejected(cmd Command, err error) *Future {
	f := newFuture(cmd)
	f.resolve(nil, err)
	return f
}

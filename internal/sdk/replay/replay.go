// Package replay is an SDK backed by a YAML venue. It serves the venue's
// cartography, replays recorded traces as location updates and derives
// directions, navigation progress and real-time positions from them.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk"
)

const (
	CodeInvalidRequest = 400
	CodeNotFound       = 404
	CodeNotRunning     = 409

	defaultInterval = time.Second
	provider        = "replay"
)

var _ sdk.SDK = (*SDK)(nil)

type Option func(*SDK)

// WithInterval sets the replay period used when a request does not set one.
func WithInterval(d time.Duration) Option {
	return func(s *SDK) {
		if d > 0 {
			s.interval = d
		}
	}
}

type SDK struct {
	logger     *slog.Logger
	interval   time.Duration
	sites      map[string]*site
	order      []string
	categories []model.POICategory

	// locMu and rtMu serialize starting and halting the replay loops. The
	// loops themselves only take mu.
	locMu    sync.Mutex
	location *loop
	rtMu     sync.Mutex
	realtime *loop

	mu         sync.Mutex
	geofenceCb sdk.GeofenceCallback
	navigation *navigation
}

func New(v *Venue, logger *slog.Logger, opts ...Option) *SDK {
	s := &SDK{
		logger:   logger,
		interval: defaultInterval,
		sites:    make(map[string]*site, len(v.Buildings)),
	}
	for _, b := range v.Buildings {
		s.sites[b.ID] = b.site()
		s.order = append(s.order, b.ID)
	}
	for _, c := range v.Categories {
		s.categories = append(s.categories, model.POICategory{
			ID:                c.ID,
			Code:              c.Code,
			Name:              c.Name,
			Public:            c.Public,
			SelectedIconURL:   "replay://icons/" + c.ID + "/selected.png",
			UnselectedIconURL: "replay://icons/" + c.ID + "/unselected.png",
		})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func notFound(what, id string) error {
	return &sdk.Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", what, id)}
}

func (s *SDK) site(ctx context.Context, buildingID string) (*site, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, ok := s.sites[buildingID]
	if !ok {
		return nil, notFound("building", buildingID)
	}
	return st, nil
}

func (s *SDK) FetchBuildings(ctx context.Context) ([]model.Building, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := make([]model.Building, 0, len(s.order))
	for _, id := range s.order {
		res = append(res, s.sites[id].building)
	}
	return res, nil
}

func (s *SDK) FetchFloors(ctx context.Context, buildingID string) ([]model.Floor, error) {
	st, err := s.site(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(st.floors), nil
}

func (s *SDK) FetchIndoorPOIs(ctx context.Context, buildingID string) ([]model.POI, error) {
	st, err := s.site(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(st.indoor), nil
}

func (s *SDK) FetchOutdoorPOIs(ctx context.Context, buildingID string) ([]model.POI, error) {
	st, err := s.site(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(st.outdoor), nil
}

func (s *SDK) FetchEvents(ctx context.Context, buildingID string) ([]model.Event, error) {
	st, err := s.site(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(st.events), nil
}

func (s *SDK) FetchGeofences(ctx context.Context, buildingID string) ([]model.Geofence, error) {
	st, err := s.site(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(st.geofences), nil
}

func (s *SDK) FetchPOICategories(ctx context.Context) ([]model.POICategory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.categories), nil
}

// loop runs fn on its own goroutine until halted.
type loop struct {
	stop chan struct{}
	done chan struct{}
}

func startLoop(fn func(stop <-chan struct{})) *loop {
	l := &loop{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(l.done)
		fn(l.stop)
	}()
	return l
}

// halt stops the loop and waits for it to return.
func (l *loop) halt() {
	if l == nil {
		return
	}
	close(l.stop)
	<-l.done
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

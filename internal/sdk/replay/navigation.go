package replay

import (
	"positioning-bridge/internal/gis"
	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk"
)

const (
	walkingSpeed            = 1.1 // m/s
	defaultOutsideThreshold = 5
	defaultGoalThreshold    = 3
)

type navigation struct {
	route model.Route
	opts  model.NavigationOptions
	cb    sdk.NavigationCallback
	conv  *gis.Converter
	path  []gis.Point
}

func (s *SDK) RequestNavigationUpdates(req model.NavigationRequest, cb sdk.NavigationCallback) error {
	if cb == nil {
		return &sdk.Error{Code: CodeInvalidRequest, Message: "navigation callback is required"}
	}
	steps := req.Route.Steps
	if len(steps) == 0 {
		return &sdk.Error{Code: CodeInvalidRequest, Message: "route has no steps"}
	}
	nav := &navigation{route: req.Route, opts: req.Options, cb: cb}
	if st, ok := s.sites[req.Route.From.BuildingID]; ok {
		nav.conv = gis.NewConverter(st.building)
	}
	if nav.opts.OutsideRouteThreshold <= 0 {
		nav.opts.OutsideRouteThreshold = defaultOutsideThreshold
	}
	if nav.opts.DistanceToGoalThreshold <= 0 {
		nav.opts.DistanceToGoalThreshold = defaultGoalThreshold
	}
	nav.path = append(nav.path, gis.FromCoordinate(steps[0].From.Coordinate))
	for _, st := range steps {
		nav.path = append(nav.path, gis.FromCoordinate(st.To.Coordinate))
	}

	s.mu.Lock()
	s.navigation = nav
	s.mu.Unlock()
	return nil
}

// UpdateNavigationWithLocation reports exactly one of destination reached,
// user outside route or progress for loc.
func (s *SDK) UpdateNavigationWithLocation(loc model.Location) error {
	s.mu.Lock()
	nav := s.navigation
	if nav == nil {
		s.mu.Unlock()
		return &sdk.Error{Code: CodeNotRunning, Message: "navigation is not running"}
	}
	if nav.opts.IgnoreLowQualityLocations && loc.Quality == model.QualityLow {
		s.mu.Unlock()
		return nil
	}

	p := gis.FromCoordinate(loc.Position.Coordinate)
	var report func()
	switch {
	case gis.Haversine(p, nav.path[len(nav.path)-1]) <= nav.opts.DistanceToGoalThreshold:
		s.navigation = nil
		report = nav.cb.OnDestinationReached
	case !gis.IsPointInPolyline(p, nav.path, nav.opts.OutsideRouteThreshold):
		report = nav.cb.OnUserOutsideRoute
	default:
		progress := nav.progress(p)
		report = func() { nav.cb.OnProgress(progress) }
	}
	s.mu.Unlock()

	report()
	return nil
}

func (s *SDK) RemoveNavigationUpdates() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigation = nil
	return nil
}

func (nav *navigation) progress(p gis.Point) model.NavigationProgress {
	offset, seg := gis.DistanceToPolyline(p, nav.path)
	steps := nav.route.Steps
	step := steps[seg]
	closest := gis.ClosestOnSegment(p, nav.path[seg], nav.path[seg+1])
	toNext := gis.Haversine(closest, nav.path[seg+1])
	toGoal := toNext
	for _, st := range steps[seg+1:] {
		toGoal += st.Distance
	}

	point := model.Point{
		BuildingID: step.From.BuildingID,
		FloorID:    step.From.FloorID,
		Coordinate: closest.Coordinate(),
		Indoor:     step.From.Indoor,
	}
	if nav.conv != nil {
		point.Cartesian = nav.conv.ToCartesian(point.Coordinate)
	}

	next := model.Indication{Type: model.IndicationEnd, Instruction: "You have arrived"}
	if seg+1 < len(steps) {
		next = steps[seg+1].Indication
	}
	return model.NavigationProgress{
		RouteStepIndex:                step.Index,
		DistanceToNextPoint:           toNext,
		DistanceToDestination:         toGoal,
		DistanceToClosestPointInRoute: offset,
		TimeToEndStep:                 toNext / walkingSpeed,
		TimeToGoal:                    toGoal / walkingSpeed,
		ClosestPointInRoute:           point,
		CurrentIndication:             step.Indication,
		NextIndication:                next,
	}
}

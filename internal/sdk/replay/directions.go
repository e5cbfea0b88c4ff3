package replay

import (
	"fmt"

	"github.com/google/uuid"

	"positioning-bridge/internal/gis"
	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk"
)

// RequestDirections computes a straight route between the endpoints and
// reports it asynchronously. Changing floors happens under the destination.
func (s *SDK) RequestDirections(building model.Building, req model.DirectionsRequest, cb sdk.DirectionsCallback) error {
	if cb == nil {
		return &sdk.Error{Code: CodeInvalidRequest, Message: "directions callback is required"}
	}
	st, ok := s.sites[building.ID]
	if !ok {
		return notFound("building", building.ID)
	}
	go func() {
		route, err := st.route(req)
		if err != nil {
			cb.OnError(err)
			return
		}
		cb.OnRoute(route)
	}()
	return nil
}

func (st *site) floor(id string) (model.Floor, bool) {
	for _, f := range st.floors {
		if f.ID == id {
			return f, true
		}
	}
	return model.Floor{}, false
}

func (st *site) route(req model.DirectionsRequest) (model.Route, error) {
	from, to := req.From.Point, req.To.Point
	for _, p := range []model.Point{from, to} {
		if !p.Indoor {
			continue
		}
		if _, ok := st.floor(p.FloorID); !ok {
			return model.Route{}, &sdk.Error{
				Code:    CodeInvalidRequest,
				Message: fmt.Sprintf("floor %s is not part of building %s", p.FloorID, st.building.ID),
			}
		}
	}

	points := []model.Point{from}
	if from.FloorID != to.FloorID {
		transfer := to
		transfer.FloorID, transfer.Indoor = from.FloorID, from.Indoor
		points = append(points, transfer)
	}
	points = append(points, to)

	path := gis.FromPoints(points)
	total := gis.PolylineLength(path)
	dists := make([]float64, len(path)-1)
	for i := range dists {
		dists[i] = gis.Haversine(path[i], path[i+1])
	}

	route := model.Route{ID: uuid.NewString(), From: from, To: to}
	remaining := total
	for i, d := range dists {
		remaining -= d
		route.Steps = append(route.Steps, model.RouteStep{
			Index:          i,
			From:           points[i],
			To:             points[i+1],
			Distance:       d,
			DistanceToGoal: remaining,
			Indication:     st.indication(i, points[i], points[i+1], d),
		})
	}

	for _, p := range points {
		n := len(route.Segments)
		if n > 0 && route.Segments[n-1].FloorID == p.FloorID {
			route.Segments[n-1].Points = append(route.Segments[n-1].Points, p)
			continue
		}
		route.Segments = append(route.Segments, model.RouteSegment{FloorID: p.FloorID, Points: []model.Point{p}})
	}
	return route, nil
}

func (st *site) indication(i int, from, to model.Point, distance float64) model.Indication {
	ind := model.Indication{
		Type:               model.IndicationGoAhead,
		OrientationType:    "STRAIGHT",
		Distance:           distance,
		StepIdxOrigin:      i,
		StepIdxDestination: i + 1,
		Instruction:        fmt.Sprintf("Go ahead for %.0f meters", distance),
	}
	if from.FloorID == to.FloorID {
		return ind
	}
	level := 0
	if f, ok := st.floor(to.FloorID); ok {
		level = f.Level
	}
	ind.Type = model.IndicationChangeFloor
	ind.NeededLevelChange = true
	ind.NextLevel = level
	ind.Instruction = fmt.Sprintf("Go to floor %d", level)
	return ind
}

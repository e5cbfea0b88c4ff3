package codec

import "positioning-bridge/internal/model"

func EncodeIndication(i model.Indication) Object {
	return Object{
		"indicationType":       string(i.Type),
		"orientation":          i.Orientation,
		"orientationType":      i.OrientationType,
		"distance":             i.Distance,
		"distanceToNextLevel":  i.DistanceToNextLevel,
		"nextLevel":            i.NextLevel,
		"neededLevelChange":    i.NeededLevelChange,
		"stepIdxOrigin":        i.StepIdxOrigin,
		"stepIdxDestination":   i.StepIdxDestination,
		"humanReadableMessage": i.Instruction,
	}
}

func EncodeRouteStep(s model.RouteStep) Object {
	return Object{
		"id":             s.Index,
		"from":           EncodePoint(s.From),
		"to":             EncodePoint(s.To),
		"distance":       s.Distance,
		"distanceToGoal": s.DistanceToGoal,
		"indication":     EncodeIndication(s.Indication),
	}
}

func EncodeRouteSegment(s model.RouteSegment) Object {
	return Object{
		"floorId": s.FloorID,
		"points":  encodeList(s.Points, EncodePoint),
	}
}

func EncodeRoute(r model.Route) Object {
	steps := encodeList(r.Steps, EncodeRouteStep)
	for i, s := range steps {
		step := s.(Object)
		step["isFirst"] = i == 0
		step["isLast"] = i == len(steps)-1
	}
	indications := make(Array, 0, len(r.Steps))
	for _, s := range r.Steps {
		indications = append(indications, EncodeIndication(s.Indication))
	}
	return Object{
		"id":          r.ID,
		"from":        EncodePoint(r.From),
		"to":          EncodePoint(r.To),
		"steps":       steps,
		"indications": indications,
		"segments":    encodeList(r.Segments, EncodeRouteSegment),
		"distance":    r.Distance(),
	}
}

func EncodeNavigationProgress(p model.NavigationProgress) Object {
	return Object{
		"type":                          "progress",
		"routeStepIndex":                p.RouteStepIndex,
		"distanceToNextPoint":           p.DistanceToNextPoint,
		"distanceToDestination":         p.DistanceToDestination,
		"distanceToClosestPointInRoute": p.DistanceToClosestPointInRoute,
		"timeToEndStep":                 p.TimeToEndStep,
		"timeToGoal":                    p.TimeToGoal,
		"closestPointInRoute":           EncodePoint(p.ClosestPointInRoute),
		"currentIndication":             EncodeIndication(p.CurrentIndication),
		"nextIndication":                EncodeIndication(p.NextIndication),
	}
}

func EncodeDestinationReached() Object {
	return Object{"type": "destinationReached", "message": "Destination reached"}
}

func EncodeUserOutsideRoute() Object {
	return Object{"type": "userOutsideRoute", "message": "User outside route"}
}

package model

type IndicationType string

const (
	IndicationInvalid         IndicationType = "INVALID_INDICATION"
	IndicationTurn            IndicationType = "TURN"
	IndicationGoAhead         IndicationType = "GO_AHEAD"
	IndicationChangeFloor     IndicationType = "CHANGE_FLOOR"
	IndicationEnd             IndicationType = "END"
	IndicationStart           IndicationType = "START"
	IndicationDestinationNear IndicationType = "DESTINATION_NEAR"
)

func (t IndicationType) IsValid() bool {
	switch t {
	case IndicationInvalid, IndicationTurn, IndicationGoAhead, IndicationChangeFloor,
		IndicationEnd, IndicationStart, IndicationDestinationNear:
		return true
	}
	return false
}

type Indication struct {
	Type                IndicationType
	Orientation         float64
	OrientationType     string
	Distance            float64
	DistanceToNextLevel float64
	NextLevel           int
	NeededLevelChange   bool
	StepIdxOrigin       int
	StepIdxDestination  int
	Instruction         string
}

type RouteStep struct {
	Index          int
	From           Point
	To             Point
	Distance       float64
	DistanceToGoal float64
	Indication     Indication
}

type RouteSegment struct {
	FloorID string
	Points  []Point
}

// Route is produced by the SDK; ID is assigned by the bridge when cached.
type Route struct {
	ID       string
	From     Point
	To       Point
	Steps    []RouteStep
	Segments []RouteSegment
}

func (r Route) Distance() float64 {
	var d float64
	for _, s := range r.Steps {
		d += s.Distance
	}
	return d
}

type NavigationProgress struct {
	RouteStepIndex                int
	DistanceToNextPoint           float64
	DistanceToDestination         float64
	DistanceToClosestPointInRoute float64
	TimeToEndStep                 float64
	TimeToGoal                    float64
	ClosestPointInRoute           Point
	CurrentIndication             Indication
	NextIndication                Indication
}

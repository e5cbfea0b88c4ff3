package events

type Kind string

const (
	KindLocation           Kind = "location"
	KindLocationStatus     Kind = "location-status"
	KindNavigationProgress Kind = "navigation-progress"
	KindNavigationError    Kind = "navigation-error"
	KindRoute              Kind = "route"
	KindRouteError         Kind = "route-error"
	KindRealtime           Kind = "realtime"
	KindGeofenceEnter      Kind = "geofence-enter"
	KindGeofenceExit       Kind = "geofence-exit"
	KindError              Kind = "error"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindLocation, KindLocationStatus, KindNavigationProgress, KindNavigationError,
		KindRoute, KindRouteError, KindRealtime, KindGeofenceEnter, KindGeofenceExit, KindError:
		return true
	}
	return false
}

// Event is one message of the outbound stream. Seq is assigned by the
// Emitter and strictly increases in emission order.
type Event struct {
	Seq           uint64 `json:"seq"`
	Kind          Kind   `json:"kind"`
	CorrelationID string `json:"correlationId"`
	Data          any    `json:"data"`
}

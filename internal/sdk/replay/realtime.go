package replay

import (
	"time"

	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk"
)

// RequestRealTimeUpdates reports every fixture device of the building each
// poll, each device advancing one point along its path.
func (s *SDK) RequestRealTimeUpdates(req model.RealTimeRequest, cb sdk.RealTimeCallback) error {
	st, ok := s.sites[req.BuildingID]
	if !ok {
		return notFound("building", req.BuildingID)
	}
	if cb == nil {
		return &sdk.Error{Code: CodeInvalidRequest, Message: "real-time callback is required"}
	}
	poll := req.PollTime
	if poll <= 0 {
		poll = s.interval
	}

	s.rtMu.Lock()
	defer s.rtMu.Unlock()
	s.realtime.halt()
	s.realtime = startLoop(func(stop <-chan struct{}) {
		replayDevices(st, poll, cb, stop)
	})
	return nil
}

func (s *SDK) RemoveRealTimeUpdates() error {
	s.rtMu.Lock()
	defer s.rtMu.Unlock()
	s.realtime.halt()
	s.realtime = nil
	return nil
}

func replayDevices(st *site, poll time.Duration, cb sdk.RealTimeCallback, stop <-chan struct{}) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		if len(st.deviceIDs) == 0 {
			continue
		}
		ts := now()
		data := make([]model.RealTimeData, 0, len(st.deviceIDs))
		for _, id := range st.deviceIDs {
			path := st.devices[id]
			data = append(data, model.RealTimeData{DeviceID: id, Position: path[i%len(path)], Timestamp: ts})
		}
		cb.OnUserLocations(data)
	}
}

package model

import (
	"fmt"
	"time"
)

// LocationState is the lifecycle state of a positioning session.
type LocationState int

const (
	StateStarting LocationState = iota
	StateCalculating
	StatePositioning
	StateStopped
)

var locationStates = [...]struct {
	name        string
	description string
}{
	StateStarting:    {"STARTING", "Positioning is starting"},
	StateCalculating: {"CALCULATING", "Computing the first location"},
	StatePositioning: {"POSITIONING", "Locations are being computed"},
	StateStopped:     {"STOPPED", "Positioning has stopped"},
}

func (s LocationState) IsValid() bool {
	return s >= StateStarting && s <= StateStopped
}

func (s LocationState) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("LocationState(%d)", int(s))
	}
	return locationStates[s].name
}

func (s LocationState) Description() string {
	if !s.IsValid() {
		return ""
	}
	return locationStates[s].description
}

// ParseLocationState maps a canonical state name back to its value.
func ParseLocationState(name string) (LocationState, bool) {
	for i, st := range locationStates {
		if st.name == name {
			return LocationState(i), true
		}
	}
	return 0, false
}

type Quality string

const (
	QualityHigh Quality = "HIGH"
	QualityLow  Quality = "LOW"
)

func (q Quality) IsValid() bool {
	switch q {
	case QualityHigh, QualityLow:
		return true
	}
	return false
}

type Location struct {
	Position            Point
	Accuracy            float64
	Bearing             Angle
	CartesianBearing    Angle
	HasBearing          bool
	HasCartesianBearing bool
	Quality             Quality
	BearingQuality      Quality
	Provider            string
	DeviceID            string
	State               LocationState
	Timestamp           time.Time
}

// RealTimeData is the last known position of one device.
type RealTimeData struct {
	DeviceID  string
	Position  Point
	Timestamp time.Time
}

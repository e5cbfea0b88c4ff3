package model

import "time"

type Building struct {
	ID              string
	Name            string
	Address         string
	InfoHTML        string
	PictureURL      string
	PictureThumbURL string
	UserID          string
	Center          Coordinate
	Dimensions      Dimensions
	Bounds          Bounds
	BoundsRotated   Bounds
	Rotation        Angle
	CustomFields    map[string]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Floor struct {
	ID           string
	BuildingID   string
	Name         string
	Level        int
	FloorNumber  int
	Altitude     float64
	Scale        float64
	MapURL       string
	CustomFields map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type POICategory struct {
	ID                string
	Code              string
	Name              string
	NameI18n          map[string]string
	SelectedIconURL   string
	UnselectedIconURL string
	Public            bool
}

type POI struct {
	ID           string
	BuildingID   string
	FloorID      string
	CategoryID   string
	Name         string
	InfoHTML     string
	Position     Point
	CustomFields map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Geofence struct {
	ID           string
	BuildingID   string
	FloorID      string
	Name         string
	Code         string
	InfoHTML     string
	Polygon      []Point
	CustomFields map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event is a proximity event: it fires when a user enters Trigger.
type Event struct {
	ID           string
	BuildingID   string
	FloorID      string
	Name         string
	InfoHTML     string
	Trigger      Circle
	Conversion   *Circle
	CustomFields map[string]string
}

type BuildingInfo struct {
	Building    Building
	Floors      []Floor
	IndoorPOIs  []POI
	OutdoorPOIs []POI
	Events      []Event
	Geofences   []Geofence
}

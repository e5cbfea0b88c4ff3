package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"positioning-bridge/internal/model"
)

var stamp = time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)

func sampleBuilding() model.Building {
	return model.Building{
		ID:              "B1",
		Name:            "Headquarters",
		Address:         "Rúa Galicia 12",
		InfoHTML:        "<p>Main entrance on the east side</p>",
		PictureURL:      "https://cdn.example.com/b1.png",
		PictureThumbURL: "https://cdn.example.com/b1_thumb.png",
		UserID:          "u-42",
		Center:          model.Coordinate{Latitude: 42.8782, Longitude: -8.5448},
		Dimensions:      model.Dimensions{Width: 120.5, Height: 80.25},
		Bounds: model.Bounds{
			NorthEast: model.Coordinate{Latitude: 42.879, Longitude: -8.544},
			NorthWest: model.Coordinate{Latitude: 42.879, Longitude: -8.546},
			SouthEast: model.Coordinate{Latitude: 42.877, Longitude: -8.544},
			SouthWest: model.Coordinate{Latitude: 42.877, Longitude: -8.546},
		},
		BoundsRotated: model.Bounds{
			NorthEast: model.Coordinate{Latitude: 42.8791, Longitude: -8.5439},
			NorthWest: model.Coordinate{Latitude: 42.8791, Longitude: -8.5461},
			SouthEast: model.Coordinate{Latitude: 42.8771, Longitude: -8.5439},
			SouthWest: model.Coordinate{Latitude: 42.8771, Longitude: -8.5461},
		},
		Rotation:     model.Angle{Radians: 0.25},
		CustomFields: map[string]string{"wifi": "guest"},
		CreatedAt:    stamp,
		UpdatedAt:    stamp.Add(time.Hour),
	}
}

func sampleFloor() model.Floor {
	return model.Floor{
		ID:           "F1",
		BuildingID:   "B1",
		Name:         "Ground floor",
		Level:        0,
		FloorNumber:  1,
		Altitude:     3.5,
		Scale:        12.75,
		MapURL:       "https://cdn.example.com/f1.png",
		CustomFields: map[string]string{},
		CreatedAt:    stamp,
		UpdatedAt:    stamp,
	}
}

func samplePoint() model.Point {
	return model.Point{
		BuildingID: "B1",
		FloorID:    "F1",
		Coordinate: model.Coordinate{Latitude: 42.8781, Longitude: -8.5447},
		Cartesian:  model.CartesianCoordinate{X: 10.5, Y: 22.25},
		Indoor:     true,
	}
}

func sampleCategory() model.POICategory {
	return model.POICategory{
		ID:                "C1",
		Code:              "coffee",
		Name:              "Coffee",
		NameI18n:          map[string]string{"en": "Coffee", "es": "Café"},
		SelectedIconURL:   "https://cdn.example.com/c1_sel.png",
		UnselectedIconURL: "https://cdn.example.com/c1.png",
		Public:            true,
	}
}

func samplePOI() model.POI {
	return model.POI{
		ID:           "P1",
		BuildingID:   "B1",
		FloorID:      "F1",
		CategoryID:   "C1",
		Name:         "Cafeteria",
		InfoHTML:     "<b>Open 8-18</b>",
		Position:     samplePoint(),
		CustomFields: map[string]string{"menu": "daily"},
		CreatedAt:    stamp,
		UpdatedAt:    stamp,
	}
}

func sampleLocation() model.Location {
	return model.Location{
		Position:            samplePoint(),
		Accuracy:            2.5,
		Bearing:             model.Angle{Radians: 1.5},
		CartesianBearing:    model.Angle{Radians: 0.75},
		HasBearing:          true,
		HasCartesianBearing: true,
		Quality:             model.QualityHigh,
		BearingQuality:      model.QualityLow,
		Provider:            "INPHONE",
		DeviceID:            "device-1",
		State:               model.StatePositioning,
		Timestamp:           time.UnixMilli(1710408413123).UTC(),
	}
}

// viaJSON simulates the host boundary: the value goes out as JSON and comes
// back with JSON's number and map types.
func viaJSON(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

type stubResolver struct {
	categories map[string]model.POICategory
	floors     map[string]model.Floor
}

func (r stubResolver) Category(id string) (model.POICategory, bool) {
	c, ok := r.categories[id]
	return c, ok
}

func (r stubResolver) Floor(id string) (model.Floor, bool) {
	f, ok := r.floors[id]
	return f, ok
}

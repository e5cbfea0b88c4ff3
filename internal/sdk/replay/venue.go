package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"positioning-bridge/internal/gis"
	"positioning-bridge/internal/model"
)

// Venue is the YAML fixture the replay SDK serves.
type Venue struct {
	Categories []CategorySpec `yaml:"categories"`
	Buildings  []BuildingSpec `yaml:"buildings"`
}

type CategorySpec struct {
	ID     string `yaml:"id"`
	Code   string `yaml:"code"`
	Name   string `yaml:"name"`
	Public bool   `yaml:"public"`
}

type LatLng struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

type BuildingSpec struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Address  string  `yaml:"address"`
	Center   LatLng  `yaml:"center"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Rotation float64 `yaml:"rotation"` // degrees, counter-clockwise from east

	Floors    []FloorSpec    `yaml:"floors"`
	POIs      []POISpec      `yaml:"pois"`
	Events    []EventSpec    `yaml:"events"`
	Geofences []GeofenceSpec `yaml:"geofences"`
	Trace     []TracePoint   `yaml:"trace"`
	Devices   []DeviceSpec   `yaml:"devices"`
}

type FloorSpec struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Level  int     `yaml:"level"`
	Scale  float64 `yaml:"scale"`
	MapURL string  `yaml:"mapUrl"`
}

// POISpec is outdoor when Floor is empty.
type POISpec struct {
	ID       string `yaml:"id"`
	Floor    string `yaml:"floor"`
	Category string `yaml:"category"`
	Name     string `yaml:"name"`
	Info     string `yaml:"info"`
	LatLng   `yaml:",inline"`
}

type EventSpec struct {
	ID     string  `yaml:"id"`
	Floor  string  `yaml:"floor"`
	Name   string  `yaml:"name"`
	Radius float64 `yaml:"radius"`
	LatLng `yaml:",inline"`
}

type GeofenceSpec struct {
	ID      string   `yaml:"id"`
	Floor   string   `yaml:"floor"`
	Name    string   `yaml:"name"`
	Code    string   `yaml:"code"`
	Polygon []LatLng `yaml:"polygon"`
}

type TracePoint struct {
	Floor    string  `yaml:"floor"`
	Accuracy float64 `yaml:"accuracy"`
	LatLng   `yaml:",inline"`
}

type DeviceSpec struct {
	ID   string       `yaml:"id"`
	Path []TracePoint `yaml:"path"`
}

// Load decodes and validates a venue. Unknown fields are rejected.
func Load(r io.Reader) (*Venue, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var v Venue
	if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding venue: %w", err)
	}
	if err := v.validate(); err != nil {
		return nil, fmt.Errorf("invalid venue: %w", err)
	}
	return &v, nil
}

func LoadFile(path string) (*Venue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading venue file: %w", err)
	}
	return Load(bytes.NewReader(data))
}

func (v *Venue) validate() error {
	categories := make(map[string]bool, len(v.Categories))
	for _, c := range v.Categories {
		if c.ID == "" {
			return errors.New("category without id")
		}
		if categories[c.ID] {
			return fmt.Errorf("duplicate category %q", c.ID)
		}
		categories[c.ID] = true
	}

	buildings := make(map[string]bool, len(v.Buildings))
	for _, b := range v.Buildings {
		if b.ID == "" {
			return errors.New("building without id")
		}
		if buildings[b.ID] {
			return fmt.Errorf("duplicate building %q", b.ID)
		}
		buildings[b.ID] = true

		floors := make(map[string]bool, len(b.Floors))
		for _, f := range b.Floors {
			if f.ID == "" {
				return fmt.Errorf("building %q: floor without id", b.ID)
			}
			floors[f.ID] = true
		}
		onFloor := func(what, id, floor string, outdoorOK bool) error {
			if floor == "" && outdoorOK {
				return nil
			}
			if !floors[floor] {
				return fmt.Errorf("building %q: %s %q references unknown floor %q", b.ID, what, id, floor)
			}
			return nil
		}
		for _, p := range b.POIs {
			if err := onFloor("poi", p.ID, p.Floor, true); err != nil {
				return err
			}
			if p.Category != "" && !categories[p.Category] {
				return fmt.Errorf("building %q: poi %q references unknown category %q", b.ID, p.ID, p.Category)
			}
		}
		for _, e := range b.Events {
			if err := onFloor("event", e.ID, e.Floor, false); err != nil {
				return err
			}
		}
		for _, g := range b.Geofences {
			if err := onFloor("geofence", g.ID, g.Floor, false); err != nil {
				return err
			}
			if len(g.Polygon) < 3 {
				return fmt.Errorf("building %q: geofence %q needs at least 3 vertices", b.ID, g.ID)
			}
		}
		for i, p := range b.Trace {
			if err := onFloor("trace point", fmt.Sprint(i), p.Floor, true); err != nil {
				return err
			}
		}
		for _, d := range b.Devices {
			if len(d.Path) == 0 {
				return fmt.Errorf("building %q: device %q has an empty path", b.ID, d.ID)
			}
			for i, p := range d.Path {
				if err := onFloor("device "+d.ID+" point", fmt.Sprint(i), p.Floor, true); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// site is a building converted to SDK model types.
type site struct {
	building  model.Building
	floors    []model.Floor
	indoor    []model.POI
	outdoor   []model.POI
	events    []model.Event
	geofences []model.Geofence
	trace     []model.Location
	devices   map[string][]model.Point
	deviceIDs []string
}

func (b BuildingSpec) site() *site {
	building := model.Building{
		ID:         b.ID,
		Name:       b.Name,
		Address:    b.Address,
		Center:     model.Coordinate{Latitude: b.Center.Lat, Longitude: b.Center.Lng},
		Dimensions: model.Dimensions{Width: b.Width, Height: b.Height},
		Rotation:   model.AngleFromDegrees(b.Rotation),
	}
	conv := gis.NewConverter(building)
	building.Bounds = bounds(conv, b.Width, b.Height)
	building.BoundsRotated = building.Bounds

	point := func(floor string, ll LatLng) model.Point {
		c := model.Coordinate{Latitude: ll.Lat, Longitude: ll.Lng}
		return model.Point{
			BuildingID: b.ID,
			FloorID:    floor,
			Coordinate: c,
			Cartesian:  conv.ToCartesian(c),
			Indoor:     floor != "",
		}
	}

	s := &site{building: building, devices: make(map[string][]model.Point)}
	for _, f := range b.Floors {
		s.floors = append(s.floors, model.Floor{
			ID:          f.ID,
			BuildingID:  b.ID,
			Name:        f.Name,
			Level:       f.Level,
			FloorNumber: f.Level,
			Scale:       f.Scale,
			MapURL:      f.MapURL,
		})
	}
	for _, p := range b.POIs {
		poi := model.POI{
			ID:         p.ID,
			BuildingID: b.ID,
			FloorID:    p.Floor,
			CategoryID: p.Category,
			Name:       p.Name,
			InfoHTML:   p.Info,
			Position:   point(p.Floor, p.LatLng),
		}
		if p.Floor == "" {
			s.outdoor = append(s.outdoor, poi)
		} else {
			s.indoor = append(s.indoor, poi)
		}
	}
	for _, e := range b.Events {
		s.events = append(s.events, model.Event{
			ID:         e.ID,
			BuildingID: b.ID,
			FloorID:    e.Floor,
			Name:       e.Name,
			Trigger:    model.Circle{Center: point(e.Floor, e.LatLng), Radius: e.Radius},
		})
	}
	for _, g := range b.Geofences {
		polygon := make([]model.Point, len(g.Polygon))
		for i, ll := range g.Polygon {
			polygon[i] = point(g.Floor, ll)
		}
		s.geofences = append(s.geofences, model.Geofence{
			ID:         g.ID,
			BuildingID: b.ID,
			FloorID:    g.Floor,
			Name:       g.Name,
			Code:       g.Code,
			Polygon:    polygon,
		})
	}
	for _, p := range b.Trace {
		s.trace = append(s.trace, model.Location{
			Position: point(p.Floor, p.LatLng),
			Accuracy: p.Accuracy,
		})
	}
	for _, d := range b.Devices {
		path := make([]model.Point, len(d.Path))
		for i, p := range d.Path {
			path[i] = point(p.Floor, p.LatLng)
		}
		s.devices[d.ID] = path
		s.deviceIDs = append(s.deviceIDs, d.ID)
	}
	return s
}

func bounds(conv *gis.Converter, width, height float64) model.Bounds {
	corner := func(x, y float64) model.Coordinate {
		return conv.ToCoordinate(model.CartesianCoordinate{X: x, Y: y})
	}
	return model.Bounds{
		SouthWest: corner(0, 0),
		SouthEast: corner(width, 0),
		NorthWest: corner(0, height),
		NorthEast: corner(width, height),
	}
}
